package domain

// IndicatorSummary holds the three headline metrics for one indicator in one round.
type IndicatorSummary struct {
	Round          string  `json:"round"`
	Indicator      string  `json:"indicator"`
	Average        float64 `json:"average"`
	AverageRounded float64 `json:"average_rounded"`
	StateAtMax     string  `json:"state_at_max"`
	StateAtMin     string  `json:"state_at_min"`
	Max            float64 `json:"max"`
	Min            float64 `json:"min"`
	Count          int     `json:"count"`
}

// StateValue is one state's indicator value within a round.
// Value is nil when the cell is missing.
type StateValue struct {
	State string   `json:"state"`
	Round string   `json:"round"`
	Value *float64 `json:"value"`
}

// HistogramBucket is a half-open [Lower, Upper) bucket. The last bucket of a
// histogram also includes Upper.
type HistogramBucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is an equal-width distribution of an indicator's values.
type Histogram struct {
	Round     string            `json:"round"`
	Indicator string            `json:"indicator"`
	Bins      int               `json:"bins"`
	Width     float64           `json:"width"`
	Total     int               `json:"total"`
	Missing   int               `json:"missing"`
	Buckets   []HistogramBucket `json:"buckets"`
}

// RoundAverage is the mean of an indicator over every row of one survey round.
type RoundAverage struct {
	Round   string  `json:"round"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// RoundView describes the rows of one survey round.
type RoundView struct {
	Round      string   `json:"round"`
	Rows       int      `json:"rows"`
	Indicators []string `json:"indicators"`
	States     []string `json:"states"`
}

// Dashboard bundles every panel of the dashboard page for one selection.
// Summary is nil and NoData is true when the indicator has no usable values
// in the round.
type Dashboard struct {
	Round        string            `json:"round"`
	Indicator    string            `json:"indicator"`
	NoData       bool              `json:"no_data"`
	Summary      *IndicatorSummary `json:"summary,omitempty"`
	Top          []StateValue      `json:"top"`
	Distribution *Histogram        `json:"distribution,omitempty"`
	Trend        []RoundAverage    `json:"trend"`
	Comparison   []StateValue      `json:"comparison"`
}

// DatasetInfo describes the loaded survey extract.
type DatasetInfo struct {
	Source         string   `json:"source"`
	Sheet          string   `json:"sheet,omitempty"`
	Rows           int      `json:"rows"`
	Columns        []string `json:"columns"`
	NumericColumns int      `json:"numeric_columns"`
	TextColumns    int      `json:"text_columns"`
	SentinelRows   int      `json:"sentinel_rows_dropped"`
	Rounds         []string `json:"rounds"`
}
