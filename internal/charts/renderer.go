package charts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.opentelemetry.io/otel/attribute"

	"nfhsdash/internal/config"
	"nfhsdash/internal/infrastructure"
	"nfhsdash/pkg/contracts/domain"
)

// Chart encodings
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Chart kinds, used in metrics and logs
const (
	KindTop          = "top"
	KindDistribution = "distribution"
	KindTrend        = "trend"
	KindCompare      = "compare"
)

var (
	// ErrNoData is returned when a chart would have nothing to plot.
	ErrNoData = errors.New("nothing to plot")
	// ErrUnsupportedFormat is returned for encodings other than svg and png.
	ErrUnsupportedFormat = errors.New("unsupported chart format")
)

var (
	barColor  = drawing.Color{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	lineColor = drawing.Color{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// ContentType returns the MIME type of a chart format.
func ContentType(format string) string {
	if format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Renderer draws survey panels at a fixed size
type Renderer struct {
	width   int
	height  int
	metrics *infrastructure.SurveyMetrics
	logger  *slog.Logger
}

// NewRenderer creates a renderer. metrics may be nil.
func NewRenderer(cfg config.ChartsConfig, metrics *infrastructure.SurveyMetrics, logger *slog.Logger) *Renderer {
	return &Renderer{
		width:   cfg.Width,
		height:  cfg.Height,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "charts"),
	}
}

// TopBar draws the top-N ranking as bars, highest first. Missing values are
// not drawn.
func (r *Renderer) TopBar(ctx context.Context, w io.Writer, format, indicator string, values []domain.StateValue) error {
	title := fmt.Sprintf("Top %d States", len(values))
	return r.renderBars(ctx, w, KindTop, format, title, indicator, stateBars(values))
}

// Compare draws the selected states side by side in view order.
func (r *Renderer) Compare(ctx context.Context, w io.Writer, format, indicator string, values []domain.StateValue) error {
	return r.renderBars(ctx, w, KindCompare, format, "State Comparison", indicator, stateBars(values))
}

// Histogram draws one bar per bucket labelled with its lower edge.
func (r *Renderer) Histogram(ctx context.Context, w io.Writer, format string, h domain.Histogram) error {
	bars := make([]chart.Value, 0, len(h.Buckets))
	for _, b := range h.Buckets {
		bars = append(bars, chart.Value{Label: formatEdge(b.Lower), Value: float64(b.Count)})
	}
	if h.Total == 0 {
		bars = nil
	}
	return r.renderBars(ctx, w, KindDistribution, format, "Distribution Across States", "States", bars)
}

// Trend draws the per-round averages as a line with one tick per round.
func (r *Renderer) Trend(ctx context.Context, w io.Writer, format, indicator string, trend []domain.RoundAverage) error {
	return r.render(ctx, KindTrend, format, func() error {
		if len(trend) == 0 {
			return ErrNoData
		}

		xs := make([]float64, len(trend))
		ys := make([]float64, len(trend))
		ticks := make([]chart.Tick, len(trend))
		for i, a := range trend {
			xs[i] = float64(i)
			ys[i] = a.Average
			ticks[i] = chart.Tick{Value: float64(i), Label: a.Round}
		}
		// A series needs two points to span a range.
		if len(xs) == 1 {
			xs = append(xs, xs[0])
			ys = append(ys, ys[0])
		}

		lo, hi := valueRange(ys, false)
		graph := chart.Chart{
			Title:      "Average Indicator by NFHS Round",
			Width:      r.width,
			Height:     r.height,
			Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
			XAxis: chart.XAxis{
				Name:  "NFHS round",
				Ticks: ticks,
				Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(trend)) - 0.5},
			},
			YAxis: chart.YAxis{
				Name:  axisName(indicator),
				Range: &chart.ContinuousRange{Min: lo, Max: hi},
			},
			Series: []chart.Series{
				chart.ContinuousSeries{
					Name:    indicator,
					XValues: xs,
					YValues: ys,
					Style: chart.Style{
						StrokeColor: lineColor,
						StrokeWidth: 2,
						DotColor:    lineColor,
						DotWidth:    4,
					},
				},
			},
		}
		return graph.Render(rendererFor(format), w)
	})
}

func (r *Renderer) renderBars(ctx context.Context, w io.Writer, kind, format, title, yName string, bars []chart.Value) error {
	return r.render(ctx, kind, format, func() error {
		if len(bars) == 0 {
			return ErrNoData
		}

		ys := make([]float64, len(bars))
		for i, b := range bars {
			ys[i] = b.Value
		}
		lo, hi := valueRange(ys, true)

		graph := chart.BarChart{
			Title:      title,
			Width:      r.width,
			Height:     r.height,
			BarWidth:   r.barWidth(len(bars)),
			BarSpacing: 4,
			Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
			XAxis:      chart.Style{TextRotationDegrees: 45, FontSize: 8},
			YAxis: chart.YAxis{
				Name:  axisName(yName),
				Range: &chart.ContinuousRange{Min: lo, Max: hi},
			},
			Bars: bars,
		}
		return graph.Render(rendererFor(format), w)
	})
}

// render validates the format, runs draw inside a span and records the chart.
func (r *Renderer) render(ctx context.Context, kind, format string, draw func() error) error {
	ctx, span := infrastructure.StartSpan(ctx, "charts."+kind,
		attribute.String("chart.kind", kind),
		attribute.String("chart.format", format))
	defer span.End()

	if format != FormatSVG && format != FormatPNG {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := draw(); err != nil {
		if !errors.Is(err, ErrNoData) {
			infrastructure.RecordError(ctx, err)
			r.logger.ErrorContext(ctx, "chart render failed",
				slog.String("kind", kind),
				slog.String("format", format),
				slog.String("error", err.Error()))
		}
		return fmt.Errorf("render %s chart: %w", kind, err)
	}

	infrastructure.RecordChart(ctx, r.metrics, kind, format)
	return nil
}

func (r *Renderer) barWidth(n int) int {
	width := (r.width-80)/n - 4
	if width < 4 {
		return 4
	}
	if width > 60 {
		return 60
	}
	return width
}

func rendererFor(format string) chart.RendererProvider {
	if format == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

func stateBars(values []domain.StateValue) []chart.Value {
	bars := make([]chart.Value, 0, len(values))
	for _, v := range values {
		if v.Value == nil {
			continue
		}
		bars = append(bars, chart.Value{Label: v.State, Value: *v.Value})
	}
	return bars
}

// valueRange returns an explicit axis range with 5% headroom. Bar charts
// always include zero. A flat series gets a unit-wide range.
func valueRange(ys []float64, includeZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if includeZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if hi == lo {
		return lo - 0.5, hi + 0.5
	}
	pad := (hi - lo) * 0.05
	if includeZero && lo == 0 {
		return 0, hi + pad
	}
	return lo - pad, hi + pad
}

func formatEdge(x float64) string {
	return fmt.Sprintf("%.4g", x)
}

// axisName keeps long indicator names from crowding the axis.
func axisName(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return name
}
