package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a survey value with the shortest exact representation,
// so 1058 stays "1058" and 95.2 stays "95.2".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatCell renders one table cell as CSV text. Missing cells are empty.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case int:
		return formatInt(int64(x))
	case int64:
		return formatInt(x)
	case *float64:
		if x == nil {
			return ""
		}
		return formatFloat(*x)
	default:
		return fmt.Sprint(x)
	}
}
