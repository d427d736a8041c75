package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"go-stats-dashboard/internal/model"
)

// DefaultSeparators are stripped from metric text when none are configured
const DefaultSeparators = ","

// NormalizeMetric strips thousands separators and surrounding whitespace from
// raw, then parses it as an integer or decimal number.
func NormalizeMetric(raw, separators string, format model.NumberFormat) (float64, error) {
	if separators == "" {
		separators = DefaultSeparators
	}
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(separators, r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimSpace(cleaned)

	switch format {
	case model.DecimalFormat:
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", raw, err)
		}
		return v, nil
	default:
		v, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", raw, err)
		}
		return float64(v), nil
	}
}
