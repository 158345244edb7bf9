package engine

import (
	"sort"

	"github.com/sheetops/xlsxfmt/internal/template"
)

// Median returns the statistical median of values. The slice is not
// modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// FormatForMagnitude walks the rules in template order and returns the
// format of the first rule whose threshold is at or below medianAbs. Rules
// are deliberately not re-sorted: their order is part of the template.
func FormatForMagnitude(rules []template.MagnitudeRule, medianAbs float64) (string, bool) {
	for _, rule := range rules {
		if medianAbs >= rule.MinAbs {
			return rule.Format, true
		}
	}
	return "", false
}

// columnMagnitude samples a column's non-zero numeric data-view values and
// returns their median absolute value. hasDate short-circuits the sample:
// date columns are never magnitude-formatted.
func columnMagnitude(r *sheetRun, col int) (medianAbs float64, ok bool) {
	var absVals []float64
	for row := r.headerRow + 1; row <= r.rows; row++ {
		if r.doc.IsDateCell(r.sheet, row, col) {
			return 0, false
		}
		v, isNum := r.doc.Numeric(r.sheet, row, col)
		if !isNum || v == 0 {
			continue
		}
		if v < 0 {
			v = -v
		}
		absVals = append(absVals, v)
	}
	if len(absVals) == 0 {
		return 0, false
	}
	return Median(absVals), true
}
