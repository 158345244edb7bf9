package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sheetops/xlsxfmt/internal/template"
)

func threeTierRules() []template.MagnitudeRule {
	return []template.MagnitudeRule{
		{MinAbs: 100, Format: "#,##0"},
		{MinAbs: 10, Format: "#,##0.0"},
		{MinAbs: 0, Format: "0.00"},
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 5.0, Median([]float64{5}))
	assert.Equal(t, 348.0, Median([]float64{348, 500, 182}))
	assert.Equal(t, 2.5, Median([]float64{1.6, 2.5, 3.9}))
	assert.Equal(t, 7.5, Median([]float64{5, 10}))
	// Input order must not matter and the input must not be modified.
	vals := []float64{9, 1, 5}
	assert.Equal(t, 5.0, Median(vals))
	assert.Equal(t, []float64{9, 1, 5}, vals)
}

func TestFormatForMagnitude_FirstMatchingRuleWins(t *testing.T) {
	// Values [348, -500, 182] have median_abs 348: the first tier applies.
	format, ok := FormatForMagnitude(threeTierRules(), 348)
	assert.True(t, ok)
	assert.Equal(t, "#,##0", format)
}

func TestFormatForMagnitude_FallsThroughToZeroTier(t *testing.T) {
	// Values [1.6, 2.5, 3.9] have median_abs 2.5: only the min_abs 0 rule
	// matches.
	format, ok := FormatForMagnitude(threeTierRules(), 2.5)
	assert.True(t, ok)
	assert.Equal(t, "0.00", format)
}

func TestFormatForMagnitude_MidTier(t *testing.T) {
	format, ok := FormatForMagnitude(threeTierRules(), 42)
	assert.True(t, ok)
	assert.Equal(t, "#,##0.0", format)
}

func TestFormatForMagnitude_RulesNotReSorted(t *testing.T) {
	// Template order is authoritative: an early catch-all shadows every
	// later rule, exactly as written.
	rules := []template.MagnitudeRule{
		{MinAbs: 0, Format: "0.00"},
		{MinAbs: 100, Format: "#,##0"},
	}
	format, ok := FormatForMagnitude(rules, 5000)
	assert.True(t, ok)
	assert.Equal(t, "0.00", format)
}

func TestFormatForMagnitude_NoRuleMatches(t *testing.T) {
	rules := []template.MagnitudeRule{{MinAbs: 100, Format: "#,##0"}}
	_, ok := FormatForMagnitude(rules, 12)
	assert.False(t, ok)
}
