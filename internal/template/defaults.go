package template

// Default colours and styles, applied at load time so no pipeline stage has
// to branch on "unset".
const (
	DefaultBorderStyle     = "thin"
	DefaultBorderColor     = "#000000"
	DefaultDataBorderColor = "#D9D9D9"
	DefaultOuterStyle      = "medium"
	DefaultDividerStyle    = "medium"
	DefaultDividerColor    = "#4472C4"
	DefaultBandColor       = "#F2F2F2"
	DefaultMinColor        = "#F8696B"
	DefaultMidColor        = "#FFFFFF"
	DefaultMaxColor        = "#63BE7B"
)

// DefaultGroupPalette is the row-colour palette used by group_by_column when
// the template does not supply its own.
var DefaultGroupPalette = []string{
	"#E8EDF2", "#E7F0E5", "#FDF2E9", "#F0E6EF",
	"#E5ECF0", "#F5EADF", "#E6EDE8", "#F2E8E8",
}

// DefaultMagnitudeRules is the three-tier magnitude rule set used by scan
// drafts and by magnitude_format when enabled without explicit rules.
func DefaultMagnitudeRules() []MagnitudeRule {
	return []MagnitudeRule{
		{MinAbs: 100, Format: "#,##0"},
		{MinAbs: 10, Format: "#,##0.0"},
		{MinAbs: 0, Format: "0.00"},
	}
}

// ApplyDefaults resolves every optional field to an explicit value. It is
// idempotent and called by Load after validation succeeds.
func (t *Template) ApplyDefaults() {
	if len(t.Sheets) == 0 {
		t.Sheets = []string{"*"}
	}
	if t.HeaderRow == 0 {
		t.HeaderRow = 1
	}

	applyStyleDefaults(t.SuperHeaderStyle)
	applyStyleDefaults(t.HeaderStyle)

	if t.SectionDividerColor == "" {
		t.SectionDividerColor = DefaultDividerColor
	}

	if t.Borders != nil {
		if t.Borders.Color == "" {
			t.Borders.Color = DefaultDataBorderColor
		}
		if t.Borders.Style == "" {
			t.Borders.Style = DefaultBorderStyle
		}
	}
	if t.OuterBorder != nil {
		if t.OuterBorder.Color == "" {
			t.OuterBorder.Color = DefaultBorderColor
		}
		if t.OuterBorder.Style == "" {
			t.OuterBorder.Style = DefaultOuterStyle
		}
	}

	if t.GroupByColumn != nil && len(t.GroupByColumn.Colors) == 0 {
		t.GroupByColumn.Colors = append([]string(nil), DefaultGroupPalette...)
	}
	if t.BandedRows != nil && t.BandedRows.Color == "" {
		t.BandedRows.Color = DefaultBandColor
	}

	if t.MagnitudeFormat != nil {
		if t.MagnitudeFormat.Priority == "" {
			t.MagnitudeFormat.Priority = "fallback"
		}
		if len(t.MagnitudeFormat.Rules) == 0 {
			t.MagnitudeFormat.Rules = DefaultMagnitudeRules()
		}
	}

	for i := range t.ConditionalFormats {
		rule := &t.ConditionalFormats[i]
		if rule.Type == "" {
			rule.Type = RuleThreeColorScale
		}
		if rule.MinColor == "" {
			rule.MinColor = DefaultMinColor
		}
		if rule.MidColor == "" {
			rule.MidColor = DefaultMidColor
		}
		if rule.MaxColor == "" {
			rule.MaxColor = DefaultMaxColor
		}
	}
}

func applyStyleDefaults(s *StyleConfig) {
	if s == nil {
		return
	}
	if s.BorderStyle == "" {
		s.BorderStyle = DefaultBorderStyle
	}
	if s.BorderColor == "" {
		s.BorderColor = DefaultBorderColor
	}
}
