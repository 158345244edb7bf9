package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var hexColourPattern = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

var borderStyles = map[string]bool{
	"thin":   true,
	"medium": true,
	"thick":  true,
}

// Load reads a template file, dispatching on extension: .yaml/.yml are
// parsed as YAML, everything else as JSON. The returned template has been
// validated and fully defaulted.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var t Template
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse YAML template %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse JSON template %s: %w", path, err)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.ApplyDefaults()
	return &t, nil
}

// Validate checks the template for malformed or contradictory fields. It
// runs before ApplyDefaults, so unset fields are still zero values here.
func (t *Template) Validate() error {
	if t.HeaderRow < 0 {
		return &ValidationError{Field: "header_row", Value: t.HeaderRow, Message: "must be a positive 1-based row number"}
	}

	if len(t.Sheets) > 0 && !(len(t.Sheets) == 1 && t.Sheets[0] == "*") {
		excluded := make(map[string]bool, len(t.ExcludeSheets))
		for _, name := range t.ExcludeSheets {
			excluded[name] = true
		}
		remaining := 0
		for _, name := range t.Sheets {
			if !excluded[name] {
				remaining++
			}
		}
		if remaining == 0 {
			return &ValidationError{
				Field:   "exclude_sheets",
				Value:   t.ExcludeSheets,
				Message: "every sheet in 'sheets' is also excluded; nothing to format",
			}
		}
	}

	if err := validateStyle("super_header_style", t.SuperHeaderStyle); err != nil {
		return err
	}
	if err := validateStyle("header_style", t.HeaderStyle); err != nil {
		return err
	}

	for i, col := range t.SectionDividers {
		if col < 1 {
			return &ValidationError{
				Field:   fmt.Sprintf("section_dividers[%d]", i),
				Value:   col,
				Message: "column indices are 1-based",
			}
		}
	}
	if err := validateColour("section_divider_color", t.SectionDividerColor); err != nil {
		return err
	}
	for i, c := range t.SectionColors {
		if err := validateColour(fmt.Sprintf("section_colors[%d]", i), c); err != nil {
			return err
		}
	}

	if err := validateBorder("borders", t.Borders); err != nil {
		return err
	}
	if err := validateBorder("outer_border", t.OuterBorder); err != nil {
		return err
	}

	if t.GroupByColumn != nil {
		if t.GroupByColumn.Column == "" {
			return &ValidationError{Field: "group_by_column.column", Value: "", Message: "grouping column name is required"}
		}
		for i, c := range t.GroupByColumn.Colors {
			if err := validateColour(fmt.Sprintf("group_by_column.colors[%d]", i), c); err != nil {
				return err
			}
		}
	}
	if t.BandedRows != nil {
		if err := validateColour("banded_rows.color", t.BandedRows.Color); err != nil {
			return err
		}
	}

	if t.MagnitudeFormat != nil {
		for i, rule := range t.MagnitudeFormat.Rules {
			if rule.MinAbs < 0 {
				return &ValidationError{
					Field:   fmt.Sprintf("magnitude_format.rules[%d].min_abs", i),
					Value:   rule.MinAbs,
					Message: "thresholds compare against absolute values and must be >= 0",
				}
			}
			if rule.Format == "" {
				return &ValidationError{
					Field:   fmt.Sprintf("magnitude_format.rules[%d].format", i),
					Value:   "",
					Message: "number format is required",
				}
			}
		}
	}

	for i, rule := range t.ConditionalFormats {
		if len(rule.Columns) == 0 && len(rule.ColIndices) == 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("conditional_format[%d]", i),
				Value:   rule,
				Message: "rule must target columns (by name) or col_indices",
			}
		}
		if rule.Type != "" && rule.Type != RuleThreeColorScale {
			return &ValidationError{
				Field:   fmt.Sprintf("conditional_format[%d].type", i),
				Value:   string(rule.Type),
				Message: "unsupported rule type; only 3_color_scale is available",
			}
		}
		for _, pair := range []struct{ field, colour string }{
			{"min_color", rule.MinColor},
			{"mid_color", rule.MidColor},
			{"max_color", rule.MaxColor},
		} {
			if err := validateColour(fmt.Sprintf("conditional_format[%d].%s", i, pair.field), pair.colour); err != nil {
				return err
			}
		}
	}

	if t.ColWidth != "" && t.ColWidth != "auto" {
		return &ValidationError{Field: "col_width", Value: t.ColWidth, Message: `only "auto" is supported`}
	}

	return nil
}

func validateStyle(field string, s *StyleConfig) error {
	if s == nil {
		return nil
	}
	if err := validateColour(field+".font_color", s.FontColor); err != nil {
		return err
	}
	if err := validateColour(field+".fill_color", s.FillColor); err != nil {
		return err
	}
	if err := validateColour(field+".border_color", s.BorderColor); err != nil {
		return err
	}
	if s.BorderStyle != "" && !borderStyles[s.BorderStyle] {
		return &ValidationError{
			Field:   field + ".border_style",
			Value:   s.BorderStyle,
			Message: "must be one of thin, medium, thick",
		}
	}
	return nil
}

func validateBorder(field string, b *BorderConfig) error {
	if b == nil {
		return nil
	}
	if err := validateColour(field+".color", b.Color); err != nil {
		return err
	}
	if b.Style != "" && !borderStyles[b.Style] {
		return &ValidationError{
			Field:   field + ".style",
			Value:   b.Style,
			Message: "must be one of thin, medium, thick",
		}
	}
	return nil
}

func validateColour(field, colour string) error {
	if colour == "" {
		return nil
	}
	if !hexColourPattern.MatchString(colour) {
		return &ValidationError{
			Field:   field,
			Value:   colour,
			Message: "must be a 6-digit hex colour like #4472C4",
		}
	}
	return nil
}
