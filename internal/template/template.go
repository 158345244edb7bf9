// Package template implements the formatting template: a declarative
// description of how a workbook should look, loaded from JSON or YAML,
// validated, and fully defaulted before any document is touched.
//
// All column keys in a template refer to ORIGINAL header names in the input
// file. Renaming is applied as the last visual step of the pipeline, so a
// template never needs to know its own renames.
package template

// Template is the parsed formatting template. After Load returns, every
// optional field has been resolved to an explicit value; pipeline stages
// branch on values, never on presence.
type Template struct {
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	Sheets        []string `json:"sheets,omitempty" yaml:"sheets,omitempty"`
	ExcludeSheets []string `json:"exclude_sheets,omitempty" yaml:"exclude_sheets,omitempty"`
	HeaderRow     int      `json:"header_row,omitempty" yaml:"header_row,omitempty"`

	SuperHeaderStyle *StyleConfig `json:"super_header_style,omitempty" yaml:"super_header_style,omitempty"`
	HeaderStyle      *StyleConfig `json:"header_style,omitempty" yaml:"header_style,omitempty"`

	// SectionDividers lists 1-based column indices where a new section
	// starts. SectionColors holds one palette slot per section, including
	// the run of columns before the first divider.
	SectionDividers     []int    `json:"section_dividers,omitempty" yaml:"section_dividers,omitempty"`
	SectionDividerColor string   `json:"section_divider_color,omitempty" yaml:"section_divider_color,omitempty"`
	SectionColors       []string `json:"section_colors,omitempty" yaml:"section_colors,omitempty"`

	Borders     *BorderConfig `json:"borders,omitempty" yaml:"borders,omitempty"`
	OuterBorder *BorderConfig `json:"outer_border,omitempty" yaml:"outer_border,omitempty"`

	GroupByColumn *GroupByConfig    `json:"group_by_column,omitempty" yaml:"group_by_column,omitempty"`
	BandedRows    *BandedRowsConfig `json:"banded_rows,omitempty" yaml:"banded_rows,omitempty"`

	ColumnRename  map[string]string `json:"column_rename,omitempty" yaml:"column_rename,omitempty"`
	ColumnFormats map[string]string `json:"column_formats,omitempty" yaml:"column_formats,omitempty"`

	MagnitudeFormat    *MagnitudeConfig  `json:"magnitude_format,omitempty" yaml:"magnitude_format,omitempty"`
	ConditionalFormats []ConditionalRule `json:"conditional_format,omitempty" yaml:"conditional_format,omitempty"`

	ColWidth        string `json:"col_width,omitempty" yaml:"col_width,omitempty"`
	HideZeroColumns bool   `json:"hide_zero_columns,omitempty" yaml:"hide_zero_columns,omitempty"`
}

// StyleConfig describes the visual style of a header or super-header row.
type StyleConfig struct {
	FontBold    bool    `json:"font_bold,omitempty" yaml:"font_bold,omitempty"`
	FontColor   string  `json:"font_color,omitempty" yaml:"font_color,omitempty"`
	FontSize    float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FillColor   string  `json:"fill_color,omitempty" yaml:"fill_color,omitempty"`
	Alignment   string  `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	BorderStyle string  `json:"border_style,omitempty" yaml:"border_style,omitempty"`
	BorderColor string  `json:"border_color,omitempty" yaml:"border_color,omitempty"`
	Freeze      bool    `json:"freeze,omitempty" yaml:"freeze,omitempty"`
	AutoFilter  bool    `json:"auto_filter,omitempty" yaml:"auto_filter,omitempty"`
}

// BorderConfig describes a border colour and line style.
type BorderConfig struct {
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Style string `json:"style,omitempty" yaml:"style,omitempty"`
}

// GroupByConfig colours data rows by the value of a grouping column. The
// palette cursor advances every time the observed value changes from the
// previous row, wrapping when exhausted.
type GroupByConfig struct {
	Column string   `json:"column" yaml:"column"`
	Colors []string `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// BandedRowsConfig applies a single alternating colour to every other data
// row. Only consulted when GroupByColumn is absent.
type BandedRowsConfig struct {
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// MagnitudeConfig selects a number format for columns that have no explicit
// entry in ColumnFormats, from the column's median absolute value.
type MagnitudeConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Priority is always "fallback": magnitude rules never override an
	// explicit column format.
	Priority string          `json:"priority,omitempty" yaml:"priority,omitempty"`
	Rules    []MagnitudeRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// MagnitudeRule maps a magnitude threshold to a number format. Rules are
// walked in template order; the first rule whose MinAbs is <= the column's
// median absolute value wins.
type MagnitudeRule struct {
	MinAbs float64 `json:"min_abs" yaml:"min_abs"`
	Format string  `json:"format" yaml:"format"`
}

// RuleType identifies a conditional formatting rule variant. Only the
// three-point colour scale exists today; new rule kinds add a constant here
// rather than branching on free-form strings.
type RuleType string

const (
	// RuleThreeColorScale maps each cell's value, relative to its column's
	// observed min/mid/max, to an interpolated fill colour.
	RuleThreeColorScale RuleType = "3_color_scale"
)

// ConditionalRule targets columns either by original header name (Columns,
// all matches) or by explicit 1-based index (ColIndices, takes precedence,
// no name lookup).
type ConditionalRule struct {
	Columns    []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	ColIndices []int    `json:"col_indices,omitempty" yaml:"col_indices,omitempty"`
	Type       RuleType `json:"type,omitempty" yaml:"type,omitempty"`
	MinColor   string   `json:"min_color,omitempty" yaml:"min_color,omitempty"`
	MidColor   string   `json:"mid_color,omitempty" yaml:"mid_color,omitempty"`
	MaxColor   string   `json:"max_color,omitempty" yaml:"max_color,omitempty"`
}

// SelectSheets resolves the sheet include-list minus the exclude-list
// against the workbook's actual sheet names, preserving workbook order.
func (t *Template) SelectSheets(workbookSheets []string) []string {
	excluded := make(map[string]bool, len(t.ExcludeSheets))
	for _, name := range t.ExcludeSheets {
		excluded[name] = true
	}

	wildcard := len(t.Sheets) == 1 && t.Sheets[0] == "*"
	included := make(map[string]bool, len(t.Sheets))
	for _, name := range t.Sheets {
		included[name] = true
	}

	var selected []string
	for _, name := range workbookSheets {
		if !wildcard && !included[name] {
			continue
		}
		if excluded[name] {
			continue
		}
		selected = append(selected, name)
	}
	return selected
}
