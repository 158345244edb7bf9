package document

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// builtInNumFmts maps the built-in number format IDs the engine cares about
// (dates, times, percentages) to their format codes. Cells using custom
// formats carry the code directly in their style.
var builtInNumFmts = map[int]string{
	9:  "0%",
	10: "0.00%",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
}

// dateFmtHints are substrings whose presence in a number format code marks
// the cell as date-formatted.
var dateFmtHints = []string{"yy", "mm/d", "d/m", "yyyy"}

// NumFmt returns the number format code of the data-view cell at (row, col),
// or "" when the cell uses the General format.
func (d *Document) NumFmt(sheet string, row, col int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	styleID, err := d.data.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return ""
	}
	style, err := d.data.GetStyle(styleID)
	if err != nil || style == nil {
		return ""
	}
	if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
		return *style.CustomNumFmt
	}
	return builtInNumFmts[style.NumFmt]
}

// IsDateCell reports whether the data-view cell holds a date: either the
// cell is date-typed or its number format looks like a date.
func (d *Document) IsDateCell(sheet string, row, col int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	if ct, err := d.data.GetCellType(sheet, cell); err == nil && ct == excelize.CellTypeDate {
		return true
	}
	if _, ok := d.Numeric(sheet, row, col); !ok {
		return false
	}
	return IsDateFormat(d.NumFmt(sheet, row, col))
}

// IsDateFormat reports whether a number format code renders as a date.
func IsDateFormat(code string) bool {
	code = strings.ToLower(code)
	if code == "" {
		return false
	}
	for _, hint := range dateFmtHints {
		if strings.Contains(code, hint) {
			return true
		}
	}
	return false
}
