package engine

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	widthPadding    = 2
	minColumnWidth  = 8
	maxColumnWidth  = 30
	widthSampleRows = 100
)

// Stage 10: compute column widths from rendered text. Runs after renames so
// widths fit the displayed header names, and uses the number formats the
// pipeline applied to estimate how wide data cells will render.
func stageColumnWidths(r *sheetRun) error {
	if r.tmpl.ColWidth != "auto" {
		return nil
	}

	for col := r.firstCol; col <= r.lastCol; col++ {
		maxWidth := 0

		// Header width, post-rename, from the edit view.
		cell, err := excelize.CoordinatesToCellName(col, r.headerRow)
		if err != nil {
			return err
		}
		if hdr, err := r.doc.Edit().GetCellValue(r.sheet, cell); err == nil {
			maxWidth = utf8.RuneCountInString(hdr)
		}

		endRow := r.rows
		if endRow > r.headerRow+widthSampleRows {
			endRow = r.headerRow + widthSampleRows
		}
		for row := r.headerRow + 1; row <= endRow; row++ {
			raw := r.doc.Raw(r.sheet, row, col)
			if raw == "" {
				continue
			}
			w := estimateCellWidth(r, row, col, raw)
			if w > maxWidth {
				maxWidth = w
			}
		}

		width := maxWidth + widthPadding
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if width < minColumnWidth {
			width = minColumnWidth
		}
		letter, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := r.doc.Edit().SetColWidth(r.sheet, letter, letter, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

func estimateCellWidth(r *sheetRun, row, col int, raw string) int {
	if r.doc.IsDateCell(r.sheet, row, col) {
		return len("mm/dd/yyyy") + 1
	}
	v, isNum := r.doc.Numeric(r.sheet, row, col)
	if !isNum {
		n := utf8.RuneCountInString(raw)
		if n > maxColumnWidth {
			return maxColumnWidth
		}
		return n
	}

	format := r.appliedFormats[col]
	if format == "" {
		format = r.doc.NumFmt(r.sheet, row, col)
	}
	return len(formatNumberApprox(v, format))
}

// formatNumberApprox renders a number roughly the way its format code will:
// decimal places counted from the code, thousands separators when the code
// groups digits. Close enough for width estimation.
func formatNumberApprox(v float64, format string) string {
	if format == "" {
		return fmt.Sprintf("%.2f", v)
	}

	decimals := 0
	if idx := strings.LastIndex(format, "."); idx >= 0 {
		for _, c := range format[idx+1:] {
			if c == '0' || c == '#' {
				decimals++
			}
		}
		if decimals > 6 {
			decimals = 6
		}
	}

	text := fmt.Sprintf("%.*f", decimals, v)
	if strings.Contains(format, "#,#") || strings.Contains(format, ",##") {
		text = groupThousands(text)
	}
	if strings.Contains(format, "%") {
		text += "%"
	}
	return text
}

func groupThousands(text string) string {
	neg := strings.HasPrefix(text, "-")
	if neg {
		text = text[1:]
	}
	intPart := text
	frac := ""
	if idx := strings.Index(text, "."); idx >= 0 {
		intPart, frac = text[:idx], text[idx:]
	}

	var groups []string
	for len(intPart) > 3 {
		groups = append(groups, intPart[len(intPart)-3:])
		intPart = intPart[:len(intPart)-3]
	}
	groups = append(groups, intPart)
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}

	out := strings.Join(groups, ",") + frac
	if neg {
		out = "-" + out
	}
	return out
}

// sortedKeys gives map-keyed template sections a stable application order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
