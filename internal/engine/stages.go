package engine

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// headerColumnBounds returns the first and last column carrying a header
// value, checking the super-header row as well when one exists. Blank
// leading and trailing columns fall outside every styling operation.
func headerColumnBounds(r *sheetRun) (first, last int) {
	first = r.cols
	last = 1
	rows := []int{r.headerRow}
	if r.headerRow > 1 {
		rows = append(rows, r.headerRow-1)
	}
	for _, row := range rows {
		for col := 1; col <= r.cols; col++ {
			if r.doc.Raw(r.sheet, row, col) == "" {
				continue
			}
			if col < first {
				first = col
			}
			if col > last {
				last = col
			}
		}
	}
	if first > last {
		first, last = 1, r.cols
	}
	return first, last
}

// Stage 1: fix the data bounds every later stage operates within.
func stageDetectBounds(r *sheetRun) error {
	r.firstCol, r.lastCol = headerColumnBounds(r)
	return nil
}

// Stage 2: hide columns whose every data value is exactly zero or empty.
// Values are untouched; only column visibility changes.
func stageHideZeroColumns(r *sheetRun) error {
	if !r.tmpl.HideZeroColumns {
		return nil
	}
	for col := r.firstCol; col <= r.lastCol; col++ {
		allZero := true
		for row := r.headerRow + 1; row <= r.rows; row++ {
			raw := r.doc.Raw(r.sheet, row, col)
			if raw == "" {
				continue
			}
			v, isNum := r.doc.Numeric(r.sheet, row, col)
			if !isNum || v != 0 {
				allZero = false
				break
			}
		}
		if !allZero {
			continue
		}
		letter, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := r.doc.Edit().SetColVisible(r.sheet, letter, false); err != nil {
			return err
		}
	}
	return nil
}

// Stage 3: explicit column_formats first, then the magnitude fallback for
// the remaining columns. column_formats always wins for a column it names.
func stageNumberFormats(r *sheetRun) error {
	formatted := make(map[int]bool)

	for _, name := range sortedKeys(r.tmpl.ColumnFormats) {
		format := r.tmpl.ColumnFormats[name]
		for _, col := range r.lookupOrWarn(name, "column_formats") {
			formatted[col] = true
			if err := setColumnNumberFormat(r, col, format); err != nil {
				return err
			}
		}
	}

	mag := r.tmpl.MagnitudeFormat
	if mag == nil || !mag.Enabled {
		return nil
	}

	for _, name := range r.colMap.Names() {
		for _, col := range r.colMap.Lookup(name) {
			if formatted[col] {
				continue
			}
			medianAbs, ok := columnMagnitude(r, col)
			if !ok {
				// Dates and columns without a non-zero numeric value keep
				// their existing format.
				continue
			}
			format, ok := FormatForMagnitude(mag.Rules, medianAbs)
			if !ok {
				continue
			}
			if err := setColumnNumberFormat(r, col, format); err != nil {
				return err
			}
		}
	}
	return nil
}

func setColumnNumberFormat(r *sheetRun, col int, format string) error {
	r.appliedFormats[col] = format
	style := &excelize.Style{CustomNumFmt: &format}
	for row := r.headerRow + 1; row <= r.rows; row++ {
		if err := setMergedStyle(r, row, col, style); err != nil {
			return err
		}
	}
	return nil
}

// Stage 4: header and super-header visual style, freeze panes, auto-filter,
// and per-section fill overrides.
func stageHeaderStyle(r *sheetRun) error {
	if cfg := r.tmpl.SuperHeaderStyle; cfg != nil && r.headerRow > 1 {
		style := headerStyle(cfg)
		for row := 1; row < r.headerRow; row++ {
			for col := 1; col <= r.cols; col++ {
				if r.doc.Raw(r.sheet, row, col) == "" {
					continue
				}
				if err := setMergedStyle(r, row, col, style); err != nil {
					return err
				}
			}
		}
	}

	cfg := r.tmpl.HeaderStyle
	if cfg != nil {
		style := headerStyle(cfg)
		for col := 1; col <= r.cols; col++ {
			if r.doc.Raw(r.sheet, r.headerRow, col) == "" {
				continue
			}
			if err := setMergedStyle(r, r.headerRow, col, style); err != nil {
				return err
			}
		}

		if cfg.Freeze {
			if err := freezeBelowHeader(r); err != nil {
				return err
			}
		}
		if cfg.AutoFilter {
			if err := applyAutoFilter(r); err != nil {
				return err
			}
		}
	}

	return applySectionColours(r)
}

func freezeBelowHeader(r *sheetRun) error {
	topLeft, err := excelize.CoordinatesToCellName(1, r.headerRow+1)
	if err != nil {
		return err
	}
	return r.doc.Edit().SetPanes(r.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      r.headerRow,
		TopLeftCell: topLeft,
		ActivePane:  "bottomLeft",
	})
}

func applyAutoFilter(r *sheetRun) error {
	lastCol, err := excelize.ColumnNumberToName(r.cols)
	if err != nil {
		return err
	}
	ref := fmt.Sprintf("A%d:%s%d", r.headerRow, lastCol, r.rows)
	return r.doc.Edit().AutoFilter(r.sheet, ref, nil)
}

// applySectionColours overrides the header and super-header fill with each
// section's palette colour between divider boundaries.
func applySectionColours(r *sheetRun) error {
	if len(r.tmpl.SectionColors) == 0 || len(r.tmpl.SectionDividers) == 0 {
		return nil
	}
	byCol := sectionColourByColumn(r.firstCol, r.tmpl.SectionDividers, r.lastCol, r.tmpl.SectionColors)

	startRow := r.headerRow
	if r.headerRow > 1 {
		startRow = r.headerRow - 1
	}
	for row := startRow; row <= r.headerRow; row++ {
		for col, colour := range byCol {
			style := &excelize.Style{Fill: solidFill(colour)}
			if err := setMergedStyle(r, row, col, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stage 5: data area styling. Cell borders, row fills from the group/band
// resolver, numeric right / text left alignment.
func stageDataStyle(r *sheetRun) error {
	var borders []excelize.Border
	if r.tmpl.Borders != nil {
		borders = allSidesBorder(r.tmpl.Borders)
	}

	rowFills := buildRowFills(r)
	rightAlign := &excelize.Alignment{Horizontal: "right"}
	leftAlign := &excelize.Alignment{Horizontal: "left"}

	for row := r.headerRow + 1; row <= r.rows; row++ {
		fill, hasFill := rowFills[row]
		for col := r.firstCol; col <= r.lastCol; col++ {
			style := &excelize.Style{Border: borders}
			if hasFill {
				style.Fill = solidFill(fill)
			}
			if raw := r.doc.Raw(r.sheet, row, col); raw != "" && !r.doc.IsBool(r.sheet, row, col) {
				if _, isNum := r.doc.Numeric(r.sheet, row, col); isNum {
					style.Alignment = rightAlign
				} else {
					style.Alignment = leftAlign
				}
			}
			if len(style.Border) == 0 && style.Fill.Type == "" && style.Alignment == nil {
				continue
			}
			if err := setMergedStyle(r, row, col, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stage 6: a distinguished left border at each section boundary, from the
// super-header row through the last data row.
func stageSectionDividers(r *sheetRun) error {
	if len(r.tmpl.SectionDividers) == 0 {
		return nil
	}
	divider := excelize.Border{
		Type:  "left",
		Color: normalizeColour(r.tmpl.SectionDividerColor),
		Style: getBorderStyle("medium"),
	}

	startRow := r.headerRow
	if r.headerRow > 1 {
		startRow = r.headerRow - 1
	}
	for _, col := range r.tmpl.SectionDividers {
		if col < 1 || col > r.cols {
			continue
		}
		for row := startRow; row <= r.rows; row++ {
			style := &excelize.Style{Border: []excelize.Border{divider}}
			if err := setMergedStyle(r, row, col, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stage 7: perimeter border around the full detected table extent.
func stageOuterBorder(r *sheetRun) error {
	cfg := r.tmpl.OuterBorder
	if cfg == nil {
		return nil
	}
	colour := normalizeColour(cfg.Color)
	styleID := getBorderStyle(cfg.Style)

	topRow := r.headerRow
	if r.headerRow > 1 {
		topRow = r.headerRow - 1
	}
	botRow := r.rows

	for row := topRow; row <= botRow; row++ {
		for col := r.firstCol; col <= r.lastCol; col++ {
			var sides []excelize.Border
			if row == topRow {
				sides = append(sides, excelize.Border{Type: "top", Color: colour, Style: styleID})
			}
			if row == botRow {
				sides = append(sides, excelize.Border{Type: "bottom", Color: colour, Style: styleID})
			}
			if col == r.firstCol {
				sides = append(sides, excelize.Border{Type: "left", Color: colour, Style: styleID})
			}
			if col == r.lastCol {
				sides = append(sides, excelize.Border{Type: "right", Color: colour, Style: styleID})
			}
			if len(sides) == 0 {
				continue
			}
			if err := setMergedStyle(r, row, col, &excelize.Style{Border: sides}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stage 9: rewrite header cell text from column_rename. This is the only
// point where display names change, so every earlier name-based lookup ran
// against original names.
func stageColumnRenames(r *sheetRun) error {
	for _, oldName := range sortedKeys(r.tmpl.ColumnRename) {
		newName := r.tmpl.ColumnRename[oldName]
		for _, col := range r.lookupOrWarn(oldName, "column_rename") {
			cell, err := excelize.CoordinatesToCellName(col, r.headerRow)
			if err != nil {
				return err
			}
			if err := r.doc.Edit().SetCellValue(r.sheet, cell, newName); err != nil {
				return err
			}
		}
	}
	return nil
}
