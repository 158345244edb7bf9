package engine

// Section and group resolution. Section identity is purely positional: the
// boundaries come from the template's section_dividers, never from cell
// contents. Whatever produced the template decided where sections start.

// sectionBoundaries returns the column boundaries of each section:
// boundaries[i] is the first column of section i, and boundaries[len-1] is
// one past the last column.
func sectionBoundaries(firstDataCol int, dividers []int, maxCol int) []int {
	bounds := make([]int, 0, len(dividers)+2)
	bounds = append(bounds, firstDataCol)
	bounds = append(bounds, dividers...)
	bounds = append(bounds, maxCol+1)
	return bounds
}

// sectionColourByColumn maps each column to its section's palette colour.
// Sections beyond the palette are left uncoloured.
func sectionColourByColumn(firstDataCol int, dividers []int, maxCol int, colours []string) map[int]string {
	byCol := make(map[int]string)
	bounds := sectionBoundaries(firstDataCol, dividers, maxCol)
	for sec := 0; sec < len(bounds)-1 && sec < len(colours); sec++ {
		for col := bounds[sec]; col < bounds[sec+1] && col <= maxCol; col++ {
			byCol[col] = colours[sec]
		}
	}
	return byCol
}

// buildRowFills computes the fill colour of each data row.
//
// With group_by_column, rows are coloured by a palette cursor that advances
// every time the grouping column's value changes from the previous row,
// wrapping when the palette is exhausted. A group value that recurs
// non-contiguously gets whatever colour the cursor is on, not its original
// colour.
//
// Without it, banded_rows colours every other data row.
func buildRowFills(r *sheetRun) map[int]string {
	fills := make(map[int]string)

	if cfg := r.tmpl.GroupByColumn; cfg != nil {
		indices := r.lookupOrWarn(cfg.Column, "group_by_column")
		if len(indices) == 0 {
			return fills
		}
		groupCol := indices[0]
		palette := cfg.Colors

		cursor := 0
		started := false
		prev := ""
		for row := r.headerRow + 1; row <= r.rows; row++ {
			val := r.doc.Raw(r.sheet, row, groupCol)
			if !started {
				started = true
			} else if val != prev {
				cursor = (cursor + 1) % len(palette)
			}
			prev = val
			fills[row] = palette[cursor]
		}
		return fills
	}

	if cfg := r.tmpl.BandedRows; cfg != nil {
		for row := r.headerRow + 1; row <= r.rows; row++ {
			if (row-r.headerRow)%2 == 0 {
				fills[row] = cfg.Color
			}
		}
	}
	return fills
}
