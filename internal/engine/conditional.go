package engine

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Stage 8: conditional formatting. Each rule targets columns either by
// explicit index (verbatim, bounds-checked, no name lookup) or by original
// header name (all matches). The only rule kind is the three-point colour
// scale, emitted as a native workbook rule so each cell's fill tracks its
// position between the column's min, median, and max.
func stageConditionalFormats(r *sheetRun) error {
	for i, rule := range r.tmpl.ConditionalFormats {
		var targets []int
		if len(rule.ColIndices) > 0 {
			for _, col := range rule.ColIndices {
				if col >= 1 && col <= r.cols {
					targets = append(targets, col)
				}
			}
		} else {
			context := fmt.Sprintf("conditional_format[%d]", i)
			for _, name := range rule.Columns {
				targets = append(targets, r.lookupOrWarn(name, context)...)
			}
		}

		opts := []excelize.ConditionalFormatOptions{
			{
				Type:     string(rule.Type),
				Criteria: "=",
				MinType:  "min",
				MinColor: normalizeColour(rule.MinColor),
				MidType:  "percentile",
				MidValue: "50",
				MidColor: normalizeColour(rule.MidColor),
				MaxType:  "max",
				MaxColor: normalizeColour(rule.MaxColor),
			},
		}

		for _, col := range targets {
			letter, err := excelize.ColumnNumberToName(col)
			if err != nil {
				return err
			}
			ref := fmt.Sprintf("%s%d:%s%d", letter, r.headerRow+1, letter, r.rows)
			if err := r.doc.Edit().SetConditionalFormat(r.sheet, ref, opts); err != nil {
				return err
			}
		}
	}
	return nil
}
