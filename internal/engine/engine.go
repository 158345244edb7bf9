// Package engine implements the formatting pipeline: ten ordered mutation
// stages applied to the edit view of a workbook, driven by an immutable,
// fully-defaulted template. Stage order is a correctness invariant: several
// stages must see original header names, and column widths must be computed
// after renames.
package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/sheetops/xlsxfmt/internal/document"
	"github.com/sheetops/xlsxfmt/internal/template"
)

// Pipeline applies one template to one document. A pipeline is fresh per
// invocation; it accumulates non-fatal warnings across sheets.
type Pipeline struct {
	tmpl     *template.Template
	logger   *logrus.Logger
	warnings []string
}

// Result reports what a successful run touched.
type Result struct {
	Sheets   []string
	Warnings []string
}

// stage is one ordered step of the pipeline. Every stage receives the same
// resolved template and the current document by explicit reference.
type stage struct {
	name  string
	apply func(*sheetRun) error
}

// sheetRun carries the per-sheet state the stages share: the column map and
// data bounds are built once, against original header names, before any
// stage mutates the sheet.
type sheetRun struct {
	doc       *document.Document
	tmpl      *template.Template
	pipe      *Pipeline
	sheet     string
	headerRow int
	rows      int
	cols      int

	colMap   *ColumnMap
	firstCol int
	lastCol  int

	// appliedFormats records the number format set on each column by the
	// numberFormats stage, consulted later for width estimation.
	appliedFormats map[int]string
}

// New constructs a pipeline for a validated, defaulted template.
func New(tmpl *template.Template, logger *logrus.Logger) *Pipeline {
	return &Pipeline{tmpl: tmpl, logger: logger}
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{"detect_bounds", stageDetectBounds},
		{"hide_zero_columns", stageHideZeroColumns},
		{"number_formats", stageNumberFormats},
		{"header_style", stageHeaderStyle},
		{"data_style", stageDataStyle},
		{"section_dividers", stageSectionDividers},
		{"outer_border", stageOuterBorder},
		{"conditional_formats", stageConditionalFormats},
		{"column_renames", stageColumnRenames},
		{"column_widths", stageColumnWidths},
	}
}

// Run applies the pipeline to every selected sheet, then drops non-target
// sheets from the edit view so the output contains only formatted sheets.
// Any stage failure aborts before persistence; the caller never saves a
// partially-formatted workbook.
func (p *Pipeline) Run(doc *document.Document) (*Result, error) {
	sheets := p.tmpl.SelectSheets(doc.Sheets())
	if len(sheets) == 0 {
		p.warnf("no sheets matched the template's sheet selection")
		return &Result{Warnings: p.warnings}, nil
	}

	for _, sheet := range sheets {
		if err := p.runSheet(doc, sheet); err != nil {
			return nil, err
		}
	}

	for _, name := range doc.Sheets() {
		if !contains(sheets, name) {
			if err := doc.Edit().DeleteSheet(name); err != nil {
				p.logger.WithError(err).WithField("sheet", name).Warn("Failed to drop non-target sheet")
			}
		}
	}

	return &Result{Sheets: sheets, Warnings: p.warnings}, nil
}

func (p *Pipeline) runSheet(doc *document.Document, sheet string) error {
	rows, cols, err := doc.Dims(sheet)
	if err != nil {
		return err
	}
	if rows == 0 {
		p.warnf("sheet '%s' is empty; skipped", sheet)
		return nil
	}
	if p.tmpl.HeaderRow > rows {
		return &template.ValidationError{
			Field:   "header_row",
			Value:   p.tmpl.HeaderRow,
			Message: fmt.Sprintf("beyond the %d populated rows of sheet '%s'", rows, sheet),
		}
	}

	run := &sheetRun{
		doc:            doc,
		tmpl:           p.tmpl,
		pipe:           p,
		sheet:          sheet,
		headerRow:      p.tmpl.HeaderRow,
		rows:           rows,
		cols:           cols,
		appliedFormats: make(map[int]string),
	}
	run.colMap = BuildColumnMap(doc, sheet, run.headerRow, cols)

	if err := clearNullLiterals(run); err != nil {
		return err
	}

	for _, st := range p.stages() {
		p.logger.WithFields(logrus.Fields{
			"sheet": sheet,
			"stage": st.name,
		}).Debug("Applying stage")
		if err := st.apply(run); err != nil {
			return &StageError{Stage: st.name, Sheet: sheet, Cause: err}
		}
	}
	return nil
}

// clearNullLiterals blanks literal "NULL" strings in the data area before
// any formatting runs. Upstream exports frequently emit the string instead
// of an empty cell.
func clearNullLiterals(r *sheetRun) error {
	first, last := headerColumnBounds(r)
	for row := r.headerRow + 1; row <= r.rows; row++ {
		for col := first; col <= last; col++ {
			if r.doc.Raw(r.sheet, row, col) != "NULL" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				continue
			}
			if err := r.doc.Edit().SetCellValue(r.sheet, cell, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.logger.Warn(msg)
	p.warnings = append(p.warnings, msg)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
