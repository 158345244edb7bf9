// Package document wraps excelize with the dual-view access discipline the
// formatting engine needs: a read-only data view whose formula cells resolve
// to their last computed result, and a mutable edit view whose formulas are
// preserved as stored. Both views are projections of the same file and are
// reconciled at open time.
package document

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Document holds both views of one workbook for the duration of an
// invocation. The data view is never mutated; the edit view is never read
// for computed values.
type Document struct {
	path   string
	edit   *excelize.File
	data   *excelize.File
	logger *logrus.Logger

	rawRows map[string][][]string
}

// Open loads the workbook twice and reconciles the two views. The caller
// owns the returned document and must Close it on every exit path.
func Open(path string, logger *logrus.Logger) (*Document, error) {
	data, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &WorkbookError{Operation: "open", Path: path, Cause: err}
	}

	edit, err := excelize.OpenFile(path)
	if err != nil {
		closeQuietly(data, logger)
		return nil, &WorkbookError{Operation: "open", Path: path, Cause: err}
	}

	d := &Document{
		path:    path,
		edit:    edit,
		data:    data,
		logger:  logger,
		rawRows: make(map[string][][]string),
	}
	if err := d.reconcile(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Close releases both underlying file handles.
func (d *Document) Close() {
	closeQuietly(d.edit, d.logger)
	closeQuietly(d.data, d.logger)
}

func closeQuietly(f *excelize.File, logger *logrus.Logger) {
	if err := f.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close workbook")
	}
}

// Path returns the file the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// Edit exposes the mutable view. Callers apply styles and header renames
// through it; cell values of data rows are left alone.
func (d *Document) Edit() *excelize.File {
	return d.edit
}

// Sheets returns the workbook's sheet names in workbook order.
func (d *Document) Sheets() []string {
	return d.edit.GetSheetList()
}

// HasSheet reports whether the workbook contains the named sheet.
func (d *Document) HasSheet(name string) bool {
	idx, err := d.edit.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Dims returns the populated row and column counts of a sheet, derived from
// the data view.
func (d *Document) Dims(sheet string) (rows, cols int, err error) {
	grid, err := d.Rows(sheet)
	if err != nil {
		return 0, 0, err
	}
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return len(grid), cols, nil
}

// Rows returns the sheet's raw cell values from the data view: formula cells
// yield their cached computed result, numeric cells their undecorated text.
// The grid is cached for the lifetime of the document.
func (d *Document) Rows(sheet string) ([][]string, error) {
	if grid, ok := d.rawRows[sheet]; ok {
		return grid, nil
	}
	grid, err := d.data.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &SheetError{Operation: "read", SheetName: sheet, Cause: err}
	}
	d.rawRows[sheet] = grid
	return grid, nil
}

// Raw returns the raw data-view value at a 1-based (row, col), or "" when
// the coordinate lies outside the populated grid.
func (d *Document) Raw(sheet string, row, col int) string {
	grid, err := d.Rows(sheet)
	if err != nil || row < 1 || row > len(grid) {
		return ""
	}
	r := grid[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return strings.TrimSpace(r[col-1])
}

// Numeric parses the data-view value at (row, col) as a number. Returns
// false for blanks, text, and booleans.
func (d *Document) Numeric(sheet string, row, col int) (float64, bool) {
	raw := d.Raw(sheet, row, col)
	if raw == "" {
		return 0, false
	}
	if d.IsBool(sheet, row, col) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsBool reports whether the data-view cell is boolean-typed. Booleans count
// as neither numeric nor text.
func (d *Document) IsBool(sheet string, row, col int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	ct, err := d.data.GetCellType(sheet, cell)
	return err == nil && ct == excelize.CellTypeBool
}

// reconcile verifies that the two views agree on workbook shape. A mismatch
// means the projections cannot be trusted and is fatal.
func (d *Document) reconcile() error {
	editSheets := d.edit.GetSheetList()
	dataSheets := d.data.GetSheetList()
	if len(editSheets) != len(dataSheets) {
		return &ConsistencyError{
			Path:   d.path,
			Detail: "edit and data views disagree on sheet count",
		}
	}
	for i, name := range editSheets {
		if dataSheets[i] != name {
			return &ConsistencyError{
				Path:   d.path,
				Detail: "edit and data views disagree on sheet names",
			}
		}
		dim1, err1 := d.edit.GetSheetDimension(name)
		dim2, err2 := d.data.GetSheetDimension(name)
		if err1 != nil || err2 != nil {
			continue
		}
		if dim1 != dim2 {
			return &ConsistencyError{
				Path:   d.path,
				Detail: "edit and data views disagree on dimensions of sheet '" + name + "'",
			}
		}
	}
	return nil
}
