package engine

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sheetops/xlsxfmt/internal/document"
	"github.com/sheetops/xlsxfmt/internal/template"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// createReportWorkbook writes a fixture with duplicate "Yield" headers, an
// all-zero column, and a mix of magnitudes.
func createReportWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.xlsx")

	f := excelize.NewFile()
	defer func() {
		require.NoError(t, f.Close())
	}()

	sheet := "Sheet1"
	headers := []string{"Name", "Amount", "Factor", "Yield", "Zeros", "Yield", "Notes"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}

	data := [][]any{
		{"Alpha", 348, 1.6, 0.05, 0, 1, "first"},
		{"Beta", -500, 2.5, 0.10, 0, 2, "NULL"},
		{"Gamma", 182, 3.9, 0.20, 0, 3, "third"},
	}
	for r, row := range data {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	require.NoError(t, f.SaveAs(path))
	return path
}

func reportTemplate() *template.Template {
	tmpl := &template.Template{
		HeaderStyle: &template.StyleConfig{
			FontBold:  true,
			FontColor: "#FFFFFF",
			FillColor: "#305496",
			Alignment: "center",
		},
		ColumnFormats: map[string]string{"Yield": "0.00"},
		MagnitudeFormat: &template.MagnitudeConfig{
			Enabled: true,
			Rules:   threeTierRules(),
		},
		ColumnRename:    map[string]string{"Yield": "Yld"},
		HideZeroColumns: true,
		BandedRows:      &template.BandedRowsConfig{Color: "#F2F2F2"},
		Borders:         &template.BorderConfig{},
		ColWidth:        "auto",
		ConditionalFormats: []template.ConditionalRule{
			{ColIndices: []int{6}},
			{Columns: []string{"Amount"}},
		},
	}
	tmpl.ApplyDefaults()
	return tmpl
}

func applyToFixture(t *testing.T, path string, tmpl *template.Template) (*document.Document, *Result) {
	t.Helper()
	doc, err := document.Open(path, testLogger())
	require.NoError(t, err)
	t.Cleanup(doc.Close)

	result, err := New(tmpl, testLogger()).Run(doc)
	require.NoError(t, err)
	return doc, result
}

func cellNumFmt(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	styleID, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	if styleID == 0 {
		return ""
	}
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	if style == nil || style.CustomNumFmt == nil {
		return ""
	}
	return *style.CustomNumFmt
}

func TestPipeline_NumberFormats(t *testing.T) {
	path := createReportWorkbook(t)
	doc, _ := applyToFixture(t, path, reportTemplate())
	f := doc.Edit()

	// Magnitude fallback: Amount has median_abs 348, Factor 2.5.
	assert.Equal(t, "#,##0", cellNumFmt(t, f, "Sheet1", "B2"))
	assert.Equal(t, "0.00", cellNumFmt(t, f, "Sheet1", "C2"))

	// Explicit column_formats wins for both duplicate Yield columns, even
	// though magnitude_format is enabled.
	assert.Equal(t, "0.00", cellNumFmt(t, f, "Sheet1", "D2"))
	assert.Equal(t, "0.00", cellNumFmt(t, f, "Sheet1", "F3"))

	// Text columns keep their format.
	assert.Equal(t, "", cellNumFmt(t, f, "Sheet1", "A2"))
}

func TestPipeline_HideZeroColumnsPreservesValues(t *testing.T) {
	path := createReportWorkbook(t)
	doc, _ := applyToFixture(t, path, reportTemplate())
	f := doc.Edit()

	visible, err := f.GetColVisible("Sheet1", "E")
	require.NoError(t, err)
	assert.False(t, visible, "all-zero column should be hidden")

	// Visibility only: the stored values survive.
	for _, cell := range []string{"E2", "E3", "E4"} {
		v, err := f.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, "0", v)
	}

	visible, err = f.GetColVisible("Sheet1", "B")
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestPipeline_RenameIndependence(t *testing.T) {
	path := createReportWorkbook(t)
	doc, _ := applyToFixture(t, path, reportTemplate())
	f := doc.Edit()

	// Both Yield headers display the new name...
	for _, cell := range []string{"D1", "F1"} {
		v, err := f.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, "Yld", v)
	}
	// ...while the format keyed by the original name was still applied.
	assert.Equal(t, "0.00", cellNumFmt(t, f, "Sheet1", "D2"))
}

func TestPipeline_ConditionalTargeting(t *testing.T) {
	path := createReportWorkbook(t)
	doc, _ := applyToFixture(t, path, reportTemplate())

	formats, err := doc.Edit().GetConditionalFormats("Sheet1")
	require.NoError(t, err)

	var ranges []string
	for ref := range formats {
		ranges = append(ranges, ref)
	}

	// col_indices [6] targets exactly column F; the name rule targets the
	// Amount column.
	assert.Contains(t, strings.Join(ranges, " "), "F2:F4")
	assert.Contains(t, strings.Join(ranges, " "), "B2:B4")
	for _, ref := range ranges {
		assert.NotContains(t, ref, "D2", "col_indices must not spill into name matches")
	}
}

func TestPipeline_NullLiteralsCleared(t *testing.T) {
	path := createReportWorkbook(t)
	doc, _ := applyToFixture(t, path, reportTemplate())

	v, err := doc.Edit().GetCellValue("Sheet1", "G3")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestPipeline_MissingColumnWarnsAndContinues(t *testing.T) {
	path := createReportWorkbook(t)
	tmpl := reportTemplate()
	tmpl.ColumnFormats["Spread"] = "0.0000"

	doc, result := applyToFixture(t, path, tmpl)

	require.NotEmpty(t, result.Warnings)
	joined := strings.Join(result.Warnings, " ")
	assert.Contains(t, joined, "Spread")

	// The valid rules still ran.
	assert.Equal(t, "0.00", cellNumFmt(t, doc.Edit(), "Sheet1", "D2"))
}

func TestPipeline_HeaderRowBeyondBounds(t *testing.T) {
	path := createReportWorkbook(t)
	tmpl := reportTemplate()
	tmpl.HeaderRow = 50

	doc, err := document.Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	_, err = New(tmpl, testLogger()).Run(doc)
	require.Error(t, err)
	var verr *template.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPipeline_Deterministic(t *testing.T) {
	path := createReportWorkbook(t)
	tmpl := reportTemplate()

	docA, _ := applyToFixture(t, path, tmpl)
	docB, _ := applyToFixture(t, path, tmpl)

	cells := []string{"A1", "B2", "C3", "D2", "F3", "G2"}
	for _, cell := range cells {
		idA, err := docA.Edit().GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		idB, err := docB.Edit().GetCellStyle("Sheet1", cell)
		require.NoError(t, err)

		styleA, err := docA.Edit().GetStyle(idA)
		require.NoError(t, err)
		styleB, err := docB.Edit().GetStyle(idB)
		require.NoError(t, err)
		assert.Equal(t, styleA, styleB, cell)
	}
}

func TestColumnMap_DuplicatesAndBlanks(t *testing.T) {
	path := createReportWorkbook(t)
	doc, err := document.Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	m := BuildColumnMap(doc, "Sheet1", 1, 7)
	assert.Equal(t, []int{4, 6}, m.Lookup("Yield"))
	assert.Equal(t, []int{2}, m.Lookup("Amount"))
	assert.Empty(t, m.Lookup("Nope"))
	assert.Equal(t, []string{"Name", "Amount", "Factor", "Yield", "Zeros", "Notes"}, m.Names())
}

func TestColumnMap_Suggest(t *testing.T) {
	path := createReportWorkbook(t)
	doc, err := document.Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	m := BuildColumnMap(doc, "Sheet1", 1, 7)
	assert.Equal(t, "Amount", m.Suggest("Amnt"))
	assert.Equal(t, "", m.Suggest("xyzzy"))
}

func TestBuildRowFills_GroupCursorAdvancesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grouped.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Group"))
	for i, g := range []string{"A", "A", "B", "B", "A"} {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, g))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	doc, err := document.Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	tmpl := &template.Template{
		GroupByColumn: &template.GroupByConfig{
			Column: "Group",
			Colors: []string{"#111111", "#222222"},
		},
	}
	tmpl.ApplyDefaults()

	pipe := New(tmpl, testLogger())
	run := &sheetRun{
		doc: doc, tmpl: tmpl, pipe: pipe,
		sheet: "Sheet1", headerRow: 1, rows: 6, cols: 1,
		colMap: BuildColumnMap(doc, "Sheet1", 1, 1),
	}

	fills := buildRowFills(run)
	// The recurring "A" group gets the wrapped cursor colour, not a colour
	// remembered from its first appearance.
	assert.Equal(t, "#111111", fills[2])
	assert.Equal(t, "#111111", fills[3])
	assert.Equal(t, "#222222", fills[4])
	assert.Equal(t, "#222222", fills[5])
	assert.Equal(t, "#111111", fills[6])
}

func TestBuildRowFills_Banded(t *testing.T) {
	path := createReportWorkbook(t)
	doc, err := document.Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	tmpl := &template.Template{BandedRows: &template.BandedRowsConfig{}}
	tmpl.ApplyDefaults()

	run := &sheetRun{
		doc: doc, tmpl: tmpl, pipe: New(tmpl, testLogger()),
		sheet: "Sheet1", headerRow: 1, rows: 4, cols: 7,
		colMap: BuildColumnMap(doc, "Sheet1", 1, 7),
	}

	fills := buildRowFills(run)
	_, row2 := fills[2]
	assert.False(t, row2)
	assert.Equal(t, template.DefaultBandColor, fills[3])
	_, row4 := fills[4]
	assert.False(t, row4)
}

func TestPipeline_SkipsBlankSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Blank")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Amount"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Alpha"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 42.5))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tmpl := &template.Template{
		ColumnFormats: map[string]string{"Amount": "0.00"},
	}
	tmpl.ApplyDefaults()

	doc, result := applyToFixture(t, path, tmpl)

	// The stray empty sheet is skipped with a warning; the data sheet is
	// still formatted.
	joined := strings.Join(result.Warnings, " ")
	assert.Contains(t, joined, "Blank")
	assert.Contains(t, joined, "empty")
	assert.Equal(t, "0.00", cellNumFmt(t, doc.Edit(), "Sheet1", "B2"))
}

func TestPipeline_ColumnWidthsCountRunes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accents.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Catégorie été"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "été"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tmpl := &template.Template{ColWidth: "auto"}
	tmpl.ApplyDefaults()

	doc, _ := applyToFixture(t, path, tmpl)

	// "Catégorie été" is 13 characters; byte length would overcount the
	// accents.
	width, err := doc.Edit().GetColWidth("Sheet1", "A")
	require.NoError(t, err)
	assert.InDelta(t, 15.0, width, 0.01)
}

func TestPipeline_BooleanCellsNotAligned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bools.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Flag"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Alpha"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", true))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tmpl := &template.Template{Borders: &template.BorderConfig{}}
	tmpl.ApplyDefaults()

	doc, _ := applyToFixture(t, path, tmpl)
	edit := doc.Edit()

	styleID, err := edit.GetCellStyle("Sheet1", "A2")
	require.NoError(t, err)
	style, err := edit.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Alignment)
	assert.Equal(t, "left", style.Alignment.Horizontal)

	styleID, err = edit.GetCellStyle("Sheet1", "B2")
	require.NoError(t, err)
	style, err = edit.GetStyle(styleID)
	require.NoError(t, err)
	assert.Nil(t, style.Alignment, "booleans keep their default alignment")
}

func TestPipeline_DropsNonTargetSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Scratch")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "x"))
	require.NoError(t, f.SetCellValue("Scratch", "A1", "tmp"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tmpl := &template.Template{Sheets: []string{"Sheet1"}}
	require.NoError(t, tmpl.Validate())
	tmpl.ApplyDefaults()

	doc, result := applyToFixture(t, path, tmpl)
	assert.Equal(t, []string{"Sheet1"}, result.Sheets)
	assert.Equal(t, []string{"Sheet1"}, doc.Edit().GetSheetList())
}
