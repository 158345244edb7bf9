package document

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func createWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.xlsx")

	f := excelize.NewFile()
	defer func() {
		require.NoError(t, f.Close())
	}()

	sheet := "Sheet1"
	require.NoError(t, f.SetCellValue(sheet, "A1", "Name"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Rate"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "When"))

	require.NoError(t, f.SetCellValue(sheet, "A2", "Alpha"))
	require.NoError(t, f.SetCellValue(sheet, "B2", 0.0525))
	require.NoError(t, f.SetCellValue(sheet, "C2", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, f.SetCellValue(sheet, "A3", "Beta"))
	require.NoError(t, f.SetCellValue(sheet, "B3", -1.5))

	pct := "0.00%"
	styleID, err := f.NewStyle(&excelize.Style{CustomNumFmt: &pct})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B3", styleID))

	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpen_DualViews(t *testing.T) {
	path := createWorkbook(t)
	doc, err := Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, path, doc.Path())
	assert.Equal(t, []string{"Sheet1"}, doc.Sheets())
	assert.True(t, doc.HasSheet("Sheet1"))
	assert.False(t, doc.HasSheet("Nope"))

	rows, cols, err := doc.Dims("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
}

func TestDocument_RawAndNumeric(t *testing.T) {
	path := createWorkbook(t)
	doc, err := Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, "Alpha", doc.Raw("Sheet1", 2, 1))
	assert.Equal(t, "", doc.Raw("Sheet1", 99, 1), "out-of-grid reads are blank")
	assert.Equal(t, "", doc.Raw("Sheet1", 2, 99))

	v, ok := doc.Numeric("Sheet1", 2, 2)
	assert.True(t, ok)
	assert.InDelta(t, 0.0525, v, 1e-9)

	_, ok = doc.Numeric("Sheet1", 2, 1)
	assert.False(t, ok, "text is not numeric")

	_, ok = doc.Numeric("Sheet1", 3, 3)
	assert.False(t, ok, "blank is not numeric")
}

func TestDocument_NumFmtAndDates(t *testing.T) {
	path := createWorkbook(t)
	doc, err := Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, "0.00%", doc.NumFmt("Sheet1", 2, 2))
	assert.False(t, doc.IsDateCell("Sheet1", 2, 2))
	assert.True(t, doc.IsDateCell("Sheet1", 2, 3))
	assert.False(t, doc.IsDateCell("Sheet1", 2, 1))
}

func TestIsDateFormat(t *testing.T) {
	assert.True(t, IsDateFormat("mm/dd/yyyy"))
	assert.True(t, IsDateFormat("d-mmm-yy"))
	assert.False(t, IsDateFormat(""))
	assert.False(t, IsDateFormat("#,##0.00"))
	assert.False(t, IsDateFormat("0.00%"))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"), testLogger())
	require.Error(t, err)
	var werr *WorkbookError
	assert.ErrorAs(t, err, &werr)
}

func TestDocument_EditDoesNotAffectDataView(t *testing.T) {
	path := createWorkbook(t)
	doc, err := Open(path, testLogger())
	require.NoError(t, err)
	defer doc.Close()

	require.NoError(t, doc.Edit().SetCellValue("Sheet1", "A1", "Renamed"))

	// The data view is a separate projection and still reads the original.
	assert.Equal(t, "Name", doc.Raw("Sheet1", 1, 1))
}
