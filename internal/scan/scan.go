// Package scan implements the inference mode: it inspects an unformatted
// workbook, classifies each column, and proposes a draft template. The scan
// is a pure read: it never touches the source document, and its report is
// advisory output for a human to copy-edit, never an input to the apply
// pipeline.
package scan

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sheetops/xlsxfmt/internal/document"
	"github.com/sheetops/xlsxfmt/internal/engine"
	"github.com/sheetops/xlsxfmt/internal/template"
)

// Column classifications.
const (
	TypeEmpty            = "empty"
	TypeDate             = "date"
	TypeText             = "text"
	TypeInteger          = "integer"
	TypeFloat            = "float"
	TypePercentage       = "percentage"
	TypeLikelyPercentage = "likely_percentage"
)

// pctHeaderKeywords mark headers whose small-valued columns are probably
// stored as fractions (0.0231 meaning 2.31%).
var pctHeaderKeywords = []string{"rate", "pct", "%", "percent"}

const maxSampleValues = 5

// Report is the full scan output: per-sheet column detail plus a draft
// template seed.
type Report struct {
	File          string             `json:"file"`
	HeaderRow     int                `json:"header_row"`
	Sheets        []SheetReport      `json:"sheets"`
	DraftTemplate *template.Template `json:"draft_template"`
}

// SheetReport describes one sheet's shape and columns.
type SheetReport struct {
	Name    string         `json:"name"`
	Rows    int            `json:"rows"`
	Cols    int            `json:"cols"`
	Columns []ColumnReport `json:"columns"`
}

// ColumnReport is the per-column classification. SuggestedFormat for a
// likely_percentage column is advisory only: NeedsConfirmation is set and
// the draft template deliberately omits it.
type ColumnReport struct {
	Index             int      `json:"index"`
	Header            string   `json:"header,omitempty"`
	DetectedType      string   `json:"detected_type"`
	Count             int      `json:"count"`
	Stats             *Stats   `json:"stats,omitempty"`
	SampleValues      []string `json:"sample_values,omitempty"`
	SuggestedFormat   string   `json:"suggested_format,omitempty"`
	AllInteger        bool     `json:"all_integer,omitempty"`
	NeedsConfirmation bool     `json:"needs_confirmation,omitempty"`
}

// Stats summarises a column's numeric values. MedianAbs excludes zeros.
type Stats struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	MedianAbs float64 `json:"median_abs"`
}

// Scan classifies every column of every sheet below the candidate header
// row and assembles the draft template.
func Scan(doc *document.Document, headerRow int, logger *logrus.Logger) (*Report, error) {
	report := &Report{
		File:      doc.Path(),
		HeaderRow: headerRow,
	}
	draftFormats := make(map[string]string)

	for _, sheet := range doc.Sheets() {
		rows, cols, err := doc.Dims(sheet)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"sheet": sheet,
			"rows":  rows,
			"cols":  cols,
		}).Debug("Scanning sheet")

		sr := SheetReport{Name: sheet, Rows: rows, Cols: cols}
		for col := 1; col <= cols; col++ {
			header := doc.Raw(sheet, headerRow, col)
			info := profileColumn(doc, sheet, col, headerRow, rows, header)
			info.Index = col
			info.Header = header
			sr.Columns = append(sr.Columns, info)

			if header != "" && info.SuggestedFormat != "" && !info.NeedsConfirmation {
				if _, seen := draftFormats[header]; !seen {
					draftFormats[header] = info.SuggestedFormat
				}
			}
		}
		report.Sheets = append(report.Sheets, sr)
	}

	report.DraftTemplate = draftTemplate(headerRow, draftFormats)
	return report, nil
}

// profileColumn samples the data-view values below the header and applies
// the classification priority: date, then percentage variants, then
// integer/float tiers, then text.
func profileColumn(doc *document.Document, sheet string, col, headerRow, rows int, header string) ColumnReport {
	var nums []float64
	var texts []string
	dateCount := 0
	pctFormatCount := 0
	total := 0

	for row := headerRow + 1; row <= rows; row++ {
		raw := doc.Raw(sheet, row, col)
		if raw == "" {
			continue
		}
		total++

		if doc.IsDateCell(sheet, row, col) {
			dateCount++
			continue
		}
		if strings.Contains(doc.NumFmt(sheet, row, col), "%") {
			pctFormatCount++
		}
		if v, ok := doc.Numeric(sheet, row, col); ok {
			nums = append(nums, v)
		} else {
			texts = append(texts, raw)
		}
	}

	if total == 0 {
		return ColumnReport{DetectedType: TypeEmpty}
	}

	if dateCount*2 > total {
		return ColumnReport{
			DetectedType:    TypeDate,
			Count:           dateCount,
			SuggestedFormat: "mm/dd/yyyy",
		}
	}

	if len(nums) == 0 {
		if len(texts) > maxSampleValues {
			texts = texts[:maxSampleValues]
		}
		return ColumnReport{
			DetectedType: TypeText,
			Count:        total - dateCount,
			SampleValues: texts,
		}
	}

	var absNonZero []float64
	allInt := true
	minV, maxV := nums[0], nums[0]
	for _, v := range nums {
		if v != 0 {
			absNonZero = append(absNonZero, math.Abs(v))
		}
		if v != math.Trunc(v) {
			allInt = false
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	medianAbs := engine.Median(absNonZero)

	allSmall := len(absNonZero) > 0
	for _, v := range absNonZero {
		if v > 1.0 {
			allSmall = false
			break
		}
	}
	headerLower := strings.ToLower(header)
	hasPctKeyword := false
	for _, kw := range pctHeaderKeywords {
		if strings.Contains(headerLower, kw) {
			hasPctKeyword = true
			break
		}
	}

	info := ColumnReport{
		Count: len(nums),
		Stats: &Stats{
			Min:       round4(minV),
			Max:       round4(maxV),
			MedianAbs: round4(medianAbs),
		},
		AllInteger: allInt,
	}

	switch {
	case pctFormatCount*2 > len(nums):
		info.DetectedType = TypePercentage
		info.SuggestedFormat = "0.00%"
	case allSmall && hasPctKeyword:
		// Values in [-1, 1] under a rate-ish header are probably stored
		// fractions, but multiplying the display by 100 is too invasive to
		// propose without a human signing off.
		info.DetectedType = TypeLikelyPercentage
		info.SuggestedFormat = "0.00%"
		info.NeedsConfirmation = true
	case allInt:
		info.DetectedType = TypeInteger
		info.SuggestedFormat = "#,##0"
	default:
		info.DetectedType = TypeFloat
		format, _ := engine.FormatForMagnitude(template.DefaultMagnitudeRules(), medianAbs)
		info.SuggestedFormat = format
	}
	return info
}

func draftTemplate(headerRow int, columnFormats map[string]string) *template.Template {
	return &template.Template{
		Name:      "auto_generated",
		Sheets:    []string{"*"},
		HeaderRow: headerRow,
		HeaderStyle: &template.StyleConfig{
			FontBold:   true,
			FontColor:  "#FFFFFF",
			FillColor:  "#305496",
			Alignment:  "center",
			Freeze:     true,
			AutoFilter: true,
		},
		ColumnFormats: columnFormats,
		MagnitudeFormat: &template.MagnitudeConfig{
			Enabled:  true,
			Priority: "fallback",
			Rules:    template.DefaultMagnitudeRules(),
		},
		ColWidth: "auto",
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
