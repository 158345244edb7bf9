package engine

import (
	"github.com/sahilm/fuzzy"

	"github.com/sheetops/xlsxfmt/internal/document"
)

// ColumnMap resolves original header names to 1-based column indices within
// the header-row frame. Header names may repeat (the same label under
// several sections), so a lookup returns every matching index in
// left-to-right order.
type ColumnMap struct {
	names  []string
	byName map[string][]int
}

// BuildColumnMap reads the header row from the data view. Blank headers are
// skipped; surrounding whitespace is trimmed before matching.
func BuildColumnMap(doc *document.Document, sheet string, headerRow, cols int) *ColumnMap {
	m := &ColumnMap{byName: make(map[string][]int)}
	for col := 1; col <= cols; col++ {
		name := doc.Raw(sheet, headerRow, col)
		if name == "" {
			continue
		}
		if _, seen := m.byName[name]; !seen {
			m.names = append(m.names, name)
		}
		m.byName[name] = append(m.byName[name], col)
	}
	return m
}

// Lookup returns every column index whose header equals name, left to right.
// Explicit index lists in rules bypass this entirely.
func (m *ColumnMap) Lookup(name string) []int {
	return m.byName[name]
}

// Names returns the distinct header names in first-appearance order.
func (m *ColumnMap) Names() []string {
	return m.names
}

// Suggest returns the closest known header name to a missed lookup, for
// warning messages. Empty when nothing is plausibly close.
func (m *ColumnMap) Suggest(name string) string {
	matches := fuzzy.Find(name, m.names)
	if len(matches) == 0 {
		return ""
	}
	return m.names[matches[0].Index]
}

// lookupOrWarn resolves a name-keyed reference, recording a non-fatal
// warning when it matches nothing.
func (r *sheetRun) lookupOrWarn(name, context string) []int {
	indices := r.colMap.Lookup(name)
	if len(indices) == 0 {
		err := &ColumnNotFoundError{
			Column:     name,
			Sheet:      r.sheet,
			Suggestion: r.colMap.Suggest(name),
		}
		r.pipe.warnf("%s: %v; rule skipped", context, err)
	}
	return indices
}
