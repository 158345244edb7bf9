package engine

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sheetops/xlsxfmt/internal/template"
)

// getBorderStyle converts a border style name to the excelize border style
// index.
func getBorderStyle(style string) int {
	styles := map[string]int{
		"thin":   1,
		"medium": 2,
		"dashed": 3,
		"dotted": 4,
		"thick":  5,
		"double": 6,
		"hair":   7,
	}
	if borderStyle, ok := styles[style]; ok {
		return borderStyle
	}
	return 1 // thin
}

// normalizeColour strips a leading # so both "4472C4" and "#4472C4" work.
func normalizeColour(colour string) string {
	return strings.TrimPrefix(colour, "#")
}

// headerStyle builds the excelize style for a header or super-header row.
// The bottom border carries the configured style; the other sides stay thin
// so adjacent header cells read as one band.
func headerStyle(cfg *template.StyleConfig) *excelize.Style {
	style := &excelize.Style{}

	font := &excelize.Font{}
	hasFont := false
	if cfg.FontBold {
		font.Bold = true
		hasFont = true
	}
	if cfg.FontColor != "" {
		font.Color = normalizeColour(cfg.FontColor)
		hasFont = true
	}
	if cfg.FontSize > 0 {
		font.Size = cfg.FontSize
		hasFont = true
	}
	if hasFont {
		style.Font = font
	}

	if cfg.FillColor != "" {
		style.Fill = solidFill(cfg.FillColor)
	}

	if cfg.Alignment != "" {
		style.Alignment = &excelize.Alignment{
			Horizontal: cfg.Alignment,
			Vertical:   "center",
		}
	}

	borderColour := normalizeColour(cfg.BorderColor)
	style.Border = []excelize.Border{
		{Type: "bottom", Color: borderColour, Style: getBorderStyle(cfg.BorderStyle)},
		{Type: "top", Color: borderColour, Style: getBorderStyle("thin")},
		{Type: "left", Color: borderColour, Style: getBorderStyle("thin")},
		{Type: "right", Color: borderColour, Style: getBorderStyle("thin")},
	}

	return style
}

func solidFill(colour string) excelize.Fill {
	return excelize.Fill{
		Type:    "pattern",
		Pattern: 1,
		Color:   []string{normalizeColour(colour)},
	}
}

func allSidesBorder(cfg *template.BorderConfig) []excelize.Border {
	colour := normalizeColour(cfg.Color)
	styleID := getBorderStyle(cfg.Style)
	return []excelize.Border{
		{Type: "top", Color: colour, Style: styleID},
		{Type: "bottom", Color: colour, Style: styleID},
		{Type: "left", Color: colour, Style: styleID},
		{Type: "right", Color: colour, Style: styleID},
	}
}

// setMergedStyle applies a style to one cell, merging with whatever is
// already there so stages never clobber each other's work. Later stages win
// on the properties they set.
func setMergedStyle(r *sheetRun, row, col int, style *excelize.Style) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	f := r.doc.Edit()

	existing := &excelize.Style{}
	if existingID, err := f.GetCellStyle(r.sheet, cell); err == nil && existingID > 0 {
		if s, err := f.GetStyle(existingID); err == nil && s != nil {
			existing = s
		}
	}

	mergedID, err := f.NewStyle(mergeStyles(existing, style))
	if err != nil {
		return err
	}
	return f.SetCellStyle(r.sheet, cell, cell, mergedID)
}

// mergeStyles merges a new style over an existing one. Properties the new
// style sets win; zero values preserve the existing style.
func mergeStyles(existing, new *excelize.Style) *excelize.Style {
	merged := &excelize.Style{}

	if new.Font != nil {
		merged.Font = &excelize.Font{}
		if existing.Font != nil {
			*merged.Font = *existing.Font
		}
		if new.Font.Bold {
			merged.Font.Bold = true
		}
		if new.Font.Size > 0 {
			merged.Font.Size = new.Font.Size
		}
		if new.Font.Color != "" {
			merged.Font.Color = new.Font.Color
		}
	} else if existing.Font != nil {
		merged.Font = existing.Font
	}

	if new.Fill.Type != "" {
		merged.Fill = new.Fill
	} else if existing.Fill.Type != "" {
		merged.Fill = existing.Fill
	}

	if len(new.Border) > 0 {
		borderMap := make(map[string]excelize.Border)
		for _, border := range existing.Border {
			borderMap[border.Type] = border
		}
		for _, border := range new.Border {
			borderMap[border.Type] = border
		}
		// Deterministic side order keeps style IDs stable across runs.
		for _, side := range []string{"left", "right", "top", "bottom"} {
			if border, ok := borderMap[side]; ok {
				merged.Border = append(merged.Border, border)
			}
		}
	} else if len(existing.Border) > 0 {
		merged.Border = existing.Border
	}

	if new.Alignment != nil {
		merged.Alignment = &excelize.Alignment{}
		if existing.Alignment != nil {
			*merged.Alignment = *existing.Alignment
		}
		if new.Alignment.Horizontal != "" {
			merged.Alignment.Horizontal = new.Alignment.Horizontal
		}
		if new.Alignment.Vertical != "" {
			merged.Alignment.Vertical = new.Alignment.Vertical
		}
		if new.Alignment.WrapText {
			merged.Alignment.WrapText = true
		}
	} else if existing.Alignment != nil {
		merged.Alignment = existing.Alignment
	}

	if new.NumFmt != 0 {
		merged.NumFmt = new.NumFmt
	} else {
		merged.NumFmt = existing.NumFmt
	}
	if new.CustomNumFmt != nil && *new.CustomNumFmt != "" {
		merged.CustomNumFmt = new.CustomNumFmt
	} else if existing.CustomNumFmt != nil {
		merged.CustomNumFmt = existing.CustomNumFmt
	}

	return merged
}
