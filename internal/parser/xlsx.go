package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX emits one page per sheet, one line per row with tab separated cells.
func extractXLSX(data []byte) (*extraction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	ext := &extraction{}
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
		}
		var text strings.Builder
		if len(rows) > 0 {
			text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		}
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
		ext.pages = append(ext.pages, text.String())
	}
	return ext, nil
}
