package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelConverter converts XLSX workbooks into markdown, one table per sheet.
type ExcelConverter struct{}

// NewExcelConverter creates a new ExcelConverter.
func NewExcelConverter() *ExcelConverter {
	return &ExcelConverter{}
}

func (c *ExcelConverter) AcceptedExtensions() []string {
	return []string{".xlsx"}
}

func (c *ExcelConverter) AcceptedMimeTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
}

// Convert renders every sheet as a markdown section with a table.
func (c *ExcelConverter) Convert(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		sb.WriteString("## " + sheet + "\n\n")
		writeMarkdownRow(&sb, rows[0])
		sb.WriteString("|")
		for range rows[0] {
			sb.WriteString(" --- |")
		}
		sb.WriteString("\n")
		for _, row := range rows[1:] {
			writeMarkdownRow(&sb, row)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var _ Converter = (*ExcelConverter)(nil)
