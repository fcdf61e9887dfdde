package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVConverter converts CSV documents into markdown tables.
type CSVConverter struct{}

// NewCSVConverter creates a new CSVConverter.
func NewCSVConverter() *CSVConverter {
	return &CSVConverter{}
}

func (c *CSVConverter) AcceptedExtensions() []string {
	return []string{".csv"}
}

func (c *CSVConverter) AcceptedMimeTypes() []string {
	return []string{"text/csv"}
}

// Convert renders the CSV records as a markdown table. The first record is
// treated as the header row.
func (c *CSVConverter) Convert(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	var sb strings.Builder
	writeMarkdownRow(&sb, records[0])
	sb.WriteString("|")
	for range records[0] {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, record := range records[1:] {
		writeMarkdownRow(&sb, record)
	}
	return sb.String(), nil
}

func writeMarkdownRow(sb *strings.Builder, fields []string) {
	sb.WriteString("|")
	for _, field := range fields {
		sb.WriteString(" ")
		sb.WriteString(strings.ReplaceAll(field, "|", "\\|"))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

var _ Converter = (*CSVConverter)(nil)
