package convert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCSVConverter(t *testing.T) {
	c := NewCSVConverter()

	got, err := c.Convert([]byte("name,count\nwidgets,3\npipes|here,1\n"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), got)
	}
	if lines[0] != "| name | count |" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "| --- | --- |" {
		t.Errorf("separator = %q", lines[1])
	}
	if !strings.Contains(lines[3], `pipes\|here`) {
		t.Errorf("pipe not escaped: %q", lines[3])
	}
}

func TestCSVConverterEmpty(t *testing.T) {
	got, err := NewCSVConverter().Convert(nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestHTMLConverter(t *testing.T) {
	got, err := NewHTMLConverter().Convert([]byte("<html><body><h1>Heading</h1><p>body text</p></body></html>"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(got, "Heading") || !strings.Contains(got, "body text") {
		t.Errorf("markdown missing content: %q", got)
	}
}

func TestExcelConverter(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"item", "qty"},
		{"bolts", "12"},
		{"nuts", "7"},
	}
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				t.Fatal(err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := NewExcelConverter().Convert(buf.Bytes())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, want := range []string{"## " + sheet, "| item | qty |", "| bolts | 12 |"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()

	got, err := r.Convert([]byte("a,b\n1,2\n3,4\n"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(got, "| a | b |") {
		t.Errorf("csv not routed to the csv converter: %q", got)
	}

	if _, err := r.Convert([]byte("\x00\x01\x02 binary junk")); err == nil {
		t.Error("expected an error for an unconvertible payload")
	}
}
