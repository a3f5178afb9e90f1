package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatTable is a boxed table (default).
	FormatTable OutputFormat = "table"
	// FormatJSON is indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV with a header row.
	FormatCSV OutputFormat = "csv"
	// FormatMarkdown is a Markdown table.
	FormatMarkdown OutputFormat = "markdown"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "", "table", "text":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, csv or markdown)", s)
	}
}

// Tabular is data that renders as rows and columns.
type Tabular interface {
	Header() []string
	Rows() [][]any
}

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data Tabular) error
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	case FormatMarkdown:
		return &TableFormatter{Markdown: true}
	default:
		return &TableFormatter{}
	}
}

// Render writes data in format.
func Render(w io.Writer, format OutputFormat, data Tabular) error {
	return NewFormatter(format).FormatTo(w, data)
}

// TableFormatter renders a go-pretty table.
type TableFormatter struct {
	Markdown bool
}

// FormatTo writes data as a table followed by a row count.
func (f *TableFormatter) FormatTo(w io.Writer, data Tabular) error {
	rows := data.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, 0, len(data.Header()))
	for _, h := range data.Header() {
		header = append(header, h)
	}
	t.AppendHeader(header)
	for _, r := range rows {
		t.AppendRow(table.Row(r))
	}

	if f.Markdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return err
}

// JSONFormatter writes the data value itself as JSON. Values that are not
// JSON-friendly should implement json.Marshaler.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to w in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data Tabular) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter writes a header row and one record per row.
type CSVFormatter struct{}

// FormatTo writes data to w in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data Tabular) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(data.Header()); err != nil {
		return err
	}
	for _, row := range data.Rows() {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
