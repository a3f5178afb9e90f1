package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type rows struct {
	Items []row `json:"items"`
}

type row struct {
	Name  string `json:"name"`
	Match bool   `json:"match"`
}

func (r rows) Header() []string { return []string{"FORMULA", "MATCH"} }

func (r rows) Rows() [][]any {
	out := make([][]any, len(r.Items))
	for i, it := range r.Items {
		out[i] = []any{it.Name, it.Match}
	}
	return out
}

var sample = rows{Items: []row{{"sun-cap", true}, {"mars, rx", false}}}

func TestParseFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"":         FormatTable,
		"text":     FormatTable,
		"TABLE":    FormatTable,
		"json":     FormatJSON,
		"csv":      FormatCSV,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) succeeded")
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatTable, sample); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"FORMULA", "sun-cap", "true", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatTable, rows{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "(0 rows)\n" {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatMarkdown, sample); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "| sun-cap |") {
		t.Errorf("markdown output = %s", buf.String())
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatCSV, sample); err != nil {
		t.Fatal(err)
	}
	want := "FORMULA,MATCH\nsun-cap,true\n\"mars, rx\",false\n"
	if buf.String() != want {
		t.Errorf("csv output = %q, want %q", buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, sample); err != nil {
		t.Fatal(err)
	}
	var decoded rows
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(decoded.Items) != 2 || decoded.Items[0].Name != "sun-cap" {
		t.Errorf("decoded = %+v", decoded)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output not indented")
	}
}
