package main

import (
	"encoding/json"
	"strings"
	"time"

	"orrery-hq/natal/pkg/batch"
	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/formula/lexer"
	"orrery-hq/natal/pkg/journal"
)

// tokenView renders lexer output.
type tokenView []lexer.Token

func (v tokenView) Header() []string { return []string{"#", "KIND", "VALUE", "POSITION"} }

func (v tokenView) Rows() [][]any {
	rows := make([][]any, len(v))
	for i, tok := range v {
		rows[i] = []any{i, tok.Kind.String(), tok.Value, formatPos(tok.Line, tok.Column)}
	}
	return rows
}

func (v tokenView) MarshalJSON() ([]byte, error) {
	type token struct {
		Kind   string `json:"kind"`
		Value  string `json:"value"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}
	out := make([]token, len(v))
	for i, tok := range v {
		out[i] = token{Kind: tok.Kind.String(), Value: tok.Value, Line: tok.Line, Column: tok.Column}
	}
	return json.Marshal(out)
}

// reportView renders a batch report.
type reportView struct {
	*batch.Report
}

func (v reportView) Header() []string {
	return []string{"FORMULA", "CHART", "RESULT", "DURATION", "ERROR"}
}

func (v reportView) Rows() [][]any {
	rows := make([][]any, len(v.Results))
	for i, r := range v.Results {
		rows[i] = []any{r.Formula, r.Chart, resultLabel(r.Outcome), r.Duration.Round(time.Microsecond), firstLine(r.Error)}
	}
	return rows
}

// recordView renders journal records.
type recordView []*journal.Record

func (v recordView) Header() []string {
	return []string{"RECORDED", "RUN", "FORMULA", "CHART", "RESULT", "ERROR"}
}

func (v recordView) Rows() [][]any {
	rows := make([][]any, len(v))
	for i, r := range v {
		run := r.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		rows[i] = []any{r.RecordedAt.Format(time.RFC3339), run, r.Formula, r.Chart, resultLabel(r.Outcome), firstLine(r.Error)}
	}
	return rows
}

func (v recordView) MarshalJSON() ([]byte, error) {
	return json.Marshal([]*journal.Record(v))
}

// diagnosticView renders validator output for one formula.
type diagnosticView struct {
	Formula     string                      `json:"formula"`
	Diagnostics []*formulaErrors.Diagnostic `json:"diagnostics"`
}

func (v diagnosticView) Header() []string {
	return []string{"SEVERITY", "POSITION", "MESSAGE", "SUGGESTION"}
}

func (v diagnosticView) Rows() [][]any {
	rows := make([][]any, len(v.Diagnostics))
	for i, d := range v.Diagnostics {
		rows[i] = []any{string(d.Severity), d.Position.String(), d.Message, d.Suggestion}
	}
	return rows
}

func resultLabel(outcome string) string {
	switch outcome {
	case journal.OutcomeMatch:
		return "✅ True"
	case journal.OutcomeNoMatch:
		return "❌ False"
	default:
		return "⚠ error"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func formatPos(line, col int) string {
	return ast.Position{Line: line, Column: col}.String()
}
