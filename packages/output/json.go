package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/executor"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
)

// JSONOutcome is the JSON shape of one send
type JSONOutcome struct {
	Tab        string             `json:"tab"`
	Generation uint64             `json:"generation"`
	Phase      string             `json:"phase"`
	Stale      bool               `json:"stale,omitempty"`
	Request    *JSONRequest       `json:"request"`
	Response   *executor.Response `json:"response,omitempty"`
	Error      string             `json:"error,omitempty"`
	ErrorKind  string             `json:"errorKind,omitempty"`
	RecordID   string             `json:"recordId,omitempty"`
	Captures   map[string]any     `json:"captures,omitempty"`
}

// JSONRequest is the request as it was sent
type JSONRequest struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Body     any               `json:"body,omitempty"`
	Degraded bool              `json:"degraded,omitempty"`
}

// JSONStats is the JSON shape of history.Stats, in milliseconds
type JSONStats struct {
	Count  int   `json:"count"`
	Errors int   `json:"errors"`
	Min    int64 `json:"min"`
	Mean   int64 `json:"mean"`
	P50    int64 `json:"p50"`
	P95    int64 `json:"p95"`
	P99    int64 `json:"p99"`
	Max    int64 `json:"max"`
}

// JSONEnvironment is an environment summary
type JSONEnvironment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Variables int    `json:"variables"`
	Active    bool   `json:"active"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatOutcome(out executor.Outcome, captures map[string]any) {
	doc := JSONOutcome{
		Tab:        out.TabID,
		Generation: out.Generation,
		Phase:      out.Phase.String(),
		Stale:      out.Stale,
		Request: &JSONRequest{
			Method:   out.Request.Method,
			URL:      out.Request.URL,
			Headers:  out.Request.Headers,
			Params:   out.Request.Params,
			Body:     out.Request.Body,
			Degraded: out.Request.Degraded,
		},
		Response:  out.Response,
		ErrorKind: ErrorKind(out.Err),
		Captures:  captures,
	}
	if out.Err != nil {
		doc.Error = out.Err.Error()
	}
	if out.Record != nil {
		doc.RecordID = out.Record.ID
	}
	f.encode(doc)
}

func (f *JSONFormatter) FormatHistory(records []history.Record) {
	if records == nil {
		records = []history.Record{}
	}
	f.encode(records)
}

func (f *JSONFormatter) FormatStats(stats history.Stats) {
	f.encode(JSONStats{
		Count:  stats.Count,
		Errors: stats.Errors,
		Min:    ms(stats.Min),
		Mean:   ms(stats.Mean),
		P50:    ms(stats.P50),
		P95:    ms(stats.P95),
		P99:    ms(stats.P99),
		Max:    ms(stats.Max),
	})
}

func (f *JSONFormatter) FormatEnvironments(environments []*env.Environment, activeID string) {
	out := make([]JSONEnvironment, 0, len(environments))
	for _, e := range environments {
		out = append(out, JSONEnvironment{
			ID:        e.ID,
			Name:      e.Name,
			Variables: len(e.Variables),
			Active:    e.ID == activeID,
		})
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(map[string]string{"error": err.Error()})
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}
