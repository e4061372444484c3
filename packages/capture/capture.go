package capture

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	"github.com/tidwall/gjson"
)

type Source string

const (
	SourceBody     Source = "body"
	SourceHeader   Source = "header"
	SourceStatus   Source = "status"
	SourceDuration Source = "duration"
)

// Capture names a value to pull out of a response.
type Capture struct {
	Name   string
	Source Source
	Path   string
}

// Parse reads an expression such as "body.data.id", "header.X-Request-Id",
// "status" or "duration". Anything else is a body path.
func Parse(name, expr string) (Capture, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Capture{}, fmt.Errorf("capture name is required")
	}
	expr = strings.TrimSpace(expr)

	head, rest, _ := strings.Cut(expr, ".")
	switch Source(head) {
	case SourceStatus, SourceDuration:
		if rest != "" {
			return Capture{}, fmt.Errorf("capture %s: %s takes no path", name, head)
		}
		return Capture{Name: name, Source: Source(head)}, nil
	case SourceHeader:
		if rest == "" {
			return Capture{}, fmt.Errorf("capture %s: header name is required", name)
		}
		return Capture{Name: name, Source: SourceHeader, Path: rest}, nil
	case SourceBody:
		return Capture{Name: name, Source: SourceBody, Path: rest}, nil
	default:
		return Capture{Name: name, Source: SourceBody, Path: expr}, nil
	}
}

type Extractor struct {
	record   history.Record
	bodyJSON gjson.Result
}

func NewExtractor(rec history.Record) *Extractor {
	e := &Extractor{record: rec}

	switch body := rec.ResponseBody.(type) {
	case nil:
	case string:
		if gjson.Valid(body) {
			e.bodyJSON = gjson.Parse(body)
		}
	default:
		if data, err := json.Marshal(body); err == nil {
			e.bodyJSON = gjson.ParseBytes(data)
		}
	}
	return e
}

func (e *Extractor) Extract(c Capture) (any, bool) {
	switch c.Source {
	case SourceBody:
		return e.extractFromBody(c.Path)
	case SourceHeader:
		return e.extractFromHeader(c.Path)
	case SourceStatus:
		if e.record.Status == history.StatusTransportError {
			return nil, false
		}
		return e.record.Status, true
	case SourceDuration:
		return e.record.ElapsedMs, true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" && e.record.ResponseBody != nil {
			return fmt.Sprint(e.record.ResponseBody), true
		}
		return nil, false
	}

	if path == "" {
		return resultValue(e.bodyJSON), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return resultValue(result), true
}

// resultValue keeps numbers as json.Number so large integers survive, and
// returns objects and arrays as their JSON text.
func resultValue(r gjson.Result) any {
	switch {
	case r.Type == gjson.Number:
		if r.Raw != "" {
			return json.Number(r.Raw)
		}
		return json.Number(strconv.FormatFloat(r.Num, 'f', -1, 64))
	case r.IsObject(), r.IsArray():
		return r.Raw
	default:
		return r.Value()
	}
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	for k, v := range e.record.ResponseHeaders {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// ExtractAll returns the values that were found, keyed by capture name.
func ExtractAll(rec history.Record, captures []Capture) map[string]any {
	extractor := NewExtractor(rec)
	results := make(map[string]any)

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		}
	}

	return results
}

// Apply extracts captures from rec and writes them into environment,
// overwriting existing variables of the same name. It returns the values
// written.
func Apply(rec history.Record, captures []Capture, environment *env.Environment) map[string]any {
	results := ExtractAll(rec, captures)
	if environment == nil {
		return results
	}
	for _, c := range captures {
		if value, ok := results[c.Name]; ok {
			environment.Set(c.Name, value)
		}
	}
	return results
}
