package capture

import (
	"encoding/json"
	"testing"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr    string
		want    Capture
		wantErr bool
	}{
		{expr: "status", want: Capture{Name: "v", Source: SourceStatus}},
		{expr: "duration", want: Capture{Name: "v", Source: SourceDuration}},
		{expr: "header.X-Request-Id", want: Capture{Name: "v", Source: SourceHeader, Path: "X-Request-Id"}},
		{expr: "body.data.id", want: Capture{Name: "v", Source: SourceBody, Path: "data.id"}},
		{expr: "body", want: Capture{Name: "v", Source: SourceBody}},
		{expr: "data.items.#", want: Capture{Name: "v", Source: SourceBody, Path: "data.items.#"}},
		{expr: "header", wantErr: true},
		{expr: "status.code", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse("v", tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse(" ", "status")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	rec := history.Record{
		Status:    201,
		ElapsedMs: 42,
		ResponseHeaders: map[string]string{
			"X-Request-Id": "abc",
		},
		ResponseBody: map[string]any{
			"data": map[string]any{
				"id":    json.Number("7"),
				"items": []any{"a", "b"},
				"name":  "alice",
			},
		},
	}
	e := NewExtractor(rec)

	tests := []struct {
		name    string
		capture Capture
		want    any
		found   bool
	}{
		{name: "json number", capture: Capture{Source: SourceBody, Path: "data.id"}, want: json.Number("7"), found: true},
		{name: "string", capture: Capture{Source: SourceBody, Path: "data.name"}, want: "alice", found: true},
		{name: "array length", capture: Capture{Source: SourceBody, Path: "data.items.#"}, want: json.Number("2"), found: true},
		{name: "array as JSON text", capture: Capture{Source: SourceBody, Path: "data.items"}, want: `["a","b"]`, found: true},
		{name: "missing path", capture: Capture{Source: SourceBody, Path: "data.nope"}, found: false},
		{name: "header case-insensitive", capture: Capture{Source: SourceHeader, Path: "x-request-id"}, want: "abc", found: true},
		{name: "missing header", capture: Capture{Source: SourceHeader, Path: "X-Nope"}, found: false},
		{name: "status", capture: Capture{Source: SourceStatus}, want: 201, found: true},
		{name: "duration", capture: Capture{Source: SourceDuration}, want: int64(42), found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.capture)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtract_TextBody(t *testing.T) {
	e := NewExtractor(history.Record{Status: 200, ResponseBody: "pong"})

	got, ok := e.Extract(Capture{Source: SourceBody})
	assert.True(t, ok)
	assert.Equal(t, "pong", got)

	_, ok = e.Extract(Capture{Source: SourceBody, Path: "a.b"})
	assert.False(t, ok)
}

func TestExtract_JSONText(t *testing.T) {
	e := NewExtractor(history.Record{Status: 200, ResponseBody: `{"token": "t-1"}`})

	got, ok := e.Extract(Capture{Source: SourceBody, Path: "token"})
	assert.True(t, ok)
	assert.Equal(t, "t-1", got)
}

func TestExtract_LargeIntegerKeepsPrecision(t *testing.T) {
	rec := history.Record{
		Status:       200,
		ResponseBody: map[string]any{"id": json.Number("9007199254740993")},
	}
	environment := &env.Environment{}

	got := Apply(rec, []Capture{{Name: "id", Source: SourceBody, Path: "id"}}, environment)

	assert.Equal(t, json.Number("9007199254740993"), got["id"])
	id, _ := environment.Lookup("id")
	assert.Equal(t, "9007199254740993", id)

	e := NewExtractor(history.Record{Status: 200, ResponseBody: `{"id": 9007199254740993}`})
	fromText, ok := e.Extract(Capture{Source: SourceBody, Path: "id"})
	assert.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), fromText)
}

func TestExtract_TransportErrorStatus(t *testing.T) {
	_, ok := NewExtractor(history.Record{Status: history.StatusTransportError}).Extract(Capture{Source: SourceStatus})
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	rec := history.Record{
		Status:       200,
		ResponseBody: map[string]any{"token": "t-2", "user": map[string]any{"id": json.Number("9")}},
	}
	environment := &env.Environment{Variables: []env.Variable{{Key: "token", Value: "old"}}}

	captures := []Capture{
		{Name: "token", Source: SourceBody, Path: "token"},
		{Name: "userId", Source: SourceBody, Path: "user.id"},
		{Name: "missing", Source: SourceBody, Path: "nope"},
	}
	got := Apply(rec, captures, environment)

	assert.Len(t, got, 2)
	token, _ := environment.Lookup("token")
	assert.Equal(t, "t-2", token)
	userID, _ := environment.Lookup("userId")
	assert.Equal(t, "9", userID)
	_, ok := environment.Lookup("missing")
	assert.False(t, ok)

	resolved := env.NewResolver().Resolve("/users/{{userId}}?t={{token}}", environment)
	assert.Equal(t, "/users/9?t=t-2", resolved)
}
