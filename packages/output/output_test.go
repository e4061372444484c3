package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/executor"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	hithttp "github.com/abdul-hamid-achik/hitstudio/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstreamOutcome() executor.Outcome {
	return executor.Outcome{
		TabID:      "tab-1",
		Generation: 3,
		Phase:      executor.PhaseFailed,
		Request:    hithttp.NewWireRequest("GET", "https://api.test/users").SetHeader("Accept", "application/json"),
		Response: &executor.Response{
			Status:     404,
			StatusText: "Not Found",
			Data:       map[string]any{"msg": "no"},
			ElapsedMs:  12,
			SizeBytes:  12,
		},
		Err:    &executor.UpstreamError{Status: 404, StatusText: "Not Found"},
		Record: &history.Record{ID: "rec-1"},
	}
}

func TestConsoleFormatter_Outcome(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	f.FormatOutcome(upstreamOutcome(), map[string]any{"b": 2, "a": "x"})

	out := buf.String()
	assert.Contains(t, out, "GET https://api.test/users")
	assert.Contains(t, out, "404 Not Found")
	assert.Contains(t, out, "(12ms, 12 B)")
	assert.Contains(t, out, `"msg": "no"`)
	assert.Contains(t, out, "> Accept: application/json")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("a = x")), bytes.Index(buf.Bytes(), []byte("b = 2")))
}

func TestConsoleFormatter_TransportError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	req := hithttp.NewWireRequest("POST", "https://api.test")
	req.Degraded = true
	f.FormatOutcome(executor.Outcome{
		Phase:   executor.PhaseFailed,
		Request: req,
		Err:     &executor.TransportError{Err: errors.New("proxy unreachable")},
	}, nil)

	assert.Contains(t, buf.String(), "x transport error: proxy unreachable")
	assert.Contains(t, buf.String(), "sent as text")
}

func TestConsoleFormatter_History(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatHistory(nil)
	assert.Contains(t, buf.String(), "No history")

	buf.Reset()
	f.FormatHistory([]history.Record{
		{Method: "GET", URL: "https://api.test/a", Status: 200, ElapsedMs: 5, Timestamp: time.Now()},
		{Method: "POST", URL: "https://api.test/b", Status: history.StatusTransportError, Timestamp: time.Now()},
	})
	assert.Contains(t, buf.String(), "200 GET    https://api.test/a 5ms")
	assert.Contains(t, buf.String(), "ERR POST   https://api.test/b")
}

func TestConsoleFormatter_StatsAndEnvironments(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatStats(history.Stats{Count: 4, Errors: 1, P50: 20 * time.Millisecond, Max: 90 * time.Millisecond})
	assert.Contains(t, buf.String(), "Requests: 4")
	assert.Contains(t, buf.String(), "Errors:   1 (25.0%)")
	assert.Contains(t, buf.String(), "p50 20ms")

	buf.Reset()
	f.FormatEnvironments([]*env.Environment{
		{ID: "1", Name: "dev", Variables: []env.Variable{{Key: "a"}}},
		{ID: "2", Name: "prod"},
	}, "2")
	assert.Contains(t, buf.String(), "  dev (1 variables)")
	assert.Contains(t, buf.String(), "* prod (0 variables)")
}

func TestJSONFormatter_Outcome(t *testing.T) {
	var buf bytes.Buffer
	NewJSONFormatter(JSONWithWriter(&buf)).FormatOutcome(upstreamOutcome(), nil)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "failed", doc["phase"])
	assert.Equal(t, "upstream", doc["errorKind"])
	assert.Equal(t, "rec-1", doc["recordId"])

	resp := doc["response"].(map[string]any)
	assert.Equal(t, float64(404), resp["status"])
	assert.Equal(t, map[string]any{"msg": "no"}, resp["data"])
}

func TestJSONFormatter_EmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	NewJSONFormatter(JSONWithWriter(&buf)).FormatHistory(nil)
	assert.JSONEq(t, `[]`, buf.String())
}

func TestJSONFormatter_Stats(t *testing.T) {
	var buf bytes.Buffer
	NewJSONFormatter(JSONWithWriter(&buf)).FormatStats(history.Stats{Count: 2, P99: 40 * time.Millisecond})

	assert.JSONEq(t, `{"count":2,"errors":0,"min":0,"mean":0,"p50":0,"p95":0,"p99":40,"max":0}`, buf.String())
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer

	f, err := NewFormatter("json", &buf, true, false)
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	f, err = NewFormatter("", &buf, true, false)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	_, err = NewFormatter("xml", &buf, true, false)
	assert.Error(t, err)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "upstream", ErrorKind(&executor.UpstreamError{Status: 500}))
	assert.Equal(t, "transport", ErrorKind(&executor.TransportError{Err: errors.New("x")}))
	assert.Equal(t, "unknown", ErrorKind(errors.New("x")))
}
