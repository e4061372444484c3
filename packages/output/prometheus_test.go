package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	"github.com/stretchr/testify/assert"
)

func TestWritePrometheus(t *testing.T) {
	records := []history.Record{
		{Method: "GET", URL: "https://api.test/users?page=1", Status: 200, ElapsedMs: 10},
		{Method: "GET", URL: "https://api.test/users/9", Status: 404, ElapsedMs: 30},
		{Method: "POST", URL: "http://other.test:8080/x", Status: history.StatusTransportError, Error: "proxy unreachable"},
	}
	now := time.UnixMilli(1700000000000)

	var buf bytes.Buffer
	WritePrometheus(&buf, records, now)
	out := buf.String()

	assert.Contains(t, out, "hitstudio_requests_total 3 1700000000000")
	assert.Contains(t, out, "hitstudio_requests_failed_total 2 1700000000000")
	assert.Contains(t, out, `hitstudio_requests_by_status{status="0"} 1`)
	assert.Contains(t, out, `hitstudio_requests_by_status{status="200"} 1`)
	assert.Contains(t, out, `hitstudio_requests_by_status{status="404"} 1`)
	assert.Contains(t, out, `hitstudio_requests_by_host{host="api.test"} 2`)
	assert.Contains(t, out, `hitstudio_requests_by_host{host="other.test:8080"} 1`)
	assert.Contains(t, out, `hitstudio_request_duration_ms{quantile="max"} 30`)
}

func TestWritePrometheus_Empty(t *testing.T) {
	var buf bytes.Buffer
	WritePrometheus(&buf, nil, time.Now())

	assert.Contains(t, buf.String(), "hitstudio_requests_total 0")
	assert.NotContains(t, buf.String(), "hitstudio_request_duration_ms{")
}

func TestEscapeLabel(t *testing.T) {
	assert.Equal(t, `a\"b\\c\n`, escapeLabel("a\"b\\c\n"))
}
