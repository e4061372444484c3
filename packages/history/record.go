package history

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// StatusTransportError is the status recorded when a send never produced
// a response.
const StatusTransportError = 0

// Record is an immutable snapshot of one settled send.
type Record struct {
	ID              string            `json:"id"`
	RequestID       string            `json:"requestId,omitempty"`
	TabID           string            `json:"tabId,omitempty"`
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	Status          int               `json:"status"`
	StatusText      string            `json:"statusText"`
	Timestamp       time.Time         `json:"timestamp"`
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	RequestParams   map[string]string `json:"requestParams,omitempty"`
	RequestBody     any               `json:"requestBody,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	ResponseBody    any               `json:"responseBody,omitempty"`
	ElapsedMs       int64             `json:"elapsedMs"`
	SizeBytes       int               `json:"sizeBytes"`
	Error           string            `json:"error,omitempty"`
}

// IsError reports whether the record is a transport failure or a non-2xx
// response.
func (r Record) IsError() bool {
	return r.Status < 200 || r.Status >= 300
}

// Elapsed returns ElapsedMs as a time.Duration.
func (r Record) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMs) * time.Millisecond
}

// Clone returns a copy of r that shares no maps, slices or decoded JSON
// values with it.
func (r Record) Clone() Record {
	out := r
	out.RequestHeaders = maps.Clone(r.RequestHeaders)
	out.RequestParams = maps.Clone(r.RequestParams)
	out.ResponseHeaders = maps.Clone(r.ResponseHeaders)
	out.RequestBody = CloneValue(r.RequestBody)
	out.ResponseBody = CloneValue(r.ResponseBody)
	return out
}

// CloneValue deep-copies decoded JSON (maps, slices, scalars). Other
// values are returned as they are.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case map[string]string:
		return maps.Clone(t)
	case []byte:
		return slices.Clone(t)
	default:
		return v
	}
}

// SizeOf returns the length of data's JSON encoding. Values that cannot be
// encoded count as zero.
func SizeOf(data any) int {
	b, err := json.Marshal(data)
	if err != nil {
		return 0
	}
	return len(b)
}
