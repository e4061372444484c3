package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// BodyJSON decodes the body, keeping numbers as json.Number.
func (r *Response) BodyJSON() (any, error) {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()

	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
