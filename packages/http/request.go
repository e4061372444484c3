package http

import (
	"net/url"
)

// WireRequest is a fully resolved, ready-to-transmit request.
type WireRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Params  map[string]string `json:"params"`
	// Body is nil, the resolved text, or the decoded value of a JSON body.
	Body any `json:"data,omitempty"`
	// Degraded is set when a body declared as JSON failed to parse and was
	// sent as raw text instead.
	Degraded bool `json:"-"`
}

func NewWireRequest(method, requestURL string) *WireRequest {
	return &WireRequest{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
		Params:  make(map[string]string),
	}
}

func (r *WireRequest) SetHeader(key, value string) *WireRequest {
	r.Headers[key] = value
	return r
}

func (r *WireRequest) SetParam(key, value string) *WireRequest {
	r.Params[key] = value
	return r
}

// BuildURL returns the URL with Params merged into its query string.
func (r *WireRequest) BuildURL() string {
	if len(r.Params) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, v := range r.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
