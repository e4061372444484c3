package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	hithttp "github.com/abdul-hamid-achik/hitstudio/packages/http"
	"go.uber.org/zap"
)

// Forwarder is an http.Handler that accepts the proxy envelope, performs
// the request upstream and answers with a Reply.
type Forwarder struct {
	client   *hithttp.Client
	logger   *zap.Logger
	sanitize []string // Headers to redact in logs
}

// ForwarderOption is a functional option for Forwarder
type ForwarderOption func(*Forwarder)

// WithUpstreamClient sets the client used to reach upstream servers
func WithUpstreamClient(c *hithttp.Client) ForwarderOption {
	return func(f *Forwarder) {
		f.client = c
	}
}

// WithSanitize sets headers to redact when logging
func WithSanitize(headers []string) ForwarderOption {
	return func(f *Forwarder) {
		f.sanitize = headers
	}
}

func WithForwarderLogger(logger *zap.Logger) ForwarderOption {
	return func(f *Forwarder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewForwarder creates a reference proxy handler
func NewForwarder(opts ...ForwarderOption) *Forwarder {
	f := &Forwarder{
		client:   hithttp.NewClient(),
		logger:   zap.NewNop(),
		sanitize: []string{"Authorization", "Cookie", "X-Api-Key", "Api-Key"},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading envelope: " + err.Error()})
		return
	}

	var req hithttp.WireRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid envelope: " + err.Error()})
		return
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	resp, err := f.client.Do(r.Context(), &req)
	if err != nil {
		f.logger.Warn("upstream request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	reply := &Reply{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Data:       replyData(resp),
		Headers:    resp.Headers,
		IsError:    !resp.IsSuccess(),
	}

	f.logger.Info("forwarded",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Any("headers", f.sanitizeHeaders(req.Headers)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
	)

	// The target's status travels in the body. Statuses such as 304 or 1xx
	// cannot carry one, so the forwarder itself always answers 200.
	writeJSON(w, http.StatusOK, reply)
}

// ListenAndServe serves the forwarder on addr until ctx is cancelled.
func (f *Forwarder) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           f,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	f.logger.Info("proxy listening", zap.String("addr", addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("proxy server: %w", err)
	}
	return nil
}

func (f *Forwarder) sanitizeHeaders(h map[string]string) map[string]string {
	result := make(map[string]string, len(h))
	for key, value := range h {
		redact := false
		for _, s := range f.sanitize {
			if strings.EqualFold(key, s) {
				redact = true
				break
			}
		}
		if redact {
			result[key] = "{{" + strings.ToUpper(strings.ReplaceAll(key, "-", "_")) + "}}"
		} else {
			result[key] = value
		}
	}
	return result
}

func statusText(resp *hithttp.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	// "418 I'm a teapot" -> "I'm a teapot"
	if _, text, ok := strings.Cut(resp.Status, " "); ok {
		return text
	}
	return ""
}

// replyData decodes JSON bodies and passes everything else through as text.
func replyData(resp *hithttp.Response) any {
	if len(resp.Body) == 0 {
		return ""
	}
	if resp.IsJSON() {
		if v, err := resp.BodyJSON(); err == nil {
			return v
		}
	}
	return resp.BodyString()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
