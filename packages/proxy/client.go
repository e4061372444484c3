package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	hithttp "github.com/abdul-hamid-achik/hitstudio/packages/http"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultEndpoint = "http://localhost:4000/proxy"

// Reply is the proxy's normalized view of the upstream response.
type Reply struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Data       any               `json:"data"`
	Headers    map[string]string `json:"headers"`
	IsError    bool              `json:"isError,omitempty"`
}

// ReplyError is returned when the proxy itself answered with a non-2xx
// status but the payload still decodes to a Reply.
type ReplyError struct {
	StatusCode int
	Reply      *Reply
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("proxy answered %d (upstream status %d)", e.StatusCode, e.Reply.Status)
}

// Client POSTs WireRequests to a proxy endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option is a functional option for Client
type Option func(*Client)

// WithEndpoint sets the proxy URL
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient replaces the http.Client used to reach the proxy
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps dispatches to perSecond. Zero or less disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a proxy client. It never applies its own timeout:
// deadlines come from the context passed to Dispatch.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the proxy URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Dispatch sends req through the proxy. An error without a Reply means the
// proxy could not be reached or did not produce a structured answer; a
// *ReplyError carries the upstream payload.
func (c *Client) Dispatch(ctx context.Context, req *hithttp.WireRequest) (*Reply, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding proxy envelope: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building proxy request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("proxy unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading proxy reply: %w", err)
	}

	c.logger.Debug("proxy replied",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("proxyStatus", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	reply, decodeErr := decodeReply(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && reply.Status != 0 {
			reply.IsError = true
			return nil, &ReplyError{StatusCode: resp.StatusCode, Reply: reply}
		}
		return nil, fmt.Errorf("proxy returned %s", resp.Status)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("decoding proxy reply: %w", decodeErr)
	}
	return reply, nil
}

// decodeReply keeps numbers as json.Number so the reply re-encodes to the
// same bytes the proxy sent.
func decodeReply(body []byte) (*Reply, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var reply Reply
	if err := dec.Decode(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
