package executor

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/model"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	hithttp "github.com/abdul-hamid-achik/hitstudio/packages/http"
	"github.com/abdul-hamid-achik/hitstudio/packages/proxy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher sends an assembled request through the proxy boundary.
// *proxy.Client implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *hithttp.WireRequest) (*proxy.Reply, error)
}

// StateObserver is called after every applied state transition. Calls are
// serialized and a state is only delivered while it is still the tab's
// current state, so an observer never sees a tab move backwards. An
// observer must not start a send synchronously.
type StateObserver func(tabID string, state TabState)

// Controller runs sends and owns the per-tab state.
type Controller struct {
	dispatcher            Dispatcher
	assembler             *hithttp.Assembler
	ledger                *history.Ledger
	store                 *Store
	logger                *zap.Logger
	now                   func() time.Time
	timeout               time.Duration
	recordTransportErrors bool
	observer              StateObserver
	notifyMu              sync.Mutex
}

type Option func(*Controller)

func WithAssembler(a *hithttp.Assembler) Option {
	return func(c *Controller) {
		c.assembler = a
	}
}

func WithLedger(l *history.Ledger) Option {
	return func(c *Controller) {
		c.ledger = l
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithTimeout sets the default deadline for every send. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithRecordTransportErrors also writes a history record when a send fails
// without any reply. Off by default.
func WithRecordTransportErrors(record bool) Option {
	return func(c *Controller) {
		c.recordTransportErrors = record
	}
}

func WithStateObserver(fn StateObserver) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

func NewController(d Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		dispatcher: d,
		store:      NewStore(),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.assembler == nil {
		c.assembler = hithttp.NewAssembler(nil)
	}
	if c.ledger == nil {
		c.ledger = history.NewLedger()
	}
	return c
}

type sendConfig struct {
	timeout time.Duration
}

type SendOption func(*sendConfig)

// Timeout overrides the controller deadline for one send. Zero means none.
func Timeout(d time.Duration) SendOption {
	return func(s *sendConfig) {
		s.timeout = d
	}
}

// Outcome is the terminal result of one send.
type Outcome struct {
	TabID      string
	Generation uint64
	Phase      Phase
	Request    *hithttp.WireRequest
	Response   *Response
	Err        error
	// Record is nil when nothing was written to history.
	Record *history.Record
	// Stale is set when a newer send on the same tab started first; the tab
	// state was left untouched.
	Stale bool
}

type pendingSend struct {
	tabID     string
	def       *model.RequestDefinition
	wire      *hithttp.WireRequest
	gen       uint64
	startedAt time.Time
	cfg       sendConfig
}

// Send assembles def against a snapshot of environment, dispatches it and
// blocks until it settles.
func (c *Controller) Send(ctx context.Context, tabID string, def *model.RequestDefinition, environment *env.Environment, opts ...SendOption) Outcome {
	return c.finish(ctx, c.begin(tabID, def, environment, opts))
}

// SendAsync is Send without blocking. The tab enters Sending before
// SendAsync returns, so generations follow call order. The channel yields
// exactly one Outcome.
func (c *Controller) SendAsync(ctx context.Context, tabID string, def *model.RequestDefinition, environment *env.Environment, opts ...SendOption) <-chan Outcome {
	p := c.begin(tabID, def, environment, opts)
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- c.finish(ctx, p)
	}()
	return ch
}

// State returns the current state of tabID.
func (c *Controller) State(tabID string) TabState {
	return c.store.Get(tabID)
}

// CloseTab discards the tab's state.
func (c *Controller) CloseTab(tabID string) {
	c.store.Close(tabID)
}

func (c *Controller) Ledger() *history.Ledger {
	return c.ledger
}

func (c *Controller) begin(tabID string, def *model.RequestDefinition, environment *env.Environment, opts []SendOption) *pendingSend {
	cfg := sendConfig{timeout: c.timeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	def = def.Clone()
	wire := c.assembler.Assemble(def, environment.Clone())
	if wire.Degraded {
		c.logger.Info("body is not valid JSON, sending as text",
			zap.String("tab", tabID),
			zap.String("request", def.ID),
		)
	}

	startedAt := c.now()
	gen, state := c.store.Begin(tabID, startedAt)
	c.notify(tabID, state)

	c.logger.Debug("dispatching",
		zap.String("tab", tabID),
		zap.Uint64("generation", gen),
		zap.String("method", wire.Method),
		zap.String("url", wire.URL),
	)

	return &pendingSend{
		tabID:     tabID,
		def:       def,
		wire:      wire,
		gen:       gen,
		startedAt: startedAt,
		cfg:       cfg,
	}
}

func (c *Controller) finish(ctx context.Context, p *pendingSend) Outcome {
	dispatchCtx := ctx
	if p.cfg.timeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, p.cfg.timeout)
		defer cancel()
	}

	reply, err := c.dispatcher.Dispatch(dispatchCtx, p.wire)

	settledAt := c.now()
	elapsed := settledAt.Sub(p.startedAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	out := Outcome{
		TabID:      p.tabID,
		Generation: p.gen,
		Phase:      PhaseFailed,
		Request:    p.wire,
	}

	var replyErr *proxy.ReplyError
	switch {
	case err == nil && reply == nil:
		out.Err = &TransportError{Err: errors.New("empty proxy reply")}
	case err == nil:
		out.Response = toResponse(reply, elapsed)
		if reply.IsError {
			out.Err = &UpstreamError{Status: reply.Status, StatusText: reply.StatusText}
		} else {
			out.Phase = PhaseSucceeded
		}
	case errors.As(err, &replyErr):
		out.Response = toResponse(replyErr.Reply, elapsed)
		out.Err = &UpstreamError{Status: replyErr.Reply.Status, StatusText: replyErr.Reply.StatusText}
	default:
		out.Err = &TransportError{Err: err}
	}

	kind := EventFail
	if out.Phase == PhaseSucceeded {
		kind = EventSucceed
	}
	state, current := c.store.Settle(p.tabID, Event{
		Kind:       kind,
		Generation: p.gen,
		At:         settledAt,
		Response:   out.Response,
		Err:        out.Err,
	})
	out.Stale = !current
	if current {
		c.notify(p.tabID, state)
	}

	if out.Response != nil || c.recordTransportErrors {
		rec := c.record(p, out, settledAt, elapsed)
		out.Record = &rec
		// history must survive a cancelled send
		if err := c.ledger.Append(context.WithoutCancel(ctx), rec); err != nil {
			c.logger.Error("saving history", zap.Error(err))
		}
	}

	c.logSettle(out, elapsed)
	return out
}

func (c *Controller) record(p *pendingSend, out Outcome, settledAt time.Time, elapsed int64) history.Record {
	rec := history.Record{
		ID:             uuid.NewString(),
		RequestID:      p.def.ID,
		TabID:          p.tabID,
		Method:         p.wire.Method,
		URL:            p.wire.URL,
		Status:         history.StatusTransportError,
		Timestamp:      settledAt,
		RequestHeaders: maps.Clone(p.wire.Headers),
		RequestParams:  maps.Clone(p.wire.Params),
		RequestBody:    history.CloneValue(p.wire.Body),
		ElapsedMs:      elapsed,
	}
	if out.Response != nil {
		rec.Status = out.Response.Status
		rec.StatusText = out.Response.StatusText
		rec.ResponseHeaders = maps.Clone(out.Response.Headers)
		rec.ResponseBody = history.CloneValue(out.Response.Data)
		rec.SizeBytes = out.Response.SizeBytes
	} else if out.Err != nil {
		rec.Error = out.Err.Error()
	}
	return rec
}

func (c *Controller) logSettle(out Outcome, elapsed int64) {
	fields := []zap.Field{
		zap.String("tab", out.TabID),
		zap.Uint64("generation", out.Generation),
		zap.String("method", out.Request.Method),
		zap.String("url", out.Request.URL),
		zap.Int64("elapsedMs", elapsed),
	}
	if out.Response != nil {
		fields = append(fields, zap.Int("status", out.Response.Status))
	}

	if out.Stale {
		c.logger.Debug("discarding stale settlement", fields...)
	}

	var upstream *UpstreamError
	switch {
	case out.Err == nil:
		c.logger.Info("request succeeded", fields...)
	case errors.As(out.Err, &upstream):
		c.logger.Warn("upstream error", append(fields, zap.Error(out.Err))...)
	default:
		c.logger.Error("transport error", append(fields, zap.Error(out.Err))...)
	}
}

func (c *Controller) notify(tabID string, state TabState) {
	if c.observer == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	// a newer Begin or a closed tab has superseded state
	current := c.store.Get(tabID)
	if current.Generation != state.Generation || current.Phase != state.Phase {
		return
	}
	c.observer(tabID, state)
}

func toResponse(reply *proxy.Reply, elapsed int64) *Response {
	return &Response{
		Status:     reply.Status,
		StatusText: reply.StatusText,
		Data:       reply.Data,
		Headers:    maps.Clone(reply.Headers),
		ElapsedMs:  elapsed,
		SizeBytes:  history.SizeOf(reply.Data),
	}
}
