package http

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/abdul-hamid-achik/hitstudio/packages/auth"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/model"
)

// Assembler builds WireRequests from request definitions.
type Assembler struct {
	resolver        *env.Resolver
	allowDeleteBody bool
}

type AssemblerOption func(*Assembler)

// WithDeleteBody lets DELETE requests carry a body. By default only POST,
// PUT and PATCH do.
func WithDeleteBody(allow bool) AssemblerOption {
	return func(a *Assembler) {
		a.allowDeleteBody = allow
	}
}

func NewAssembler(resolver *env.Resolver, opts ...AssemblerOption) *Assembler {
	if resolver == nil {
		resolver = env.NewResolver()
	}
	a := &Assembler{resolver: resolver}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble resolves def against environment (which may be nil) and returns
// the request to send. It never fails: unresolved placeholders stay
// verbatim and an unparsable JSON body is sent as text.
func (a *Assembler) Assemble(def *model.RequestDefinition, environment *env.Environment) *WireRequest {
	resolve := func(s string) string {
		return a.resolver.Resolve(s, environment)
	}

	method := strings.ToUpper(strings.TrimSpace(def.Method))
	if method == "" {
		method = "GET"
	}

	r := NewWireRequest(method, resolve(def.URL))

	for _, p := range def.Params {
		if p.Active && p.Key != "" {
			r.SetParam(p.Key, resolve(p.Value))
		}
	}
	for _, h := range def.Headers {
		if h.Active && h.Key != "" {
			r.SetHeader(h.Key, resolve(h.Value))
		}
	}

	auth.Apply(r.Headers, r.Params, def.AuthType, auth.Resolve(def.AuthData, resolve))

	if a.carriesBody(method, def) {
		body := resolve(def.Body)
		if def.IsJSONBody() {
			if parsed, ok := parseJSON(body); ok {
				r.SetHeader("Content-Type", "application/json")
				r.Body = parsed
			} else {
				r.Body = body
				r.Degraded = true
			}
		} else {
			r.Body = body
		}
	}

	return r
}

// carriesBody reports whether a request with the normalized method sends
// def's body.
func (a *Assembler) carriesBody(method string, def *model.RequestDefinition) bool {
	if def.BodyType == "" || def.BodyType == model.BodyNone || def.Body == "" {
		return false
	}
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	case "DELETE":
		return a.allowDeleteBody
	default:
		return false
	}
}

// parseJSON decodes exactly one JSON value. Numbers are kept as json.Number
// so re-encoding does not change them.
func parseJSON(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return v, true
}
