// Package http turns request definitions into wire requests and sends them
// upstream.
//
// It provides:
//   - Assembler: resolves a RequestDefinition against an environment, folds
//     active params and headers, injects auth and materializes the body
//   - WireRequest: the fully resolved request handed to the proxy boundary
//   - Client: a configurable upstream HTTP client (timeouts, redirects, TLS,
//     outbound proxy, default headers) used by the reference forwarder
package http
