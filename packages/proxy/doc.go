// Package proxy implements both sides of the forwarding proxy boundary.
//
// Requests leave the engine as a JSON envelope POSTed to the proxy:
//
//	{"method": "GET", "url": "...", "headers": {...}, "data": ..., "params": {...}}
//
// and the proxy answers with
//
//	{"status": 200, "statusText": "OK", "data": ..., "headers": {...}, "isError": false}
//
// Forwarder always answers 200 and reports a non-2xx target through
// isError. Client also accepts proxies that answer with the target's
// status, as long as the body is a reply.
//
// Client is the consumer used by the executor. Forwarder is a reference
// http.Handler that implements the same contract on top of packages/http,
// served by "hitstudio proxy" and used in tests.
package proxy
