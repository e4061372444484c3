// Package executor drives the send lifecycle of a request tab.
//
// Each tab moves Idle -> Sending -> Succeeded or Failed. Tab state lives in a
// Store and only changes through Reduce, a pure function of the previous
// state and an Event. Every send is tagged with a generation number; when a
// send settles after a newer one was started on the same tab, its result is
// discarded from the tab state (it is still written to history, in settle
// order).
//
// Failures never escape as Go errors. A send always returns an Outcome whose
// Err is nil, an *UpstreamError (the target answered non-2xx) or a
// *TransportError (no structured reply at all).
package executor
