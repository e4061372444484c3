// Package cmd implements the hitstudio CLI commands using Cobra.
//
// Available commands:
//   - send: Resolve a request file against an environment and send it
//   - history: List, summarize or clear the request history
//   - env: Import, list and select environments
//   - proxy: Serve the reference forwarding proxy
//   - validate: Report unresolved placeholders without sending
//   - init: Write a starter config, request and environment
//   - completion: Generate shell completion scripts
//   - version: Show hitstudio version information
//
// Environments and history are stored in a local SQLite database.
package cmd
