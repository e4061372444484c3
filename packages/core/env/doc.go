// Package env holds environments and expands {{...}} placeholders.
//
// It provides functionality for:
//   - Environments: named, ordered variable lists (duplicate keys allowed, last one wins)
//   - Placeholder resolution: {{$generator}} values first, then {{key}} environment values
//   - Repairing doubled slashes left behind by templated path segments
//   - A catalog of environments with at most one active at a time, persisted to a key-value store
//   - Loading environments from .env, JSON and YAML files
package env
