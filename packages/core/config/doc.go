// Package config handles configuration loading and management for hitstudio.
//
// It provides functionality for:
//   - Loading configuration from .hitstudio.json or .hitstudio.yaml files
//   - Default configuration values
//   - Merging command-line overrides on top of a loaded file
package config
