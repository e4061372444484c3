// Package capture extracts values from recorded responses for use in
// subsequent requests.
//
// It supports capturing values from:
//   - Response body (gjson paths)
//   - Response headers
//   - Response status code and elapsed time
//
// Captured values are written into an environment, so later requests can
// reference them as {{name}}.
package capture
