package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// requestSchema constrains the enums that plain decoding accepts silently.
// Empty strings are allowed where the engine has a default.
const requestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["method", "url"],
  "properties": {
    "method": {"enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"]},
    "url": {"type": "string"},
    "params": {"type": ["array", "null"], "items": {"$ref": "#/definitions/row"}},
    "headers": {"type": ["array", "null"], "items": {"$ref": "#/definitions/row"}},
    "bodyType": {"enum": ["", "none", "raw", "form-data", "url-encoded", "binary", "graphql", "json"]},
    "rawType": {"enum": ["", "Text", "JSON", "HTML", "XML"]},
    "body": {"type": "string"},
    "authType": {"enum": ["", "none", "bearer", "basic", "api-key"]},
    "authData": {
      "type": "object",
      "properties": {
        "addTo": {"enum": ["", "header", "query"]}
      }
    }
  },
  "definitions": {
    "row": {
      "type": "object",
      "required": ["key"],
      "properties": {
        "key": {"type": "string"},
        "value": {"type": "string"},
        "active": {"type": "boolean"}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
})

// ValidationError lists every schema violation in a request definition.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request definition: " + strings.Join(e.Problems, "; ")
}

// Validate checks d against the request definition schema. A method is
// compared after upper-casing.
func Validate(d *RequestDefinition) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling request schema: %w", err)
	}

	normalized := *d
	normalized.Method = strings.ToUpper(strings.TrimSpace(d.Method))
	document, err := json.Marshal(normalized)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{Problems: problems}
}
