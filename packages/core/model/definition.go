package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type BodyType string

const (
	BodyNone       BodyType = "none"
	BodyRaw        BodyType = "raw"
	BodyFormData   BodyType = "form-data"
	BodyURLEncoded BodyType = "url-encoded"
	BodyBinary     BodyType = "binary"
	BodyGraphQL    BodyType = "graphql"

	// BodyJSON is accepted for definitions saved before raw types existed.
	BodyJSON BodyType = "json"
)

// RawType only matters when the body type is raw.
type RawType string

const (
	RawText RawType = "Text"
	RawJSON RawType = "JSON"
	RawHTML RawType = "HTML"
	RawXML  RawType = "XML"
)

type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthAPIKey AuthType = "api-key"
)

// AuthData carries the fields used by each auth type. Only the fields of the
// selected type are read.
type AuthData struct {
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Key      string `json:"key,omitempty" yaml:"key,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`

	// AddTo is "header" or "query" for api-key auth.
	AddTo string `json:"addTo,omitempty" yaml:"addTo,omitempty"`
}

// KeyValue is a param or header row. Inactive rows are kept but not sent.
type KeyValue struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Active bool   `json:"active" yaml:"active"`
}

type RequestDefinition struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Method   string     `json:"method" yaml:"method"`
	URL      string     `json:"url" yaml:"url"`
	Params   []KeyValue `json:"params" yaml:"params"`
	Headers  []KeyValue `json:"headers" yaml:"headers"`
	BodyType BodyType   `json:"bodyType" yaml:"bodyType"`
	RawType  RawType    `json:"rawType,omitempty" yaml:"rawType,omitempty"`
	Body     string     `json:"body" yaml:"body"`
	AuthType AuthType   `json:"authType" yaml:"authType"`
	AuthData AuthData   `json:"authData" yaml:"authData"`
}

// NewRequestDefinition returns a GET draft with no body and no auth.
func NewRequestDefinition(id, name string) *RequestDefinition {
	return &RequestDefinition{
		ID:       id,
		Name:     name,
		Method:   "GET",
		BodyType: BodyNone,
		RawType:  RawJSON,
		AuthType: AuthNone,
	}
}

// IsJSONBody reports whether the body is declared as JSON.
func (d *RequestDefinition) IsJSONBody() bool {
	return d.BodyType == BodyJSON || (d.BodyType == BodyRaw && d.RawType == RawJSON)
}

// Clone returns a deep copy.
func (d *RequestDefinition) Clone() *RequestDefinition {
	clone := *d
	clone.Params = cloneRows(d.Params)
	clone.Headers = cloneRows(d.Headers)
	return &clone
}

// RequestPatch is a partial update; nil fields are left unchanged.
type RequestPatch struct {
	Name     *string     `json:"name,omitempty"`
	Method   *string     `json:"method,omitempty"`
	URL      *string     `json:"url,omitempty"`
	Params   *[]KeyValue `json:"params,omitempty"`
	Headers  *[]KeyValue `json:"headers,omitempty"`
	BodyType *BodyType   `json:"bodyType,omitempty"`
	RawType  *RawType    `json:"rawType,omitempty"`
	Body     *string     `json:"body,omitempty"`
	AuthType *AuthType   `json:"authType,omitempty"`
	AuthData *AuthData   `json:"authData,omitempty"`
}

// Apply returns a copy of d with the patch applied. d is not modified.
func (d *RequestDefinition) Apply(p RequestPatch) *RequestDefinition {
	next := d.Clone()
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Method != nil {
		next.Method = strings.ToUpper(*p.Method)
	}
	if p.URL != nil {
		next.URL = *p.URL
	}
	if p.Params != nil {
		next.Params = cloneRows(*p.Params)
	}
	if p.Headers != nil {
		next.Headers = cloneRows(*p.Headers)
	}
	if p.BodyType != nil {
		next.BodyType = *p.BodyType
	}
	if p.RawType != nil {
		next.RawType = *p.RawType
	}
	if p.Body != nil {
		next.Body = *p.Body
	}
	if p.AuthType != nil {
		next.AuthType = *p.AuthType
	}
	if p.AuthData != nil {
		next.AuthData = *p.AuthData
	}
	return next
}

func cloneRows(rows []KeyValue) []KeyValue {
	if rows == nil {
		return nil
	}
	out := make([]KeyValue, len(rows))
	copy(out, rows)
	return out
}

// LoadRequestFile reads a request definition from a .json or .yaml file.
func LoadRequestFile(path string) (*RequestDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read request file: %w", err)
	}

	def := NewRequestDefinition("", "")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, def)
	case ".json":
		err = json.Unmarshal(data, def)
	default:
		return nil, fmt.Errorf("unsupported request file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing request file %s: %w", path, err)
	}

	def.Method = strings.ToUpper(strings.TrimSpace(def.Method))
	if err := Validate(def); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.ID == "" {
		def.ID = path
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}
