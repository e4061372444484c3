package http

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_EndToEnd(t *testing.T) {
	def := &model.RequestDefinition{
		Method: "GET",
		URL:    "https://api.test/{{id}}",
		Params: []model.KeyValue{{Key: "q", Value: "{{q}}", Active: true}},
	}
	environment := &env.Environment{Variables: []env.Variable{
		{Key: "id", Value: "42"},
		{Key: "q", Value: "x"},
	}}

	got := NewAssembler(nil).Assemble(def, environment)

	assert.Equal(t, "GET", got.Method)
	assert.Equal(t, "https://api.test/42", got.URL)
	assert.Equal(t, map[string]string{"q": "x"}, got.Params)
	assert.Equal(t, map[string]string{}, got.Headers)
	assert.Nil(t, got.Body)
}

func TestAssemble_FoldsOnlyActiveRows(t *testing.T) {
	def := &model.RequestDefinition{
		Method: "GET",
		URL:    "https://api.test",
		Params: []model.KeyValue{
			{Key: "a", Value: "1", Active: true},
			{Key: "b", Value: "2", Active: false},
			{Key: "", Value: "3", Active: true},
			{Key: "a", Value: "last", Active: true},
		},
		Headers: []model.KeyValue{
			{Key: "X-On", Value: "{{v}}", Active: true},
			{Key: "X-Off", Value: "v", Active: false},
		},
	}
	environment := &env.Environment{Variables: []env.Variable{{Key: "v", Value: "yes"}}}

	got := NewAssembler(nil).Assemble(def, environment)

	assert.Equal(t, map[string]string{"a": "last"}, got.Params)
	assert.Equal(t, map[string]string{"X-On": "yes"}, got.Headers)
}

func TestAssemble_AuthOverwritesExplicitHeader(t *testing.T) {
	def := &model.RequestDefinition{
		Method:   "GET",
		URL:      "https://api.test",
		Headers:  []model.KeyValue{{Key: "Authorization", Value: "Bearer manual", Active: true}},
		AuthType: model.AuthBearer,
		AuthData: model.AuthData{Token: "{{token}}"},
	}
	environment := &env.Environment{Variables: []env.Variable{{Key: "token", Value: "resolved"}}}

	got := NewAssembler(nil).Assemble(def, environment)

	assert.Equal(t, "Bearer resolved", got.Headers["Authorization"])
}

func TestAssemble_APIKeyQueryAndBasic(t *testing.T) {
	a := NewAssembler(nil)

	got := a.Assemble(&model.RequestDefinition{
		Method:   "GET",
		URL:      "https://api.test",
		Params:   []model.KeyValue{{Key: "api_key", Value: "manual", Active: true}},
		AuthType: model.AuthAPIKey,
		AuthData: model.AuthData{Key: "api_key", Value: "k", AddTo: "query"},
	}, nil)
	assert.Equal(t, map[string]string{"api_key": "k"}, got.Params)

	got = a.Assemble(&model.RequestDefinition{
		Method:   "GET",
		URL:      "https://api.test",
		AuthType: model.AuthBasic,
		AuthData: model.AuthData{Username: "u", Password: "p"},
	}, nil)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("u:p")), got.Headers["Authorization"])
}

func TestAssemble_Body(t *testing.T) {
	tests := []struct {
		name            string
		def             model.RequestDefinition
		opts            []AssemblerOption
		wantBody        any
		wantContentType string
		wantDegraded    bool
	}{
		{
			name:            "raw JSON is parsed",
			def:             model.RequestDefinition{Method: "POST", BodyType: model.BodyRaw, RawType: model.RawJSON, Body: `{"name":"{{name}}","n":1}`},
			wantBody:        map[string]any{"name": "alice", "n": json.Number("1")},
			wantContentType: "application/json",
		},
		{
			name:            "legacy json body type",
			def:             model.RequestDefinition{Method: "PUT", BodyType: model.BodyJSON, Body: `[1,2]`},
			wantBody:        []any{json.Number("1"), json.Number("2")},
			wantContentType: "application/json",
		},
		{
			name:         "invalid JSON falls back to text",
			def:          model.RequestDefinition{Method: "POST", BodyType: model.BodyRaw, RawType: model.RawJSON, Body: `{bad json`},
			wantBody:     "{bad json",
			wantDegraded: true,
		},
		{
			name:         "trailing content is not JSON",
			def:          model.RequestDefinition{Method: "POST", BodyType: model.BodyRaw, RawType: model.RawJSON, Body: `{} {}`},
			wantBody:     "{} {}",
			wantDegraded: true,
		},
		{
			name:     "text passes through",
			def:      model.RequestDefinition{Method: "PATCH", BodyType: model.BodyRaw, RawType: model.RawText, Body: "hello {{name}}"},
			wantBody: "hello alice",
		},
		{
			name:     "url-encoded passes through",
			def:      model.RequestDefinition{Method: "POST", BodyType: model.BodyURLEncoded, Body: "a=1&b={{name}}"},
			wantBody: "a=1&b=alice",
		},
		{
			name:     "GET never carries a body",
			def:      model.RequestDefinition{Method: "GET", BodyType: model.BodyRaw, RawType: model.RawJSON, Body: `{}`},
			wantBody: nil,
		},
		{
			name:     "body type none",
			def:      model.RequestDefinition{Method: "POST", BodyType: model.BodyNone, Body: `{}`},
			wantBody: nil,
		},
		{
			name:     "empty body",
			def:      model.RequestDefinition{Method: "POST", BodyType: model.BodyRaw, RawType: model.RawText},
			wantBody: nil,
		},
		{
			name:     "DELETE body dropped by default",
			def:      model.RequestDefinition{Method: "DELETE", BodyType: model.BodyRaw, RawType: model.RawText, Body: "x"},
			wantBody: nil,
		},
		{
			name:     "method with surrounding space",
			def:      model.RequestDefinition{Method: " post ", BodyType: model.BodyRaw, RawType: model.RawText, Body: "x"},
			wantBody: "x",
		},
		{
			name:     "DELETE body when allowed",
			def:      model.RequestDefinition{Method: "DELETE", BodyType: model.BodyRaw, RawType: model.RawText, Body: "x"},
			opts:     []AssemblerOption{WithDeleteBody(true)},
			wantBody: "x",
		},
	}

	environment := &env.Environment{Variables: []env.Variable{{Key: "name", Value: "alice"}}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := tt.def
			def.URL = "https://api.test/items"

			got := NewAssembler(nil, tt.opts...).Assemble(&def, environment)

			assert.Equal(t, tt.wantBody, got.Body)
			assert.Equal(t, tt.wantContentType, got.Headers["Content-Type"])
			_, hasContentType := got.Headers["Content-Type"]
			assert.Equal(t, tt.wantContentType != "", hasContentType)
			assert.Equal(t, tt.wantDegraded, got.Degraded)
		})
	}
}

func TestAssemble_DefaultsAndUnresolved(t *testing.T) {
	got := NewAssembler(env.NewResolver()).Assemble(&model.RequestDefinition{
		Method: "post",
		URL:    "{{base}}/users",
	}, nil)

	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "{{base}}/users", got.URL)

	got = NewAssembler(nil).Assemble(&model.RequestDefinition{URL: "https://api.test"}, nil)
	assert.Equal(t, "GET", got.Method)
}

func TestAssemble_JSONBodyRoundTrip(t *testing.T) {
	got := NewAssembler(nil).Assemble(&model.RequestDefinition{
		Method:   "POST",
		URL:      "https://api.test",
		BodyType: model.BodyRaw,
		RawType:  model.RawJSON,
		Body:     `{"big": 12345678901234567890}`,
	}, nil)

	data, err := json.Marshal(got.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"big": 12345678901234567890}`, string(data))
	assert.Contains(t, string(data), "12345678901234567890")
}
