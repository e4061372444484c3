package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *RequestDefinition)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(d *RequestDefinition) {}},
		{name: "lower-case method", mutate: func(d *RequestDefinition) { d.Method = " post" }},
		{name: "api-key to query", mutate: func(d *RequestDefinition) {
			d.AuthType = AuthAPIKey
			d.AuthData = AuthData{Key: "k", Value: "v", AddTo: "query"}
		}},
		{name: "capitalized auth type", mutate: func(d *RequestDefinition) { d.AuthType = "Bearer" }, wantErr: "authType"},
		{name: "misspelled body type", mutate: func(d *RequestDefinition) { d.BodyType = "jsn" }, wantErr: "bodyType"},
		{name: "unknown raw type", mutate: func(d *RequestDefinition) { d.RawType = "json" }, wantErr: "rawType"},
		{name: "unknown method", mutate: func(d *RequestDefinition) { d.Method = "FETCH" }, wantErr: "method"},
		{name: "api-key to body", mutate: func(d *RequestDefinition) {
			d.AuthType = AuthAPIKey
			d.AuthData = AuthData{Key: "k", Value: "v", AddTo: "body"}
		}, wantErr: "addTo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := NewRequestDefinition("r", "r")
			def.URL = "https://api.test"
			tt.mutate(def)

			err := Validate(def)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *ValidationError
			require.True(t, errors.As(err, &invalid))
			assert.Contains(t, invalid.Error(), tt.wantErr)
		})
	}
}

func TestLoadRequestFile_RejectsUnknownEnums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"url":"https://api.test","authType":"Bearer","authData":{"token":"t"},"bodyType":"jsn","body":"{}"}`), 0644))

	_, err := LoadRequestFile(path)

	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Len(t, invalid.Problems, 2)
}
