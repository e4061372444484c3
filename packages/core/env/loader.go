package env

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Variable is a single environment entry. Value is converted to a string
// when a placeholder is resolved.
type Variable struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

type Environment struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Variables []Variable `json:"variables" yaml:"variables"`
}

// Clone returns a copy that shares nothing mutable with e.
func (e *Environment) Clone() *Environment {
	if e == nil {
		return nil
	}
	clone := &Environment{
		ID:   e.ID,
		Name: e.Name,
	}
	if e.Variables != nil {
		clone.Variables = make([]Variable, len(e.Variables))
		copy(clone.Variables, e.Variables)
	}
	return clone
}

// Lookup returns the string value of the last variable named key.
func (e *Environment) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for i := len(e.Variables) - 1; i >= 0; i-- {
		if e.Variables[i].Key == key {
			return formatValue(e.Variables[i].Value), true
		}
	}
	return "", false
}

// Set overwrites the last variable named key, or appends a new one.
func (e *Environment) Set(key string, value any) {
	for i := len(e.Variables) - 1; i >= 0; i-- {
		if e.Variables[i].Key == key {
			e.Variables[i].Value = value
			return
		}
	}
	e.Variables = append(e.Variables, Variable{Key: key, Value: value})
}

// LoadEnvironmentFile reads an environment document. The format follows the
// extension: .json, .yaml/.yml, or .env (dotenv, named after the file).
func LoadEnvironmentFile(path string) (*Environment, error) {
	ext := strings.ToLower(filepath.Ext(path))
	base := filepath.Base(path)

	if ext == ".env" || strings.HasPrefix(base, ".env") {
		vars, err := LoadDotEnv(path)
		if err != nil {
			return nil, err
		}
		return &Environment{Name: strings.TrimSuffix(base, ext), Variables: vars}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read environment file: %w", err)
	}

	environment := &Environment{}
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, environment)
	case ".json":
		err = json.Unmarshal(data, environment)
	default:
		return nil, fmt.Errorf("unsupported environment file type: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing environment file %s: %w", path, err)
	}

	if environment.Name == "" {
		environment.Name = strings.TrimSuffix(base, ext)
	}
	return environment, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}
