package env

import (
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/hitstudio/packages/builtin"
)

var (
	dynamicPattern     = regexp.MustCompile(`\{\{\$([A-Za-z0-9_.]+)\}\}`)
	placeholderPattern = regexp.MustCompile(`\{\{([^{}\s]+)\}\}`)
	// A run of slashes not directly after a scheme colon.
	doubleSlashPattern = regexp.MustCompile(`([^:])/{2,}`)
)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{...}} placeholders. It never fails: placeholders that
// cannot be resolved are left verbatim.
type Resolver struct {
	mu       sync.RWMutex
	funcs    *builtin.Registry
	warnFunc WarnFunc
}

type ResolverOption func(*Resolver)

// WithRegistry replaces the default generator registry.
func WithRegistry(reg *builtin.Registry) ResolverOption {
	return func(r *Resolver) {
		r.funcs = reg
	}
}

// WithWarnFunc sets a function to be called for unresolved placeholders.
func WithWarnFunc(fn WarnFunc) ResolverOption {
	return func(r *Resolver) {
		r.warnFunc = fn
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.funcs == nil {
		r.funcs = builtin.NewRegistry()
	}
	return r
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

// Registry returns the generator registry used for {{$...}} placeholders.
func (r *Resolver) Registry() *builtin.Registry {
	return r.funcs
}

// Resolve expands text against the generators and, when non-nil, the
// environment. Generators take precedence over environment variables.
func (r *Resolver) Resolve(text string, environment *Environment) string {
	if text == "" {
		return text
	}

	result := text
	if strings.Contains(result, "{{$") {
		result = dynamicPattern.ReplaceAllStringFunc(result, func(match string) string {
			path := match[3 : len(match)-2]
			if value, ok := r.funcs.Resolve(path); ok {
				return value
			}
			return match
		})
	}

	if environment != nil && len(environment.Variables) > 0 && strings.Contains(result, "{{") {
		for _, v := range effectiveVariables(environment.Variables) {
			result = strings.ReplaceAll(result, "{{"+v.Key+"}}", formatValue(v.Value))
		}
	}

	for _, name := range Unresolved(result) {
		r.warn("unresolved variable: %s", name)
	}

	return normalizeSlashes(result)
}

// ResolveAll resolves every value of a map, keeping its keys.
func (r *Resolver) ResolveAll(values map[string]string, environment *Environment) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v, environment)
	}
	return result
}

// Unresolved returns the names of well-formed placeholders in text, in
// order of appearance. Placeholders containing whitespace are not names.
func Unresolved(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// effectiveVariables keeps list order but drops every entry that a later
// entry with the same key overrides, along with keys that can never form a
// well-formed placeholder.
func effectiveVariables(vars []Variable) []Variable {
	lastIndex := make(map[string]int, len(vars))
	for i, v := range vars {
		lastIndex[v.Key] = i
	}
	result := make([]Variable, 0, len(lastIndex))
	for i, v := range vars {
		if lastIndex[v.Key] != i || !validKey(v.Key) {
			continue
		}
		result = append(result, v)
	}
	return result
}

func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, " \t\r\n{}")
}

func normalizeSlashes(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}
	return doubleSlashPattern.ReplaceAllString(s, "${1}/")
}
