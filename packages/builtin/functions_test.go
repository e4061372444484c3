package builtin

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestRegistry_Guid(t *testing.T) {
	r := NewRegistry()

	first, ok := r.Resolve("guid")
	require.True(t, ok)
	second, ok := r.Resolve("guid")
	require.True(t, ok)

	assert.Len(t, first, 36)
	assert.Regexp(t, uuidPattern, first)
	assert.NotEqual(t, first, second)
}

func TestRegistry_Aliases(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name  string
		check func(t *testing.T, v string)
	}{
		{"timestamp", func(t *testing.T, v string) {
			_, err := strconv.ParseInt(v, 10, 64)
			assert.NoError(t, err)
		}},
		{"isoTimestamp", func(t *testing.T, v string) {
			assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, v)
		}},
		{"randomInt", func(t *testing.T, v string) {
			n, err := strconv.Atoi(v)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 0)
			assert.LessOrEqual(t, n, 1000)
		}},
		{"randomEmail", func(t *testing.T, v string) {
			assert.Contains(t, v, "@")
		}},
		{"randomBoolean", func(t *testing.T, v string) {
			assert.Contains(t, []string{"true", "false"}, v)
		}},
		{"randomPrice", func(t *testing.T, v string) {
			assert.Regexp(t, `^\d+\.\d{2}$`, v)
		}},
		{"randomFirstName", func(t *testing.T, v string) {
			assert.NotEmpty(t, v)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := r.Resolve(tt.name)
			require.True(t, ok)
			tt.check(t, v)
		})
	}
}

func TestRegistry_Namespace(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Resolve("person.firstName")
	require.True(t, ok)
	assert.NotEmpty(t, v)

	v, ok = r.Resolve("internet.email")
	require.True(t, ok)
	assert.Contains(t, v, "@")

	v, ok = r.Resolve("string.uuid")
	require.True(t, ok)
	assert.Regexp(t, uuidPattern, v)
}

func TestRegistry_Unresolved(t *testing.T) {
	r := NewRegistry()

	for _, path := range []string{"", "nope", "person", "person.nope", "nope.firstName", "person.firstName.extra"} {
		t.Run(path, func(t *testing.T) {
			_, ok := r.Resolve(path)
			assert.False(t, ok)
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	fixed := func(_ *gofakeit.Faker) any { return "fixed" }

	require.NoError(t, r.Register("tenant", fixed))
	require.NoError(t, r.Register("acme.sku", fixed))

	v, ok := r.Resolve("tenant")
	assert.True(t, ok)
	assert.Equal(t, "fixed", v)

	v, ok = r.Resolve("acme.sku")
	assert.True(t, ok)
	assert.Equal(t, "fixed", v)

	tests := []struct {
		name string
		fn   Func
	}{
		{"", fixed},
		{"has space", fixed},
		{".leading", fixed},
		{"trailing.", fixed},
		{"a..b", fixed},
		{"a.b.c", fixed},
		{"guid", fixed},
		{"person.firstName", fixed},
		{"nilfunc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.Register(tt.name, tt.fn))
		})
	}
}

func TestRegistry_Names(t *testing.T) {
	names := NewRegistry().Names()

	assert.Contains(t, names, "guid")
	assert.Contains(t, names, "location.city")
	assert.IsNonDecreasing(t, names)
	assert.GreaterOrEqual(t, len(names), 25)
}
