package sub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLookup is a trivial Lookup over a plain map.
type mapLookup map[string]string

func (m mapLookup) LookupVar(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func interp(vars map[string]string) *Interpolator {
	return New(DefaultOptions(), mapLookup(vars))
}

func TestInterpolate(t *testing.T) {
	t.Run("no dollar short-circuits", func(t *testing.T) {
		ip := interp(nil)
		got, err := ip.Interpolate("k", "plain value")
		require.NoError(t, err)
		assert.Equal(t, "plain value", got)
	})

	t.Run("simple reference", func(t *testing.T) {
		ip := interp(map[string]string{"x": "hello"})
		got, err := ip.Interpolate("msg", "${x} world")
		require.NoError(t, err)
		assert.Equal(t, "hello world", got)
	})

	t.Run("value is recursively expanded", func(t *testing.T) {
		ip := interp(map[string]string{"a": "${b}!", "b": "deep"})
		got, err := ip.Interpolate("k", "${a}")
		require.NoError(t, err)
		assert.Equal(t, "deep!", got)
	})

	t.Run("multiple references", func(t *testing.T) {
		ip := interp(map[string]string{"h": "db", "p": "5432"})
		got, err := ip.Interpolate("url", "${h}:${p}")
		require.NoError(t, err)
		assert.Equal(t, "db:5432", got)
	})

	t.Run("missing without default raises", func(t *testing.T) {
		ip := interp(nil)
		_, err := ip.Interpolate("k", "${missing}")
		require.Error(t, err)
		var missing *MissingVariableError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "missing", missing.Name)
		assert.Equal(t, "k", missing.Key)
	})

	t.Run("default value used when missing", func(t *testing.T) {
		ip := interp(nil)
		got, err := ip.Interpolate("x", "${missing:-fallback}")
		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})

	t.Run("default ignored when variable is defined", func(t *testing.T) {
		ip := interp(map[string]string{"x": "real"})
		got, err := ip.Interpolate("k", "${x:-fallback}")
		require.NoError(t, err)
		assert.Equal(t, "real", got)
	})

	t.Run("default may itself contain references", func(t *testing.T) {
		ip := interp(map[string]string{"alt": "plan-b"})
		got, err := ip.Interpolate("k", "${missing:-${alt}}")
		require.NoError(t, err)
		assert.Equal(t, "plan-b", got)
	})

	t.Run("nested reference inside a name", func(t *testing.T) {
		ip := interp(map[string]string{"env": "prod", "host.prod": "db1"})
		got, err := ip.Interpolate("k", "${host.${env}}")
		require.NoError(t, err)
		assert.Equal(t, "db1", got)
	})

	t.Run("escape suppresses one expansion", func(t *testing.T) {
		ip := interp(map[string]string{"x": "v"})
		got, err := ip.Interpolate("k", `\${x} and ${x}`)
		require.NoError(t, err)
		assert.Equal(t, "${x} and v", got)
	})

	t.Run("unterminated reference is literal", func(t *testing.T) {
		ip := interp(map[string]string{"x": "v"})
		got, err := ip.Interpolate("k", "tail ${x")
		require.NoError(t, err)
		assert.Equal(t, "tail ${x", got)
	})

	t.Run("escaped default separator stays in the name", func(t *testing.T) {
		ip := interp(map[string]string{"a:-b": "odd"})
		got, err := ip.Interpolate("k", `${a\:-b}`)
		require.NoError(t, err)
		assert.Equal(t, "odd", got)
	})
}

func TestTryInterpolate(t *testing.T) {
	t.Run("unresolved references stay verbatim", func(t *testing.T) {
		ip := interp(map[string]string{"known": "k"})
		got, err := ip.TryInterpolate("key", "${known} and ${unknown}")
		require.NoError(t, err)
		assert.Equal(t, "k and ${unknown}", got)
	})

	t.Run("later pass resolves what was left", func(t *testing.T) {
		vars := map[string]string{}
		ip := interp(vars)
		got, err := ip.TryInterpolate("key", "${x}")
		require.NoError(t, err)
		assert.Equal(t, "${x}", got)

		vars["x"] = "now"
		got, err = ip.TryInterpolate("key", got)
		require.NoError(t, err)
		assert.Equal(t, "now", got)
	})

	t.Run("defaults still apply", func(t *testing.T) {
		ip := interp(nil)
		got, err := ip.TryInterpolate("key", "${missing:-fb}")
		require.NoError(t, err)
		assert.Equal(t, "fb", got)
	})

	t.Run("cycles are still fatal", func(t *testing.T) {
		ip := interp(map[string]string{"a": "${b}", "b": "${a}"})
		_, err := ip.TryInterpolate("key", "${a}")
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
	})
}

func TestCycleDetection(t *testing.T) {
	t.Run("direct cycle", func(t *testing.T) {
		ip := interp(map[string]string{"a": "${b}", "b": "${a}"})
		_, err := ip.Interpolate("k", "${a}")
		require.Error(t, err)
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Contains(t, cycle.Chain, "a")
		assert.Contains(t, cycle.Chain, "b")
	})

	t.Run("self reference", func(t *testing.T) {
		ip := interp(map[string]string{"a": "pre ${a}"})
		_, err := ip.Interpolate("k", "${a}")
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		ip := interp(map[string]string{"a": "${c}", "b": "${c}", "c": "leaf"})
		got, err := ip.Interpolate("k", "${a}${b}")
		require.NoError(t, err)
		assert.Equal(t, "leafleaf", got)
	})
}

func TestStoreTiers(t *testing.T) {
	s := NewStore(map[string]string{"x": "external", "e": "ext-only"})

	t.Run("external is the last tier", func(t *testing.T) {
		v, ok := s.LookupVar("x")
		require.True(t, ok)
		assert.Equal(t, "external", v)
	})

	t.Run("resolved shadows external", func(t *testing.T) {
		s.Put("x", "resolved")
		v, _ := s.LookupVar("x")
		assert.Equal(t, "resolved", v)
	})

	t.Run("batch shadows resolved", func(t *testing.T) {
		s.SetBatch("x", "in-flight")
		v, _ := s.LookupVar("x")
		assert.Equal(t, "in-flight", v)

		s.ClearBatch()
		v, _ = s.LookupVar("x")
		assert.Equal(t, "resolved", v)
	})

	t.Run("latest put wins", func(t *testing.T) {
		s.Put("y", "first")
		s.Put("y", "second")
		v, _ := s.LookupVar("y")
		assert.Equal(t, "second", v)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok := s.LookupVar("nope")
		assert.False(t, ok)
	})
}

func TestStoreWithInterpolator(t *testing.T) {
	// Two keys in one batch can reference each other before either is
	// committed.
	s := NewStore(nil)
	s.SetBatch("host", "db1")
	s.SetBatch("url", "jdbc://${host}")
	ip := New(DefaultOptions(), s)

	got, err := ip.Interpolate("url", "jdbc://${host}")
	require.NoError(t, err)
	assert.Equal(t, "jdbc://db1", got)
}
