package hclkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bootcfg/internal/flagset"
	"github.com/vk/bootcfg/internal/kv"
)

func TestParse(t *testing.T) {
	t.Run("scalars in declaration order", func(t *testing.T) {
		in := "zebra = \"last\"\napple = \"first\"\nport = 5432\ndebug = true\n"
		pairs, err := Codec{}.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{
			{Key: "zebra", Value: "last"},
			{Key: "apple", Value: "first"},
			{Key: "port", Value: "5432"},
			{Key: "debug", Value: "true"},
		}, pairs)
	})

	t.Run("objects flatten with dots", func(t *testing.T) {
		in := "db = {\n  host = \"db1\"\n  port = 5432\n}\n"
		pairs, err := Codec{}.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{
			{Key: "db.host", Value: "db1"},
			{Key: "db.port", Value: "5432"},
		}, pairs)
	})

	t.Run("lists use bracketed indices", func(t *testing.T) {
		in := "tags = [\"x\", \"y\"]\n"
		pairs, err := Codec{}.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{
			{Key: "tags[0]", Value: "x"},
			{Key: "tags[1]", Value: "y"},
		}, pairs)
	})

	t.Run("escaped template survives as literal", func(t *testing.T) {
		in := "msg = \"$${later}\"\n"
		pairs, err := Codec{}.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, "${later}", pairs[0].Value)
	})

	t.Run("null becomes empty string", func(t *testing.T) {
		pairs, err := Codec{}.Parse([]byte("empty = null\n"))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{{Key: "empty"}}, pairs)
	})

	t.Run("blocks are rejected", func(t *testing.T) {
		_, err := Codec{}.Parse([]byte("server \"a\" {\n  host = \"x\"\n}\n"))
		require.Error(t, err)
	})

	t.Run("unresolvable template is an error", func(t *testing.T) {
		_, err := Codec{}.Parse([]byte("msg = \"${nope}\"\n"))
		require.Error(t, err)
	})
}

func TestFormat(t *testing.T) {
	batch := []kv.KeyValue{
		kv.New("host", "db1", kv.MemorySource, 0),
		kv.New("pass", "hunter2", kv.MemorySource, flagset.Set(0).With(flagset.Sensitive)),
	}
	out, err := Codec{}.Format(batch)
	require.NoError(t, err)
	assert.Contains(t, string(out), `host = "db1"`)
	assert.Contains(t, string(out), `pass = "*****"`)
}
