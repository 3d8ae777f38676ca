package jsonkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bootcfg/internal/flagset"
	"github.com/vk/bootcfg/internal/kv"
)

func TestParse(t *testing.T) {
	t.Run("flattens nested objects in document order", func(t *testing.T) {
		in := `{"db": {"host": "db1", "port": 5432}, "debug": true, "none": null}`
		pairs, err := Codec{}.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{
			{Key: "db.host", Value: "db1"},
			{Key: "db.port", Value: "5432"},
			{Key: "debug", Value: "true"},
			{Key: "none", Value: ""},
		}, pairs)
	})

	t.Run("arrays use bracketed indices", func(t *testing.T) {
		in := `{"servers": [{"host": "a"}, {"host": "b"}], "tags": ["x", "y"]}`
		pairs, err := Codec{}.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{
			{Key: "servers[0].host", Value: "a"},
			{Key: "servers[1].host", Value: "b"},
			{Key: "tags[0]", Value: "x"},
			{Key: "tags[1]", Value: "y"},
		}, pairs)
	})

	t.Run("comments and trailing commas tolerated", func(t *testing.T) {
		in := `{
			// connection settings
			"host": "db1", /* inline */
			"port": 5432,
		}`
		pairs, err := Codec{}.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{
			{Key: "host", Value: "db1"},
			{Key: "port", Value: "5432"},
		}, pairs)
	})

	t.Run("number literals keep their text", func(t *testing.T) {
		pairs, err := Codec{}.Parse([]byte(`{"pi": 3.14000, "big": 12345678901234567890}`))
		require.NoError(t, err)
		assert.Equal(t, "3.14000", pairs[0].Value)
		assert.Equal(t, "12345678901234567890", pairs[1].Value)
	})

	t.Run("top-level array", func(t *testing.T) {
		pairs, err := Codec{}.Parse([]byte(`["a", "b"]`))
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{
			{Key: "[0]", Value: "a"},
			{Key: "[1]", Value: "b"},
		}, pairs)
	})

	t.Run("top-level scalar rejected", func(t *testing.T) {
		_, err := Codec{}.Parse([]byte(`"just a string"`))
		require.Error(t, err)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := Codec{}.Parse([]byte(`{"a": `))
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
	assert.Equal(t, "{\n  \"host\": \"db1\",\n  \"pass\": \"*****\"\n}\n", string(out))
}
