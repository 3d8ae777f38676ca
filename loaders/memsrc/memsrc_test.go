package memsrc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/internal/reskeys"
)

func TestLoad(t *testing.T) {
	l := NewLoader(map[string][]kv.Pair{
		"base": {{Key: "k", Value: "v"}},
	})
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		r, err := reskeys.FromURI("base", "mem:base", nil)
		require.NoError(t, err)
		pairs, err := l.Load(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, []kv.Pair{{Key: "k", Value: "v"}}, pairs)
	})

	t.Run("miss is the not-found condition", func(t *testing.T) {
		r, err := reskeys.FromURI("gone", "mem:gone", nil)
		require.NoError(t, err)
		_, err = l.Load(ctx, r)
		require.Error(t, err)
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}
