package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bootcfg/internal/filter"
	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/resource"
)

type fakeLoader struct {
	schemes []string
}

func (l *fakeLoader) Schemes() []string { return l.schemes }
func (l *fakeLoader) Load(context.Context, resource.Resource) ([]kv.Pair, error) {
	return nil, nil
}

type fakeCodec struct {
	mediaTypes []string
	extensions []string
}

func (c *fakeCodec) MediaTypes() []string { return c.mediaTypes }
func (c *fakeCodec) Extensions() []string { return c.extensions }
func (c *fakeCodec) Parse([]byte) ([]kv.Pair, error) { return nil, nil }
func (c *fakeCodec) Format([]kv.KeyValue) ([]byte, error) { return nil, nil }

func TestLoaderFor(t *testing.T) {
	r := New()
	fileLoader := &fakeLoader{schemes: []string{"file", ""}}
	envLoader := &fakeLoader{schemes: []string{"env"}}
	r.RegisterLoader(fileLoader)
	r.RegisterLoader(envLoader)

	t.Run("by scheme", func(t *testing.T) {
		l, err := r.LoaderFor("env:")
		require.NoError(t, err)
		assert.Same(t, envLoader, l)
	})

	t.Run("bare path uses the empty scheme", func(t *testing.T) {
		l, err := r.LoaderFor("conf/app.properties")
		require.NoError(t, err)
		assert.Same(t, fileLoader, l)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := r.LoaderFor("ftp://x")
		assert.ErrorContains(t, err, `no loader for scheme "ftp"`)
	})
}

func TestCodecFor(t *testing.T) {
	r := New()
	propCodec := &fakeCodec{mediaTypes: []string{"text/x-java-properties"}, extensions: []string{".properties"}}
	jsonCodec := &fakeCodec{mediaTypes: []string{"application/json"}, extensions: []string{".json"}}
	r.RegisterCodec(propCodec)
	r.RegisterCodec(jsonCodec)
	r.SetDefaultMediaType("text/x-java-properties")

	t.Run("explicit media type wins", func(t *testing.T) {
		c, err := r.CodecFor("application/json", "file:app.properties")
		require.NoError(t, err)
		assert.Same(t, jsonCodec, c)
	})

	t.Run("extension fallback", func(t *testing.T) {
		c, err := r.CodecFor("", "file:app.json")
		require.NoError(t, err)
		assert.Same(t, jsonCodec, c)
	})

	t.Run("default fallback", func(t *testing.T) {
		c, err := r.CodecFor("", "env:")
		require.NoError(t, err)
		assert.Same(t, propCodec, c)
	})

	t.Run("unknown media type is a media error", func(t *testing.T) {
		_, err := r.CodecFor("application/x-unknown", "file:x")
		var mediaErr *MediaError
		require.ErrorAs(t, err, &mediaErr)
		assert.Equal(t, "application/x-unknown", mediaErr.MediaType)
	})
}

func TestFilterFor(t *testing.T) {
	r := New()
	r.RegisterFilter(filter.Grep{})

	f, err := r.FilterFor("grep")
	require.NoError(t, err)
	assert.Equal(t, "grep", f.ID())

	_, err = r.FilterFor("nope")
	assert.ErrorContains(t, err, `unknown filter id "nope"`)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("no loaders", func(t *testing.T) {
		assert.ErrorContains(t, New().Validate(ctx), "no loaders")
	})

	t.Run("default media type without codec", func(t *testing.T) {
		r := New()
		r.RegisterLoader(&fakeLoader{schemes: []string{"file"}})
		r.SetDefaultMediaType("text/x-java-properties")
		assert.ErrorContains(t, r.Validate(ctx), "has no codec")
	})

	t.Run("valid", func(t *testing.T) {
		r := New()
		r.RegisterLoader(&fakeLoader{schemes: []string{"file"}})
		r.RegisterCodec(&fakeCodec{mediaTypes: []string{"text/x-java-properties"}})
		r.SetDefaultMediaType("text/x-java-properties")
		assert.NoError(t, r.Validate(ctx))
	})
}
