// Package stdinsrc loads a resource from standard input, serving the
// stdin: scheme. The stream is read once and cached, so a configuration
// that references stdin from several places sees the same content.
package stdinsrc

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/bootcfg/internal/ctxlog"
	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/internal/resource"
)

// Loader reads and decodes the input stream.
type Loader struct {
	codecs *registry.Registry
	in     io.Reader

	data    []byte
	readErr error
	read    bool
}

// Schemes implements registry.Loader.
func (*Loader) Schemes() []string { return []string{"stdin"} }

// Load implements registry.Loader. The stream's bytes are decoded by the
// codec selected through the registry; stdin has no file extension, so the
// declared media type or the default representation decides.
func (l *Loader) Load(ctx context.Context, res resource.Resource) ([]kv.Pair, error) {
	if !l.read {
		l.data, l.readErr = io.ReadAll(l.in)
		l.read = true
	}
	if l.readErr != nil {
		return nil, fmt.Errorf("stdinsrc: reading input: %w", l.readErr)
	}
	ctxlog.FromContext(ctx).Debug("Input stream read.", "bytes", len(l.data))

	codec, err := l.codecs.CodecFor(res.MediaType(), "")
	if err != nil {
		return nil, err
	}
	pairs, err := codec.Parse(l.data)
	if err != nil {
		return nil, &registry.MediaError{URI: res.URI(), MediaType: res.MediaType(), Err: err}
	}
	return pairs, nil
}

// NewLoader creates a Loader over the given stream; nil means os.Stdin.
func NewLoader(codecs *registry.Registry, in io.Reader) *Loader {
	if in == nil {
		in = os.Stdin
	}
	return &Loader{codecs: codecs, in: in}
}

// Module registers the loader over the real standard input.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterLoader(NewLoader(r, nil))
}
