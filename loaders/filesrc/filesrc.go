// Package filesrc loads resources from the local filesystem, serving the
// file: scheme and scheme-less bare paths. The file's bytes are decoded by
// the codec selected through the registry (explicit media type, then file
// extension, then the default representation).
package filesrc

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/bootcfg/internal/ctxlog"
	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/internal/resource"
)

// Loader reads and decodes files.
type Loader struct {
	codecs *registry.Registry
}

// Schemes implements registry.Loader. The empty scheme claims bare paths.
func (*Loader) Schemes() []string { return []string{"file", ""} }

// Load implements registry.Loader. A missing file is the not-found
// condition; a directory or permission failure is a generic I/O error.
func (l *Loader) Load(ctx context.Context, res resource.Resource) ([]kv.Pair, error) {
	path := strings.TrimPrefix(res.URI(), "file:")
	path = strings.TrimPrefix(path, "//")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("filesrc: %s: %w", path, registry.ErrNotFound)
		}
		return nil, fmt.Errorf("filesrc: reading %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("File read.", "path", path, "bytes", len(data))

	codec, err := l.codecs.CodecFor(res.MediaType(), path)
	if err != nil {
		return nil, err
	}
	pairs, err := codec.Parse(data)
	if err != nil {
		return nil, &registry.MediaError{URI: res.URI(), MediaType: res.MediaType(), Err: err}
	}
	return pairs, nil
}

// Module registers the loader.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterLoader(&Loader{codecs: r})
}
