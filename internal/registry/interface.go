package registry

import (
	"context"
	"errors"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/resource"
)

// ErrNotFound is the distinguishable "not found" condition a Loader must
// return (wrapped) when the resource's target does not exist. Any other
// error is treated as a generic I/O failure and always aborts resolution.
var ErrNotFound = errors.New("resource not found")

// Loader fetches the raw key/value pairs of a resource for one or more URI
// schemes. Loads are synchronous and may block on I/O; the engine performs
// no retries or timeouts around them.
type Loader interface {
	// Schemes returns the URI schemes this loader serves. The empty string
	// claims scheme-less URIs (bare paths).
	Schemes() []string
	// Load fetches and decodes the resource into ordered pairs.
	Load(ctx context.Context, res resource.Resource) ([]kv.Pair, error)
}

// Codec parses raw resource bytes into ordered key/value pairs and formats
// a resolved batch back to bytes. Codecs are selected by media type, then
// by URI file extension, then the default codec.
type Codec interface {
	// MediaTypes returns the media type strings this codec serves.
	MediaTypes() []string
	// Extensions returns the file extensions (with leading dot) this codec
	// serves.
	Extensions() []string
	// Parse decodes raw bytes into ordered pairs.
	Parse(data []byte) ([]kv.Pair, error)
	// Format renders a resolved batch. Sensitive values must render as the
	// redaction placeholder.
	Format(batch []kv.KeyValue) ([]byte, error)
}

// Module is the interface loader and codec packages implement to be
// registered with an engine instance.
type Module interface {
	Register(r *Registry)
}
