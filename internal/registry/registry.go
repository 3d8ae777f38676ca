// Package registry holds the pluggable capabilities of one resolver
// instance: loaders keyed by URI scheme, codecs keyed by media type and
// file extension, and filters keyed by id.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/bootcfg/internal/ctxlog"
	"github.com/vk/bootcfg/internal/filter"
)

// Registry is the capability lookup for a single resolver instance. It is
// populated at startup and read-only during resolution.
type Registry struct {
	loaders    map[string]Loader
	codecs     map[string]Codec
	extensions map[string]Codec
	filters    map[string]filter.Filter

	defaultMediaType string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		loaders:    make(map[string]Loader),
		codecs:     make(map[string]Codec),
		extensions: make(map[string]Codec),
		filters:    make(map[string]filter.Filter),
	}
}

// RegisterLoader registers a loader for all of its schemes. A later
// registration for the same scheme overrides the earlier one.
func (r *Registry) RegisterLoader(l Loader) {
	for _, scheme := range l.Schemes() {
		r.loaders[scheme] = l
	}
}

// RegisterCodec registers a codec for all of its media types and
// extensions.
func (r *Registry) RegisterCodec(c Codec) {
	for _, mt := range c.MediaTypes() {
		r.codecs[mt] = c
	}
	for _, ext := range c.Extensions() {
		r.extensions[ext] = c
	}
}

// RegisterFilter registers a filter under its id.
func (r *Registry) RegisterFilter(f filter.Filter) {
	r.filters[f.ID()] = f
}

// SetDefaultMediaType selects the codec used when neither media type nor
// extension resolves one.
func (r *Registry) SetDefaultMediaType(mediaType string) {
	r.defaultMediaType = mediaType
}

// scheme extracts the URI scheme, empty for bare paths.
func scheme(uri string) string {
	i := strings.Index(uri, ":")
	if i < 0 {
		return ""
	}
	return uri[:i]
}

// LoaderFor resolves the loader serving the URI's scheme.
func (r *Registry) LoaderFor(uri string) (Loader, error) {
	s := scheme(uri)
	l, ok := r.loaders[s]
	if !ok {
		if s == "" {
			return nil, fmt.Errorf("registry: no loader for scheme-less uri %q", uri)
		}
		return nil, fmt.Errorf("registry: no loader for scheme %q (uri %q)", s, uri)
	}
	return l, nil
}

// MediaError reports a codec lookup or parse failure for a resource.
type MediaError struct {
	URI       string
	MediaType string
	Err       error
}

// Error implements the error interface for MediaError.
func (e *MediaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("registry: no codec for media type %q (uri %q)", e.MediaType, e.URI)
	}
	return fmt.Sprintf("registry: media failure for uri %q: %v", e.URI, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *MediaError) Unwrap() error { return e.Err }

// CodecFor resolves a codec by explicit media type, else by the URI's file
// extension, else the default codec.
func (r *Registry) CodecFor(mediaType, uri string) (Codec, error) {
	if mediaType != "" {
		if c, ok := r.codecs[mediaType]; ok {
			return c, nil
		}
		return nil, &MediaError{URI: uri, MediaType: mediaType}
	}
	if i := strings.LastIndex(uri, "."); i >= 0 {
		if c, ok := r.extensions[uri[i:]]; ok {
			return c, nil
		}
	}
	if c, ok := r.codecs[r.defaultMediaType]; ok {
		return c, nil
	}
	return nil, &MediaError{URI: uri, MediaType: r.defaultMediaType}
}

// FilterFor resolves a filter by id. An unknown id is a configuration
// error.
func (r *Registry) FilterFor(id string) (filter.Filter, error) {
	f, ok := r.filters[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown filter id %q", id)
	}
	return f, nil
}

// Validate checks the integrity of the populated registry before the first
// resolution.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if len(r.loaders) == 0 {
		return fmt.Errorf("registry: no loaders registered")
	}
	if r.defaultMediaType != "" {
		if _, ok := r.codecs[r.defaultMediaType]; !ok {
			return fmt.Errorf("registry: default media type %q has no codec", r.defaultMediaType)
		}
	}
	logger.Debug("Registry validation passed.",
		"loaders", len(r.loaders), "codecs", len(r.codecs), "filters", len(r.filters))
	return nil
}
