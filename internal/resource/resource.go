// Package resource defines the value objects describing a loadable unit of
// configuration: a named URI plus behavioral flags, parameters, filters and
// an optional media-type override.
package resource

import (
	"fmt"
	"regexp"

	"github.com/vk/bootcfg/internal/flagset"
	"github.com/vk/bootcfg/internal/kv"
)

// Seed is the closed set of inputs the engine accepts: a Resource loaded
// from a URI, or an Inline batch of in-memory pairs.
type Seed interface {
	// SeedName returns the identifier of the seed within its batch.
	SeedName() string
	isSeed()
}

var nameRE = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidName reports whether s is a legal resource, parameter or filter
// identifier (one or more alphanumerics).
func ValidName(s string) bool {
	return nameRE.MatchString(s)
}

// Param is one named parameter of a resource. Order is significant.
type Param struct {
	Name  string
	Value string
}

// FilterSpec names a post-load filter and carries its opaque expression.
type FilterSpec struct {
	ID         string
	Expression string
}

// Resource is an immutable description of a loadable unit. Construct via
// New.
type Resource struct {
	uri       string
	name      string
	loadFlags flagset.Set
	params    []Param
	filters   []FilterSpec
	mediaType string
	ref       *kv.KeyValue
}

// Config carries the fields for constructing a Resource.
type Config struct {
	URI       string
	Name      string
	LoadFlags flagset.Set
	Params    []Param
	Filters   []FilterSpec
	MediaType string
	// Ref is the KeyValue whose value caused this resource to be loaded,
	// nil for seeds.
	Ref *kv.KeyValue
}

// New validates the configuration and returns a normalized, immutable
// Resource. The name must be alphanumeric; parameter names and filter ids
// must be alphanumeric and non-empty.
func New(cfg Config) (Resource, error) {
	if !ValidName(cfg.Name) {
		return Resource{}, fmt.Errorf("resource: invalid name %q: must match [A-Za-z0-9]+", cfg.Name)
	}
	if cfg.URI == "" {
		return Resource{}, fmt.Errorf("resource %q: uri must not be empty", cfg.Name)
	}
	for _, p := range cfg.Params {
		if !ValidName(p.Name) {
			return Resource{}, fmt.Errorf("resource %q: invalid parameter name %q", cfg.Name, p.Name)
		}
	}
	for _, f := range cfg.Filters {
		if !ValidName(f.ID) {
			return Resource{}, fmt.Errorf("resource %q: invalid filter id %q", cfg.Name, f.ID)
		}
	}
	return Resource{
		uri:       cfg.URI,
		name:      cfg.Name,
		loadFlags: cfg.LoadFlags,
		params:    append([]Param(nil), cfg.Params...),
		filters:   append([]FilterSpec(nil), cfg.Filters...),
		mediaType: cfg.MediaType,
		ref:       cfg.Ref,
	}, nil
}

func (r Resource) isSeed() {}

// SeedName implements Seed.
func (r Resource) SeedName() string { return r.name }

// URI returns the load target.
func (r Resource) URI() string { return r.uri }

// Name returns the alphanumeric identifier of the resource.
func (r Resource) Name() string { return r.name }

// Flags returns the behavioral flags declared for the load.
func (r Resource) Flags() flagset.Set { return r.loadFlags }

// Params returns the declared parameters in declaration order.
func (r Resource) Params() []Param { return append([]Param(nil), r.params...) }

// Param returns the named parameter's value, if declared.
func (r Resource) Param(name string) (string, bool) {
	for _, p := range r.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Filters returns the declared filters in declaration order.
func (r Resource) Filters() []FilterSpec { return append([]FilterSpec(nil), r.filters...) }

// MediaType returns the declared media-type override, empty if none.
func (r Resource) MediaType() string { return r.mediaType }

// Ref returns the KeyValue that declared this resource, nil for seeds.
func (r Resource) Ref() *kv.KeyValue { return r.ref }

// WithExtraFlags returns a copy with the given flags merged into the load
// flags. Used to propagate inherited flags onto child resources.
func (r Resource) WithExtraFlags(extra flagset.Set) Resource {
	r.loadFlags = r.loadFlags.Union(extra)
	return r
}

// Source returns the provenance to stamp onto pairs loaded from this
// resource at the given position.
func (r Resource) Source(index int) kv.Source {
	return kv.Source{URI: r.uri, Index: index, Ref: r.ref}
}

// String renders the resource for logs.
func (r Resource) String() string {
	return fmt.Sprintf("%s(%s)", r.name, r.uri)
}

// Inline is an in-memory named source whose pairs are used as-is, without a
// loader round-trip.
type Inline struct {
	name  string
	pairs []kv.Pair
}

// NewInline creates an in-memory seed.
func NewInline(name string, pairs []kv.Pair) (Inline, error) {
	if !ValidName(name) {
		return Inline{}, fmt.Errorf("resource: invalid inline source name %q: must match [A-Za-z0-9]+", name)
	}
	return Inline{name: name, pairs: append([]kv.Pair(nil), pairs...)}, nil
}

func (s Inline) isSeed() {}

// SeedName implements Seed.
func (s Inline) SeedName() string { return s.name }

// Pairs returns the in-memory key/value pairs.
func (s Inline) Pairs() []kv.Pair { return append([]kv.Pair(nil), s.pairs...) }
