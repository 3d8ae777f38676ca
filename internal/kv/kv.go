// Package kv defines the immutable key/value model the resolver operates on,
// together with the provenance metadata attached to every pair.
package kv

import (
	"fmt"
	"strings"

	"github.com/vk/bootcfg/internal/flagset"
)

// Redacted is the placeholder rendered in place of sensitive values in any
// displayed or formatted form.
const Redacted = "*****"

// Pair is a raw key/value tuple as produced by a loader or codec, before any
// provenance or flags are attached.
type Pair struct {
	Key   string
	Value string
}

// Source records where a KeyValue came from: the URI of its resource, the
// position within that resource, and optionally the KeyValue whose value
// caused the resource to be loaded. Ref is a non-owning back-reference; the
// chain of Refs forms the load chain used in diagnostics.
type Source struct {
	URI   string
	Index int
	Ref   *KeyValue
}

// MemorySource is the sentinel source for values created in memory rather
// than loaded from a URI.
var MemorySource = Source{}

// IsMemory reports whether the source is the in-memory sentinel.
func (s Source) IsMemory() bool {
	return s.URI == ""
}

// Chain renders the load chain from this source down to the root seed as a
// human-readable string, for example:
//
//	"_load_db" in file:base.properties <- "_load_app" in mem:boot
//
// An empty chain (a seed with no declaring reference) renders as "seed".
func (s Source) Chain() string {
	var parts []string
	for ref := s.Ref; ref != nil; ref = ref.Source().Ref {
		parts = append(parts, fmt.Sprintf("%q in %s", ref.Key(), ref.Source().describe()))
	}
	if len(parts) == 0 {
		return "seed"
	}
	return strings.Join(parts, " <- ")
}

func (s Source) describe() string {
	if s.IsMemory() {
		return "memory"
	}
	return s.URI
}

// KeyValue is one resolved configuration entry. Instances are immutable;
// every transformation returns a new value. The expanded value is always the
// most recent interpolation of the raw value, unless the
// disable-interpolation flag is set, in which case expanded equals raw.
type KeyValue struct {
	key      string
	expanded string
	meta     Meta
}

// Meta carries the immutable provenance of a KeyValue.
type Meta struct {
	// OriginalKey is the key as loaded, before any filter renamed it.
	OriginalKey string
	// Raw is the un-interpolated value as loaded.
	Raw string
	// Source records where the pair was loaded from.
	Source Source
	// Flags are the behavioral flags propagated from the owning resource.
	Flags flagset.Set
}

// New creates a KeyValue whose expanded value starts out equal to its raw
// value.
func New(key, raw string, src Source, flags flagset.Set) KeyValue {
	return KeyValue{
		key:      key,
		expanded: raw,
		meta: Meta{
			OriginalKey: key,
			Raw:         raw,
			Source:      src,
			Flags:       flags,
		},
	}
}

// Key returns the current key, after any filter renames.
func (k KeyValue) Key() string { return k.key }

// Value returns the current expanded value. Callers that show values to
// users must go through Display instead.
func (k KeyValue) Value() string { return k.expanded }

// Raw returns the un-interpolated value as loaded.
func (k KeyValue) Raw() string { return k.meta.Raw }

// OriginalKey returns the key as it appeared in the loaded resource.
func (k KeyValue) OriginalKey() string { return k.meta.OriginalKey }

// Source returns the provenance of the pair.
func (k KeyValue) Source() Source { return k.meta.Source }

// Flags returns the behavioral flags attached to the pair.
func (k KeyValue) Flags() flagset.Set { return k.meta.Flags }

// WithKey returns a copy renamed to the given key. The original key is
// preserved in the metadata.
func (k KeyValue) WithKey(key string) KeyValue {
	k.key = key
	return k
}

// WithValue returns a copy carrying a freshly expanded value.
func (k KeyValue) WithValue(expanded string) KeyValue {
	k.expanded = expanded
	return k
}

// WithFlags returns a copy with the given flags merged in.
func (k KeyValue) WithFlags(flags flagset.Set) KeyValue {
	k.meta.Flags = k.meta.Flags.Union(flags)
	return k
}

// Display returns the expanded value, or the redaction placeholder when the
// pair is sensitive.
func (k KeyValue) Display() string {
	if k.meta.Flags.Has(flagset.Sensitive) {
		return Redacted
	}
	return k.expanded
}

// String renders the pair for logs and diagnostics, redacting sensitive
// values.
func (k KeyValue) String() string {
	return k.key + "=" + k.Display()
}
