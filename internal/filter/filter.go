// Package filter defines the post-load filter capability and the built-in
// filters (grep, join, sed) that transform a resource's key/value batch
// before it is merged into the result.
package filter

import (
	"context"

	"github.com/vk/bootcfg/internal/kv"
)

// Filter transforms a full key/value batch according to an opaque expression
// in the filter's own mini-language. Implementations must not mutate the
// input slice.
type Filter interface {
	// ID is the discriminator used in resource declarations
	// (_filter_<name>_<id>).
	ID() string
	// Apply interprets the expression and returns the transformed batch.
	Apply(ctx context.Context, batch []kv.KeyValue, expr string) ([]kv.KeyValue, error)
}

// Builtin returns the filters every engine instance knows about.
func Builtin() []Filter {
	return []Filter{Grep{}, Join{}, Sed{}}
}
