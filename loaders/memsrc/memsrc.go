// Package memsrc serves the mem: scheme from an in-process table of named
// pair lists. It backs programmatic embedding and tests.
package memsrc

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/internal/resource"
)

// Loader serves pairs from a fixed table keyed by the URI path.
type Loader struct {
	table map[string][]kv.Pair
}

// Schemes implements registry.Loader.
func (*Loader) Schemes() []string { return []string{"mem"} }

// Load implements registry.Loader. A URI whose path is not in the table is
// the not-found condition.
func (l *Loader) Load(_ context.Context, res resource.Resource) ([]kv.Pair, error) {
	name := strings.TrimPrefix(res.URI(), "mem:")
	pairs, ok := l.table[name]
	if !ok {
		return nil, fmt.Errorf("memsrc: no entry %q: %w", name, registry.ErrNotFound)
	}
	return append([]kv.Pair(nil), pairs...), nil
}

// NewLoader creates a Loader over the given table.
func NewLoader(table map[string][]kv.Pair) *Loader {
	return &Loader{table: table}
}

// Module registers the loader over a table decided at wiring time.
type Module struct {
	Table map[string][]kv.Pair
}

// Register implements registry.Module.
func (m Module) Register(r *registry.Registry) {
	r.RegisterLoader(NewLoader(m.Table))
}
