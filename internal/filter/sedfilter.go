package filter

import (
	"context"

	"github.com/vk/bootcfg/internal/filter/sed"
	"github.com/vk/bootcfg/internal/kv"
)

// Sed applies a restricted sed command (see the sed package) to every key
// in the batch. A dropped key removes the pair; a rewritten key renames the
// pair, preserving its value.
type Sed struct{}

// ID implements Filter.
func (Sed) ID() string { return "sed" }

// Apply implements Filter.
func (Sed) Apply(_ context.Context, batch []kv.KeyValue, expr string) ([]kv.KeyValue, error) {
	cmd, err := sed.Parse(expr)
	if err != nil {
		return nil, err
	}
	var out []kv.KeyValue
	for _, k := range batch {
		key, keep := cmd.Execute(k.Key())
		if !keep {
			continue
		}
		if key != k.Key() {
			k = k.WithKey(key)
		}
		out = append(out, k)
	}
	return out, nil
}
