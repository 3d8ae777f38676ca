package filter

import (
	"context"

	"github.com/vk/bootcfg/internal/kv"
)

// Join merges duplicate keys: when a key repeats, the new value is
// concatenated onto the previous value for that key using the expression as
// separator, replacing the earlier entry in place. First-seen order is
// preserved; non-repeated keys pass through unchanged.
type Join struct{}

// ID implements Filter.
func (Join) ID() string { return "join" }

// Apply implements Filter.
func (Join) Apply(_ context.Context, batch []kv.KeyValue, sep string) ([]kv.KeyValue, error) {
	var out []kv.KeyValue
	seen := make(map[string]int)
	for _, k := range batch {
		if i, ok := seen[k.Key()]; ok {
			out[i] = out[i].WithValue(out[i].Value() + sep + k.Value())
			continue
		}
		seen[k.Key()] = len(out)
		out = append(out, k)
	}
	return out, nil
}
