package filter

import (
	"context"
	"fmt"
	"regexp"

	"github.com/vk/bootcfg/internal/kv"
)

// Grep keeps only the pairs whose key contains a match of the expression,
// compiled as a regular expression.
type Grep struct{}

// ID implements Filter.
func (Grep) ID() string { return "grep" }

// Apply implements Filter.
func (Grep) Apply(_ context.Context, batch []kv.KeyValue, expr string) ([]kv.KeyValue, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("grep: invalid expression %q: %w", expr, err)
	}
	var out []kv.KeyValue
	for _, k := range batch {
		if re.MatchString(k.Key()) {
			out = append(out, k)
		}
	}
	return out, nil
}
