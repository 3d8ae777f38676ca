// Package argsrc serves the args: scheme from a fixed list of key=value
// tokens, typically the unconsumed command-line arguments.
package argsrc

import (
	"context"
	"strings"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/internal/resource"
)

// Loader turns tokens into pairs.
type Loader struct {
	tokens []string
}

// Schemes implements registry.Loader.
func (*Loader) Schemes() []string { return []string{"args"} }

// Load implements registry.Loader. A token without '=' becomes a key with
// an empty value.
func (l *Loader) Load(_ context.Context, _ resource.Resource) ([]kv.Pair, error) {
	out := make([]kv.Pair, 0, len(l.tokens))
	for _, tok := range l.tokens {
		key, value, _ := strings.Cut(tok, "=")
		out = append(out, kv.Pair{Key: key, Value: value})
	}
	return out, nil
}

// NewLoader creates a Loader over the given tokens.
func NewLoader(tokens []string) *Loader {
	return &Loader{tokens: append([]string(nil), tokens...)}
}

// Module registers the loader over a token list decided at wiring time.
type Module struct {
	Tokens []string
}

// Register implements registry.Module.
func (m Module) Register(r *registry.Registry) {
	r.RegisterLoader(NewLoader(m.Tokens))
}
