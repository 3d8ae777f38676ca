// Package envsrc loads the process environment as a resource, serving the
// env: scheme. The optional "prefix" parameter keeps only variables with
// the given name prefix; the optional "strip" parameter set to "true"
// additionally removes the prefix from the produced keys.
package envsrc

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/vk/bootcfg/internal/ctxlog"
	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/internal/resource"
)

// Loader reads the environment. The variable source is injectable so tests
// do not depend on the real process environment.
type Loader struct {
	environ func() []string
}

// Schemes implements registry.Loader.
func (*Loader) Schemes() []string { return []string{"env"} }

// Load implements registry.Loader. Variables are emitted sorted by name so
// resolution is deterministic regardless of the platform's environ order.
func (l *Loader) Load(ctx context.Context, res resource.Resource) ([]kv.Pair, error) {
	prefix, _ := res.Param("prefix")
	strip, _ := res.Param("strip")

	env := l.environ()
	sort.Strings(env)

	var out []kv.Pair
	for _, e := range env {
		key, value, ok := strings.Cut(e, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			if strip == "true" {
				key = key[len(prefix):]
			}
		}
		out = append(out, kv.Pair{Key: key, Value: value})
	}
	ctxlog.FromContext(ctx).Debug("Environment read.", "prefix", prefix, "pairs", len(out))
	return out, nil
}

// Module registers the loader over the real process environment.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterLoader(NewLoader(nil))
}

// NewLoader creates a Loader over the given environment source; nil means
// the real process environment.
func NewLoader(environ func() []string) *Loader {
	if environ == nil {
		environ = os.Environ
	}
	return &Loader{environ: environ}
}
