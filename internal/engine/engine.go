// Package engine implements the worklist-driven resolution of seed
// resources into an ordered list of key/value pairs. Traversal is strictly
// single-threaded, synchronous and depth-first; resolution order decides
// which value wins on key collisions and must be deterministic.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/bootcfg/internal/ctxlog"
	"github.com/vk/bootcfg/internal/flagset"
	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/internal/reskeys"
	"github.com/vk/bootcfg/internal/resource"
	"github.com/vk/bootcfg/internal/sub"
)

// Options configures one Engine instance. The zero value uses the standard
// ${name:-default} substitution syntax and no external variables.
type Options struct {
	// Vars are externally supplied read-only variables, the last lookup
	// tier of the interpolator.
	Vars map[string]string
	// Sub overrides the substitution syntax.
	Sub sub.Options
}

// Engine resolves seeds against the capabilities in its registry. An Engine
// is immutable and safe to reuse; every Resolve call owns a private
// worklist, result list and variable store.
type Engine struct {
	reg  *registry.Registry
	opts Options
}

// New creates an Engine.
func New(reg *registry.Registry, opts Options) *Engine {
	return &Engine{reg: reg, opts: opts}
}

// Resolve runs the worklist to completion and returns the ordered result.
// The returned list keeps every merged occurrence of a key, in merge order;
// lookups and collision checks during the run track only the latest per
// key (see Latest).
func (e *Engine) Resolve(ctx context.Context, seeds ...resource.Seed) ([]kv.KeyValue, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolution started.", "seeds", len(seeds))

	store := sub.NewStore(e.opts.Vars)
	r := &run{
		engine: e,
		store:  store,
		interp: sub.New(e.opts.Sub, store),
		latest: make(map[string]int),
		work:   newWorklist(seeds...),
	}

	for {
		s, ok := r.work.popFront()
		if !ok {
			break
		}
		if err := r.step(ctx, s); err != nil {
			return nil, err
		}
	}

	// One final, strict expansion pass over the accumulated list.
	if err := r.refresh(ctx, true); err != nil {
		return nil, err
	}
	logger.Debug("Resolution finished.", "entries", len(r.out))
	return r.out, nil
}

// Latest returns the deduplicated view of a resolved list: for every key,
// the value of its last occurrence.
func Latest(batch []kv.KeyValue) map[string]kv.KeyValue {
	out := make(map[string]kv.KeyValue, len(batch))
	for _, k := range batch {
		out[k.Key()] = k
	}
	return out
}

// run is the private mutable state of one resolution.
type run struct {
	engine *Engine
	store  *sub.Store
	interp *sub.Interpolator
	out    []kv.KeyValue
	latest map[string]int
	work   *worklist
}

// step resolves one popped seed: load, flag, interpolate, discover
// children, strip declarations, filter, merge, and refresh the accumulated
// state.
func (r *run) step(ctx context.Context, seed resource.Seed) error {
	logger := ctxlog.FromContext(ctx)

	var (
		pairs   []kv.Pair
		flags   flagset.Set
		filters []resource.FilterSpec
		src     func(i int) kv.Source
		chain   string
	)
	switch s := seed.(type) {
	case resource.Inline:
		pairs = s.Pairs()
		src = func(i int) kv.Source { return kv.Source{Index: i} }
		chain = "seed"
		logger.Debug("Using in-memory source.", "name", s.SeedName(), "pairs", len(pairs))
	case resource.Resource:
		flags = s.Flags()
		filters = s.Filters()
		src = s.Source
		chain = s.Source(0).Chain()
		loaded, err := r.load(ctx, s)
		if err != nil {
			return err
		}
		pairs = loaded
	default:
		return fmt.Errorf("engine: unsupported seed type %T", seed)
	}

	// Build the batch, stamping provenance and the resource's flags onto
	// every pair, and expose the raw values as the first lookup tier.
	batch := make([]kv.KeyValue, 0, len(pairs))
	for i, p := range pairs {
		batch = append(batch, kv.New(p.Key, p.Value, src(i), flags))
		r.store.SetBatch(p.Key, p.Value)
	}

	// Lenient pass: a reference to a key a child resource will provide
	// stays verbatim here and is resolved by a later refresh. Strictness is
	// enforced once, in the final expansion pass.
	if !flags.Has(flagset.DisableInterpolation) {
		for i, k := range batch {
			expanded, err := r.interp.TryInterpolate(k.Key(), k.Raw())
			if err != nil {
				return fmt.Errorf("engine: interpolating %q (load chain: %s): %w", k.Key(), chain, err)
			}
			batch[i] = k.WithValue(expanded)
		}
	}

	children, err := reskeys.Discover(batch)
	if err != nil {
		return fmt.Errorf("engine: discovering children of %q (load chain: %s): %w", seed.SeedName(), chain, err)
	}
	if len(children) > 0 {
		if flags.Has(flagset.DisableChildLoading) {
			return fmt.Errorf("engine: resource %q declares %d child resource(s) but child loading is disabled (load chain: %s)",
				seed.SeedName(), len(children), chain)
		}
		for _, c := range children {
			if flags.Has(flagset.Inherit) {
				c = c.WithExtraFlags(flags)
			}
			r.work.pushFront(c)
			logger.Debug("Discovered child resource.", "name", c.Name(), "uri", c.URI())
		}
	}

	batch = reskeys.Strip(batch)

	for _, fs := range filters {
		f, err := r.engine.reg.FilterFor(fs.ID)
		if err != nil {
			return fmt.Errorf("engine: resource %q: %w", seed.SeedName(), err)
		}
		batch, err = f.Apply(ctx, batch, fs.Expression)
		if err != nil {
			return fmt.Errorf("engine: filter %q on resource %q: %w", fs.ID, seed.SeedName(), err)
		}
	}

	if err := r.merge(ctx, seed, flags, batch, chain); err != nil {
		return err
	}

	r.store.ClearBatch()
	return r.refresh(ctx, false)
}

// load invokes the external loader for a resource, applying the
// optional/not-required recovery for the not-found condition.
func (r *run) load(ctx context.Context, res resource.Resource) ([]kv.Pair, error) {
	logger := ctxlog.FromContext(ctx)
	chain := res.Source(0).Chain()

	l, err := r.engine.reg.LoaderFor(res.URI())
	if err != nil {
		return nil, fmt.Errorf("engine: resource %q (load chain: %s): %w", res.Name(), chain, err)
	}
	pairs, err := l.Load(ctx, res)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			if res.Flags().Has(flagset.NotRequired) {
				logger.Info("Optional resource not found, skipping.", "name", res.Name(), "uri", res.URI())
				return nil, nil
			}
			return nil, fmt.Errorf("engine: required resource %q (%s) not found (load chain: %s): %w",
				res.Name(), res.URI(), chain, err)
		}
		return nil, fmt.Errorf("engine: loading resource %q (%s) failed (load chain: %s): %w",
			res.Name(), res.URI(), chain, err)
	}
	logger.Debug("Resource loaded.", "name", res.Name(), "uri", res.URI(), "pairs", len(pairs))
	return pairs, nil
}

// merge folds the filtered batch into the accumulated result and the
// variable store according to the resource's merge flags.
func (r *run) merge(ctx context.Context, seed resource.Seed, flags flagset.Set, batch []kv.KeyValue, chain string) error {
	logger := ctxlog.FromContext(ctx)
	added := false

	if flags.Has(flagset.VariablesOnly) {
		for _, k := range batch {
			r.store.Put(k.Key(), k.Value())
			added = true
		}
	} else {
		for _, k := range batch {
			if idx, collides := r.latest[k.Key()]; collides {
				if flags.Has(flagset.AddNewOnly) {
					continue
				}
				if r.out[idx].Flags().Has(flagset.Lock) {
					logger.Debug("Key is locked, keeping earlier value.", "key", k.Key())
					continue
				}
			}
			// The ordered list keeps every occurrence; only the index map
			// tracks the latest value per key.
			r.out = append(r.out, k)
			r.latest[k.Key()] = len(r.out) - 1
			if !flags.Has(flagset.NoAddToVariables) {
				r.store.Put(k.Key(), k.Value())
			}
			added = true
		}
	}

	if !added && flags.Has(flagset.ForbidEmpty) {
		return fmt.Errorf("engine: resource %q contributed no key/values but carries forbidEmpty (load chain: %s)",
			seed.SeedName(), chain)
	}
	return nil
}

// refresh re-interpolates the whole accumulated list against the current
// variable store and folds the results back in, so later resources can
// reference any key produced earlier. Intermediate passes are lenient
// (unresolved references wait for more resources); the final pass is strict
// and a still-missing variable is fatal. A cycle is always fatal.
func (r *run) refresh(ctx context.Context, final bool) error {
	for i, k := range r.out {
		if !k.Flags().Has(flagset.DisableInterpolation) {
			var expanded string
			var err error
			if final {
				expanded, err = r.interp.Interpolate(k.Key(), k.Raw())
			} else {
				expanded, err = r.interp.TryInterpolate(k.Key(), k.Raw())
			}
			if err != nil {
				var missing *sub.MissingVariableError
				var cycle *sub.CycleError
				if errors.As(err, &missing) || errors.As(err, &cycle) {
					return fmt.Errorf("engine: re-interpolating %q (%s): %w",
						k.Key(), k.Source().Chain(), err)
				}
				ctxlog.FromContext(ctx).Debug("Re-interpolation failed, keeping previous value.",
					"key", k.Key(), "error", err)
				continue
			}
			if expanded != k.Value() {
				r.out[i] = k.WithValue(expanded)
			}
		}
		if !k.Flags().Has(flagset.NoAddToVariables) {
			r.store.Put(r.out[i].Key(), r.out[i].Value())
		}
	}
	return nil
}
