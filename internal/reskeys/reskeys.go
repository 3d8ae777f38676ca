// Package reskeys implements the reserved key/value naming convention that
// embeds resource declarations in an ordinary key/value stream, and its
// equivalent encoding as URI query parameters.
//
// In-stream keys (default separators):
//
//	_load_<name>      = <uri>          creates the resource
//	_flags_<name>     = <csv>
//	_mediaType_<name> = <type>         (alias _mime_)
//	_param_<name>_<p> = <value>        (alias _parm_)
//	_filter_<name>_<id> = <expr>       (alias _filt_)
//
// The same information may arrive as query parameters on the resource's own
// URI (?_flags=, ?_mediaType=, ?_param_<p>=, ?_filter_<id>=). In-stream keys
// take precedence; consumed query parameters are stripped from the
// normalized URI.
package reskeys

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/resource"
)

// Prefix and Sep are the reserved-key building blocks. They are constants
// of the wire format and must not vary between encode and decode.
const (
	Prefix = "_"
	Sep    = "_"
)

// declaration key words and their accepted aliases.
const (
	wordLoad      = "load"
	wordFlags     = "flags"
	wordMediaType = "mediaType"
	wordMime      = "mime"
	wordParam     = "param"
	wordParm      = "parm"
	wordFilter    = "filter"
	wordFilt      = "filt"
)

// canonicalWord maps every accepted alias to its canonical word.
var canonicalWord = map[string]string{
	wordLoad:      wordLoad,
	wordFlags:     wordFlags,
	wordMediaType: wordMediaType,
	wordMime:      wordMediaType,
	wordParam:     wordParam,
	wordParm:      wordParam,
	wordFilter:    wordFilter,
	wordFilt:      wordFilter,
}

// splitKey recognizes a declaration key and returns its canonical word and
// the remainder after the word separator.
func splitKey(key string) (word, rest string, ok bool) {
	if !strings.HasPrefix(key, Prefix) {
		return "", "", false
	}
	body := key[len(Prefix):]
	for alias, canon := range canonicalWord {
		if strings.HasPrefix(body, alias+Sep) {
			return canon, body[len(alias)+len(Sep):], true
		}
	}
	return "", "", false
}

// IsDeclaration reports whether the key uses the reserved declaration shape.
func IsDeclaration(key string) bool {
	_, _, ok := splitKey(key)
	return ok
}

// Strip returns the batch with every declaration key removed. Declaration
// keys must never appear in the final output.
func Strip(batch []kv.KeyValue) []kv.KeyValue {
	var out []kv.KeyValue
	for _, k := range batch {
		if IsDeclaration(k.Key()) {
			continue
		}
		out = append(out, k)
	}
	return out
}

// splitSub splits the remainder of a param/filter key into the resource
// name and the sub-name. Resource names are alphanumeric, so the first
// separator ends the name.
func splitSub(rest string) (name, sub string, ok bool) {
	i := strings.Index(rest, Sep)
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+len(Sep):], true
}

// Discover scans an expanded batch for resource declarations and returns
// the declared child resources in declaration order. Each resource is
// linked to the KeyValue that declared it. Malformed declaration keys and
// duplicate resource names within the batch are hard errors, aggregated so
// one pass reports them all.
func Discover(batch []kv.KeyValue) ([]resource.Resource, error) {
	var errs error

	// First pass: validate every declaration-shaped key and collect loads.
	type load struct {
		name string
		uri  string
		ref  *kv.KeyValue
	}
	var loads []load
	seen := make(map[string]bool)
	for i := range batch {
		k := batch[i]
		word, rest, ok := splitKey(k.Key())
		if !ok {
			continue
		}
		switch word {
		case wordLoad, wordFlags, wordMediaType:
			if !resource.ValidName(rest) {
				errs = multierr.Append(errs, fmt.Errorf("reskeys: key %q: invalid resource name %q", k.Key(), rest))
				continue
			}
		case wordParam, wordFilter:
			name, sub, ok := splitSub(rest)
			if !ok || sub == "" {
				errs = multierr.Append(errs, fmt.Errorf("reskeys: key %q: missing sub-name", k.Key()))
				continue
			}
			if !resource.ValidName(name) || !resource.ValidName(sub) {
				errs = multierr.Append(errs, fmt.Errorf("reskeys: key %q: malformed name", k.Key()))
				continue
			}
		}
		if word != wordLoad {
			continue
		}
		if seen[rest] {
			errs = multierr.Append(errs, fmt.Errorf("reskeys: duplicate resource name %q in one batch", rest))
			continue
		}
		seen[rest] = true
		ref := batch[i]
		loads = append(loads, load{name: rest, uri: k.Value(), ref: &ref})
	}
	if errs != nil {
		return nil, errs
	}

	// Second pass: assemble each declared resource from its URI query
	// parameters, then overlay the in-stream declaration keys, which win.
	var out []resource.Resource
	for _, l := range loads {
		res, err := assemble(l.name, l.uri, l.ref, batch)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, res)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// FromURI builds a resource for a seed URI, honoring declaration query
// parameters on the URI itself.
func FromURI(name, uri string, ref *kv.KeyValue) (resource.Resource, error) {
	return assemble(name, uri, ref, nil)
}

// assemble builds one resource from its URI plus any in-stream declaration
// keys present in the batch.
func assemble(name, uri string, ref *kv.KeyValue, batch []kv.KeyValue) (resource.Resource, error) {
	cfg, err := fromQuery(name, uri)
	if err != nil {
		return resource.Resource{}, err
	}
	cfg.Ref = ref

	for _, k := range batch {
		word, rest, ok := splitKey(k.Key())
		if !ok || word == wordLoad {
			continue
		}
		switch word {
		case wordFlags:
			if rest != name {
				continue
			}
			set, err := cfg.LoadFlags.ApplyCSV(k.Value())
			if err != nil {
				return resource.Resource{}, fmt.Errorf("reskeys: key %q: %w", k.Key(), err)
			}
			cfg.LoadFlags = set
		case wordMediaType:
			if rest != name {
				continue
			}
			cfg.MediaType = k.Value()
		case wordParam:
			resName, sub, _ := splitSub(rest)
			if resName != name {
				continue
			}
			cfg.Params = setParam(cfg.Params, sub, k.Value())
		case wordFilter:
			resName, sub, _ := splitSub(rest)
			if resName != name {
				continue
			}
			cfg.Filters = setFilter(cfg.Filters, sub, k.Value())
		}
	}

	return resource.New(cfg)
}

// setParam overrides an existing parameter in place or appends a new one.
func setParam(params []resource.Param, name, value string) []resource.Param {
	for i := range params {
		if params[i].Name == name {
			params[i].Value = value
			return params
		}
	}
	return append(params, resource.Param{Name: name, Value: value})
}

// setFilter overrides an existing filter in place or appends a new one.
func setFilter(filters []resource.FilterSpec, id, expr string) []resource.FilterSpec {
	for i := range filters {
		if filters[i].ID == id {
			filters[i].Expression = expr
			return filters
		}
	}
	return append(filters, resource.FilterSpec{ID: id, Expression: expr})
}

// Format renders a resource back into its in-stream declaration keys.
func Format(r resource.Resource) []kv.Pair {
	name := r.Name()
	out := []kv.Pair{{Key: Prefix + wordLoad + Sep + name, Value: r.URI()}}
	if !r.Flags().IsEmpty() {
		out = append(out, kv.Pair{Key: Prefix + wordFlags + Sep + name, Value: r.Flags().Format()})
	}
	if r.MediaType() != "" {
		out = append(out, kv.Pair{Key: Prefix + wordMediaType + Sep + name, Value: r.MediaType()})
	}
	for _, p := range r.Params() {
		out = append(out, kv.Pair{Key: Prefix + wordParam + Sep + name + Sep + p.Name, Value: p.Value})
	}
	for _, f := range r.Filters() {
		out = append(out, kv.Pair{Key: Prefix + wordFilter + Sep + name + Sep + f.ID, Value: f.Expression})
	}
	return out
}
