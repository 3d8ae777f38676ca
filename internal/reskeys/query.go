package reskeys

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vk/bootcfg/internal/resource"
)

// query parameter names. Unlike in-stream keys, the query forms carry no
// resource name (the URI itself identifies the resource) and accept no
// aliases.
const (
	queryFlags     = Prefix + wordFlags
	queryMediaType = Prefix + wordMediaType
	queryParam     = Prefix + wordParam + Sep
	queryFilter    = Prefix + wordFilter + Sep
)

// queryPair is one decoded query parameter, in document order.
type queryPair struct {
	key   string
	value string
	raw   string // the original undecoded "k=v" segment
}

// parseQuery decodes a raw query string preserving parameter order, which
// url.Values would lose.
func parseQuery(rawQuery string) ([]queryPair, error) {
	var out []queryPair
	for _, seg := range strings.Split(rawQuery, "&") {
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("reskeys: bad query parameter %q: %w", seg, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("reskeys: bad query parameter %q: %w", seg, err)
		}
		out = append(out, queryPair{key: key, value: value, raw: seg})
	}
	return out, nil
}

// fromQuery builds the base resource configuration from declaration query
// parameters on the URI and normalizes the URI by stripping every consumed
// parameter. Unrecognized parameters stay on the URI untouched.
func fromQuery(name, uri string) (resource.Config, error) {
	cfg := resource.Config{Name: name, URI: uri}

	base, rawQuery, hasQuery := strings.Cut(uri, "?")
	if !hasQuery {
		return cfg, nil
	}

	pairs, err := parseQuery(rawQuery)
	if err != nil {
		return resource.Config{}, err
	}

	var kept []string
	for _, p := range pairs {
		switch {
		case p.key == queryFlags:
			set, err := cfg.LoadFlags.ApplyCSV(p.value)
			if err != nil {
				return resource.Config{}, fmt.Errorf("reskeys: uri %q: %w", uri, err)
			}
			cfg.LoadFlags = set
		case p.key == queryMediaType:
			cfg.MediaType = p.value
		case strings.HasPrefix(p.key, queryParam):
			sub := p.key[len(queryParam):]
			if !resource.ValidName(sub) {
				return resource.Config{}, fmt.Errorf("reskeys: uri %q: malformed parameter name %q", uri, sub)
			}
			cfg.Params = setParam(cfg.Params, sub, p.value)
		case strings.HasPrefix(p.key, queryFilter):
			sub := p.key[len(queryFilter):]
			if !resource.ValidName(sub) {
				return resource.Config{}, fmt.Errorf("reskeys: uri %q: malformed filter id %q", uri, sub)
			}
			cfg.Filters = setFilter(cfg.Filters, sub, p.value)
		default:
			kept = append(kept, p.raw)
			continue
		}
	}

	cfg.URI = base
	if len(kept) > 0 {
		cfg.URI = base + "?" + strings.Join(kept, "&")
	}
	return cfg, nil
}
