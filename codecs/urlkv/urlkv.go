// Package urlkv implements the urlencoded representation: pairs joined by
// '&' with percent-encoded keys and values, in document order.
package urlkv

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
)

// MediaType identifies the urlencoded representation.
const MediaType = "application/x-www-form-urlencoded"

// Codec parses and formats urlencoded pair lists.
type Codec struct{}

// MediaTypes implements registry.Codec.
func (Codec) MediaTypes() []string { return []string{MediaType} }

// Extensions implements registry.Codec.
func (Codec) Extensions() []string { return nil }

// Parse decodes an urlencoded pair list. Unlike url.ParseQuery the document
// order and duplicate keys are preserved.
func (Codec) Parse(data []byte) ([]kv.Pair, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	var out []kv.Pair
	for _, part := range strings.Split(text, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("urlkv: bad key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("urlkv: bad value for key %q: %w", key, err)
		}
		out = append(out, kv.Pair{Key: key, Value: value})
	}
	return out, nil
}

// Format renders a resolved batch as an urlencoded pair list, redacting
// sensitive values.
func (Codec) Format(batch []kv.KeyValue) ([]byte, error) {
	var b strings.Builder
	for i, k := range batch {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k.Key()))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(k.Display()))
	}
	return []byte(b.String()), nil
}

// Module registers the codec.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterCodec(Codec{})
}
