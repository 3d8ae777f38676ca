// Package jsonkv implements the JSON representation. Input may carry
// comments and trailing commas; nested documents are flattened into dotted
// keys with bracketed array indices, in document order.
package jsonkv

import (
	"bytes"
	"fmt"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
)

// MediaType identifies the JSON representation.
const MediaType = "application/json"

// Codec parses and formats JSON documents.
type Codec struct{}

// MediaTypes implements registry.Codec.
func (Codec) MediaTypes() []string { return []string{MediaType, "text/json"} }

// Extensions implements registry.Codec.
func (Codec) Extensions() []string { return []string{".json", ".jsonc", ".json5"} }

// Parse flattens a JSON document into ordered pairs. An object key nests
// with a dot ("db.host"), an array element with a bracketed index
// ("servers[0]"). Scalars keep their literal text; null becomes the empty
// string. A top-level scalar is rejected.
func (Codec) Parse(data []byte) ([]kv.Pair, error) {
	dec := gojson.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("jsonkv: %w", err)
	}
	delim, ok := tok.(gojson.Delim)
	if !ok {
		return nil, fmt.Errorf("jsonkv: top-level value must be an object or array, got %v", tok)
	}

	var out []kv.Pair
	if delim == '{' {
		err = flattenObject(dec, "", &out)
	} else {
		err = flattenArray(dec, "", &out)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonkv: %w", err)
	}
	return out, nil
}

func flattenObject(dec *gojson.Decoder, prefix string, out *[]kv.Pair) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		if prefix != "" {
			name = prefix + "." + name
		}
		if err := flattenValue(dec, name, out); err != nil {
			return err
		}
	}
	_, err := dec.Token() // closing '}'
	return err
}

func flattenArray(dec *gojson.Decoder, prefix string, out *[]kv.Pair) error {
	for i := 0; dec.More(); i++ {
		if err := flattenValue(dec, prefix+"["+strconv.Itoa(i)+"]", out); err != nil {
			return err
		}
	}
	_, err := dec.Token() // closing ']'
	return err
}

func flattenValue(dec *gojson.Decoder, key string, out *[]kv.Pair) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch v := tok.(type) {
	case gojson.Delim:
		if v == '{' {
			return flattenObject(dec, key, out)
		}
		return flattenArray(dec, key, out)
	case string:
		*out = append(*out, kv.Pair{Key: key, Value: v})
	case gojson.Number:
		*out = append(*out, kv.Pair{Key: key, Value: v.String()})
	case bool:
		*out = append(*out, kv.Pair{Key: key, Value: strconv.FormatBool(v)})
	case nil:
		*out = append(*out, kv.Pair{Key: key})
	default:
		return fmt.Errorf("unexpected token %v for key %q", tok, key)
	}
	return nil
}

// Format renders a resolved batch as a flat JSON object in batch order,
// redacting sensitive values. A key occurring twice appears twice; consumers
// that need last-wins semantics should deduplicate first.
func (Codec) Format(batch []kv.KeyValue) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, k := range batch {
		name, err := gojson.Marshal(k.Key())
		if err != nil {
			return nil, fmt.Errorf("jsonkv: %w", err)
		}
		value, err := gojson.Marshal(k.Display())
		if err != nil {
			return nil, fmt.Errorf("jsonkv: %w", err)
		}
		b.WriteString("  ")
		b.Write(name)
		b.WriteString(": ")
		b.Write(value)
		if i < len(batch)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.Bytes(), nil
}

// Module registers the codec.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterCodec(Codec{})
}
