// Package yamlkv implements the YAML representation. Nested documents are
// flattened into dotted keys with bracketed sequence indices, preserving
// mapping order.
package yamlkv

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
)

// MediaType identifies the YAML representation.
const MediaType = "application/yaml"

// Codec parses and formats YAML documents.
type Codec struct{}

// MediaTypes implements registry.Codec.
func (Codec) MediaTypes() []string { return []string{MediaType, "text/yaml", "text/x-yaml"} }

// Extensions implements registry.Codec.
func (Codec) Extensions() []string { return []string{".yaml", ".yml"} }

// Parse flattens a YAML document into ordered pairs, using the same key
// shape as the JSON representation: dots for mapping keys, bracketed indices
// for sequence elements. Null scalars become empty strings. An empty
// document parses to no pairs.
func (Codec) Parse(data []byte) ([]kv.Pair, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yamlkv: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	var out []kv.Pair
	if err := flatten(doc.Content[0], "", &out); err != nil {
		return nil, fmt.Errorf("yamlkv: %w", err)
	}
	return out, nil
}

func flatten(n *yaml.Node, prefix string, out *[]kv.Pair) error {
	// Follow aliases so anchored subtrees flatten like literal ones.
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			name := n.Content[i].Value
			if prefix != "" {
				name = prefix + "." + name
			}
			if err := flatten(n.Content[i+1], name, out); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			if err := flatten(c, prefix+"["+strconv.Itoa(i)+"]", out); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		value := n.Value
		if n.Tag == "!!null" {
			value = ""
		}
		if prefix == "" {
			return fmt.Errorf("top-level value must be a mapping or sequence, got scalar %q at line %d", n.Value, n.Line)
		}
		*out = append(*out, kv.Pair{Key: prefix, Value: value})
	default:
		return fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
	}
	return nil
}

// Format renders a resolved batch as a flat YAML mapping in batch order,
// redacting sensitive values.
func (Codec) Format(batch []kv.KeyValue) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range batch {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Key()},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Display()},
		)
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("yamlkv: %w", err)
	}
	return out, nil
}

// Module registers the codec.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterCodec(Codec{})
}
