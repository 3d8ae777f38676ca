// Package hclkv implements the HCL attribute representation: a body of
// top-level attributes whose values are flattened into dotted keys with
// bracketed indices, in declaration order.
//
// HCL's own template syntax is evaluated with no variables in scope, so a
// literal ${...} reference intended for the resolver must be written $${...}.
package hclkv

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/bootcfg/internal/kv"
	"github.com/vk/bootcfg/internal/registry"
)

// MediaType identifies the HCL representation.
const MediaType = "application/hcl"

// Codec parses and formats HCL attribute bodies.
type Codec struct{}

// MediaTypes implements registry.Codec.
func (Codec) MediaTypes() []string { return []string{MediaType, "application/x-hcl"} }

// Extensions implements registry.Codec.
func (Codec) Extensions() []string { return []string{".hcl"} }

// Parse decodes an HCL body of attributes into ordered pairs. Object and
// map values nest with dots, list and tuple elements with bracketed
// indices. Null values become empty strings.
func (Codec) Parse(data []byte) ([]kv.Pair, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, "input.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("hclkv: %w", diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("hclkv: %w", diags)
	}

	// JustAttributes returns a map; restore declaration order.
	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	var out []kv.Pair
	for _, a := range ordered {
		v, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("hclkv: attribute %q: %w", a.Name, diags)
		}
		if err := flatten(a.Name, v, &out); err != nil {
			return nil, fmt.Errorf("hclkv: attribute %q: %w", a.Name, err)
		}
	}
	return out, nil
}

func flatten(name string, v cty.Value, out *[]kv.Pair) error {
	if v.IsNull() {
		*out = append(*out, kv.Pair{Key: name})
		return nil
	}
	ty := v.Type()
	switch {
	case ty.IsPrimitiveType():
		s, err := convert.Convert(v, cty.String)
		if err != nil {
			return err
		}
		*out = append(*out, kv.Pair{Key: name, Value: s.AsString()})
	case ty.IsObjectType():
		names := make([]string, 0, len(ty.AttributeTypes()))
		for n := range ty.AttributeTypes() {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if err := flatten(name+"."+n, v.GetAttr(n), out); err != nil {
				return err
			}
		}
	case ty.IsMapType():
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			if err := flatten(name+"."+k.AsString(), ev, out); err != nil {
				return err
			}
		}
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		i := 0
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if err := flatten(name+"["+strconv.Itoa(i)+"]", ev, out); err != nil {
				return err
			}
			i++
		}
	default:
		return fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
	return nil
}

// Format renders a resolved batch as a flat HCL attribute body in batch
// order, redacting sensitive values.
func (Codec) Format(batch []kv.KeyValue) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for _, k := range batch {
		body.SetAttributeValue(k.Key(), cty.StringVal(k.Display()))
	}
	return f.Bytes(), nil
}

// Module registers the codec.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterCodec(Codec{})
}
