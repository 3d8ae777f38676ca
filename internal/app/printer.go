package app

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/vk/bootcfg/codecs/hclkv"
	"github.com/vk/bootcfg/codecs/jsonkv"
	"github.com/vk/bootcfg/codecs/propkv"
	"github.com/vk/bootcfg/codecs/urlkv"
	"github.com/vk/bootcfg/codecs/yamlkv"
	"github.com/vk/bootcfg/internal/engine"
	"github.com/vk/bootcfg/internal/kv"
)

// outputMediaTypes maps the codec-backed output formats to the media type
// used to resolve the codec from the registry.
var outputMediaTypes = map[string]string{
	"properties": propkv.MediaType,
	"json":       jsonkv.MediaType,
	"yaml":       yamlkv.MediaType,
	"hcl":        hclkv.MediaType,
	"url":        urlkv.MediaType,
}

// print writes the deduplicated resolved configuration. Sensitive values
// are redacted by KeyValue.Display in every format.
func (a *App) print(batch []kv.KeyValue) error {
	final := dedupLatest(batch)

	if a.config.Output == "text" {
		keyColor := color.New(color.FgCyan)
		sensitiveColor := color.New(color.FgYellow)
		if a.config.NoColor {
			keyColor.DisableColor()
			sensitiveColor.DisableColor()
		}
		for _, k := range final {
			value := k.Display()
			if value == kv.Redacted {
				value = sensitiveColor.Sprint(value)
			}
			if _, err := fmt.Fprintf(a.outW, "%s=%s\n", keyColor.Sprint(k.Key()), value); err != nil {
				return err
			}
		}
		return nil
	}

	codec, err := a.registry.CodecFor(outputMediaTypes[a.config.Output], "")
	if err != nil {
		return err
	}
	data, err := codec.Format(final)
	if err != nil {
		return err
	}
	_, err = a.outW.Write(data)
	return err
}

// dedupLatest reduces the ordered result to one entry per key, keeping the
// latest value at the position of the key's last occurrence.
func dedupLatest(batch []kv.KeyValue) []kv.KeyValue {
	latest := engine.Latest(batch)
	out := make([]kv.KeyValue, 0, len(latest))
	seen := make(map[string]bool, len(latest))
	for i := len(batch) - 1; i >= 0; i-- {
		key := batch[i].Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, latest[key])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
