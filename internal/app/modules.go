package app

import (
	"github.com/vk/bootcfg/codecs/hclkv"
	"github.com/vk/bootcfg/codecs/jsonkv"
	"github.com/vk/bootcfg/codecs/propkv"
	"github.com/vk/bootcfg/codecs/urlkv"
	"github.com/vk/bootcfg/codecs/yamlkv"
	"github.com/vk/bootcfg/internal/registry"
	"github.com/vk/bootcfg/loaders/argsrc"
	"github.com/vk/bootcfg/loaders/envsrc"
	"github.com/vk/bootcfg/loaders/filesrc"
	"github.com/vk/bootcfg/loaders/stdinsrc"
)

// coreModules is the definitive list of codecs and loaders compiled into
// the bootcfg binary. The args: loader serves the tokens from the command
// line, so the list depends on the runtime configuration.
func coreModules(cfg *Config) []registry.Module {
	return []registry.Module{
		propkv.Module{},
		urlkv.Module{},
		jsonkv.Module{},
		yamlkv.Module{},
		hclkv.Module{},
		filesrc.Module{},
		envsrc.Module{},
		stdinsrc.Module{},
		argsrc.Module{Tokens: cfg.Args},
	}
}
