package app

import (
	"github.com/specialistvlad/sagago/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// EngineCategory is the configuration category owned by the runtime itself.
const EngineCategory = "sagago.engine"

// Option names in EngineCategory.
const (
	OptionAdaptorPaths    = "adaptor_paths"
	OptionConfigFile      = "config_file"
	OptionBuiltinAdaptors = "builtin_adaptors"
	OptionFoo             = "foo"
)

// engineSchema returns the options the runtime registers at startup.
func engineSchema() []config.Option {
	return []config.Option{
		{
			Category:      EngineCategory,
			Name:          OptionAdaptorPaths,
			Type:          config.TypeStringList,
			Default:       config.StringList(),
			EnvVariable:   "SAGAGO_ADAPTOR_PATHS",
			Documentation: "Directories searched for adaptor_*.hcl manifests, after the built-in adaptors.",
		},
		{
			Category:      EngineCategory,
			Name:          OptionConfigFile,
			Type:          config.TypeString,
			Default:       cty.StringVal(""),
			EnvVariable:   "SAGAGO_CONFIG",
			Documentation: "HCL file with option values, applied below environment overrides.",
		},
		{
			Category:      EngineCategory,
			Name:          OptionBuiltinAdaptors,
			Type:          config.TypeBool,
			Default:       cty.True,
			EnvVariable:   "SAGAGO_BUILTIN_ADAPTORS",
			Documentation: "Load the adaptors compiled into the binary.",
		},
		{
			Category:      EngineCategory,
			Name:          OptionFoo,
			Type:          config.TypeString,
			Default:       cty.StringVal("bar"),
			EnvVariable:   "SAGAGO_FOO",
			Documentation: "Sample engine option. Nothing reads it; it shows how options are declared.",
		},
	}
}
