package config

import "sort"

// Presets are named starting points; every entry is a full configuration.
var Presets = map[string]func() *Config{
	"two-droplets": DefaultConfig,
	"wetting": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "wetting"
		cfg.Domain.Height = 2.0
		cfg.Upper.Block = BlockConfig{XMin: 0.375 * cfg.Domain.Width, XMax: 0.625 * cfg.Domain.Width, YMin: 1.65, YMax: 2.0}
		cfg.Lower.Gravity = -1.0
		cfg.Upper.Gravity = 1.0
		cfg.Interface.ContactAngle = 60
		cfg.Output.EndTime = 5.0
		cfg.Output.Outputs = 100
		return cfg
	},
	"quick": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "quick"
		cfg.Domain.Height = 3.0
		cfg.Domain.Resolution = 20
		cfg.Upper.Block = BlockConfig{XMin: 0.375 * cfg.Domain.Width, XMax: 0.625 * cfg.Domain.Width, YMin: 2.6, YMax: 3.0}
		cfg.Lower.Block.YMax = 0.4
		cfg.Output.EndTime = 0.5
		cfg.Output.Outputs = 10
		cfg.Output.ScreenInterval = 10
		cfg.Output.RestartInterval = 0
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
