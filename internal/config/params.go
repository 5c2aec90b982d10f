package config

import (
	"math"
	"sort"
)

var setters = map[string]func(c *Config, v float64){
	"contact_angle":   func(c *Config, v float64) { c.Interface.ContactAngle = v },
	"surface_tension": func(c *Config, v float64) { c.Interface.SurfaceTension = v },
	"resolution":      func(c *Config, v float64) { c.Domain.Resolution = int(math.Round(v)) },
	"end_time":        func(c *Config, v float64) { c.Output.EndTime = v },
	"max_speed":       func(c *Config, v float64) { c.Solver.MaxSpeed = v },
	"viscosity": func(c *Config, v float64) {
		c.Lower.Material.Mu = v
		c.Upper.Material.Mu = v
	},
	"sound_speed": func(c *Config, v float64) {
		c.Lower.Material.C0 = v
		c.Upper.Material.C0 = v
	},
	// Magnitude only; each droplet keeps its direction.
	"gravity": func(c *Config, v float64) {
		c.Lower.Gravity = math.Copysign(v, c.Lower.Gravity)
		c.Upper.Gravity = math.Copysign(v, c.Upper.Gravity)
	},
}

// Set assigns a numeric parameter by name, as used by sweeps.
func (c *Config) Set(name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return errUnknownParam(name)
	}
	set(c, v)
	return nil
}

// Params lists the names accepted by Set.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
