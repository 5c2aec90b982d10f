package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/material"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth           = 2.0
	DefaultHeight          = 10.0
	DefaultResolution      = 40
	DefaultWallLayers      = 4
	DefaultMaxSpeed        = 1.0
	DefaultSoundSpeed      = 10.0 * DefaultMaxSpeed
	DefaultViscosity       = 5.0e-2
	DefaultContactAngle    = 150.0
	DefaultSurfaceTension  = 0.008
	DefaultEndTime         = 30.0
	DefaultOutputs         = 500
	DefaultScreenInterval  = 100
	DefaultRestartInterval = 10 * DefaultScreenInterval
	DefaultRiemann         = "acoustic"
)

type Config struct {
	Name      string          `yaml:"name"`
	Domain    DomainConfig    `yaml:"domain"`
	Lower     FluidConfig     `yaml:"lower"`
	Upper     FluidConfig     `yaml:"upper"`
	Interface InterfaceConfig `yaml:"interface"`
	Solver    SolverConfig    `yaml:"solver"`
	Output    OutputConfig    `yaml:"output"`
}

// DomainConfig describes the tank. Particle spacing is Width/Resolution.
type DomainConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Resolution int     `yaml:"resolution"`
	WallLayers int     `yaml:"wall_layers"`
}

// BlockConfig is an axis-aligned rectangle of liquid in absolute coordinates.
type BlockConfig struct {
	XMin float64 `yaml:"x_min"`
	XMax float64 `yaml:"x_max"`
	YMin float64 `yaml:"y_min"`
	YMax float64 `yaml:"y_max"`
}

type FluidConfig struct {
	Name     string                      `yaml:"name"`
	Block    BlockConfig                 `yaml:"block"`
	Material material.WeaklyCompressible `yaml:"material"`
	Gravity  float64                     `yaml:"gravity"`
}

type InterfaceConfig struct {
	ContactAngle     float64 `yaml:"contact_angle"` // degrees
	SurfaceTension   float64 `yaml:"surface_tension"`
	SurfaceThreshold float64 `yaml:"surface_threshold"`
	NoiseFloor       float64 `yaml:"noise_floor"`
}

type SolverConfig struct {
	Riemann  string  `yaml:"riemann"`
	MaxSpeed float64 `yaml:"max_speed"`
}

type OutputConfig struct {
	EndTime         float64  `yaml:"end_time"`
	Outputs         int      `yaml:"outputs"`
	ScreenInterval  int      `yaml:"screen_interval"`
	RestartInterval int      `yaml:"restart_interval"`
	Formats         []string `yaml:"formats"`
}

// DefaultConfig is the two-droplet case: a hydrophobic tank with one drop on
// the floor and one hanging from the ceiling, each pulled towards the other.
func DefaultConfig() *Config {
	water := material.NewWeaklyCompressible(1.0, DefaultSoundSpeed, DefaultViscosity)
	return &Config{
		Name: "two-droplets",
		Domain: DomainConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			Resolution: DefaultResolution,
			WallLayers: DefaultWallLayers,
		},
		Lower: FluidConfig{
			Name:     "lower",
			Block:    BlockConfig{XMin: 0.375 * DefaultWidth, XMax: 0.625 * DefaultWidth, YMin: 0, YMax: 0.35},
			Material: water,
			Gravity:  1.0,
		},
		Upper: FluidConfig{
			Name:     "upper",
			Block:    BlockConfig{XMin: 0.375 * DefaultWidth, XMax: 0.625 * DefaultWidth, YMin: DefaultHeight - 0.35, YMax: DefaultHeight},
			Material: water,
			Gravity:  -1.0,
		},
		Interface: InterfaceConfig{
			ContactAngle:   DefaultContactAngle,
			SurfaceTension: DefaultSurfaceTension,
		},
		Solver: SolverConfig{
			Riemann:  DefaultRiemann,
			MaxSpeed: DefaultMaxSpeed,
		},
		Output: OutputConfig{
			EndTime:         DefaultEndTime,
			Outputs:         DefaultOutputs,
			ScreenInterval:  DefaultScreenInterval,
			RestartInterval: DefaultRestartInterval,
			Formats:         []string{"csv"},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Spacing is the reference particle spacing.
func (c *Config) Spacing() float64 {
	if c.Domain.Resolution <= 0 {
		return 0
	}
	return c.Domain.Width / float64(c.Domain.Resolution)
}

// OutputInterval is the simulated time between snapshots.
func (c *Config) OutputInterval() float64 {
	if c.Output.Outputs <= 0 {
		return 0
	}
	return c.Output.EndTime / float64(c.Output.Outputs)
}

// ContactAngleRad is the contact angle in radians.
func (c *Config) ContactAngleRad() float64 {
	return c.Interface.ContactAngle * math.Pi / 180
}

// Validate reports the first setup defect, wrapped around
// dynamo.ErrInvalidConfig.
func (c *Config) Validate() error {
	d := c.Domain
	if !dynamo.Finite(d.Width) || !dynamo.Finite(d.Height) {
		return dynamo.ConfigError("domain", "width and height must be positive, got %gx%g", d.Width, d.Height)
	}
	if d.Resolution <= 0 {
		return dynamo.ConfigError("domain.resolution", "must be positive, got %d", d.Resolution)
	}
	if d.WallLayers < 3 {
		return dynamo.ConfigError("domain.wall_layers", "need at least 3 layers to cover the kernel support, got %d", d.WallLayers)
	}
	for _, f := range []struct {
		field string
		fc    FluidConfig
	}{{"lower", c.Lower}, {"upper", c.Upper}} {
		if err := c.validateFluid(f.field, f.fc); err != nil {
			return err
		}
	}
	if a := c.Interface.ContactAngle; !(a > 0 && a < 180) {
		return dynamo.ConfigError("interface.contact_angle", "must lie in (0, 180) degrees, got %g", a)
	}
	if !nonNegative(c.Interface.SurfaceTension) {
		return dynamo.ConfigError("interface.surface_tension", "must be finite and not negative, got %g", c.Interface.SurfaceTension)
	}
	if t := c.Interface.SurfaceThreshold; !(t >= 0 && t < 1) {
		return dynamo.ConfigError("interface.surface_threshold", "must lie in [0, 1), got %g", t)
	}
	if !nonNegative(c.Interface.NoiseFloor) {
		return dynamo.ConfigError("interface.noise_floor", "must be finite and not negative, got %g", c.Interface.NoiseFloor)
	}
	if !dynamo.Finite(c.Solver.MaxSpeed) {
		return dynamo.ConfigError("solver.max_speed", "must be positive, got %g", c.Solver.MaxSpeed)
	}
	if c.Solver.Riemann == "" {
		return dynamo.ConfigError("solver.riemann", "must name a solver")
	}
	o := c.Output
	if !dynamo.Finite(o.EndTime) {
		return dynamo.ConfigError("output.end_time", "must be positive, got %g", o.EndTime)
	}
	if o.Outputs <= 0 {
		return dynamo.ConfigError("output.outputs", "must be positive, got %d", o.Outputs)
	}
	if o.ScreenInterval < 0 || o.RestartInterval < 0 {
		return dynamo.ConfigError("output", "intervals must not be negative")
	}
	for _, f := range o.Formats {
		switch f {
		case "csv", "svg", "png":
		default:
			return dynamo.ConfigError("output.formats", "unknown format %q", f)
		}
	}
	return nil
}

// nonNegative rejects negative values as well as NaN and infinities.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func errUnknownParam(name string) error {
	return dynamo.ConfigError(name, "unknown parameter (have %v)", Params())
}

func (c *Config) validateFluid(field string, f FluidConfig) error {
	m := f.Material
	if !dynamo.Finite(m.Rho0) {
		return dynamo.ConfigError(field+".material.rho0", "must be positive, got %g", m.Rho0)
	}
	if !dynamo.Finite(m.C0) {
		return dynamo.ConfigError(field+".material.sound_speed", "must be positive, got %g", m.C0)
	}
	if !nonNegative(m.Mu) {
		return dynamo.ConfigError(field+".material.viscosity", "must be finite and not negative, got %g", m.Mu)
	}
	if math.IsNaN(f.Gravity) || math.IsInf(f.Gravity, 0) {
		return dynamo.ConfigError(field+".gravity", "must be finite")
	}
	b := f.Block
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dynamo.ConfigError(field+".block", "bounds must be finite")
		}
	}
	if b.XMax <= b.XMin || b.YMax <= b.YMin {
		return dynamo.ConfigError(field+".block", "empty block [%g,%g]x[%g,%g]", b.XMin, b.XMax, b.YMin, b.YMax)
	}
	if b.XMin < 0 || b.YMin < 0 || b.XMax > c.Domain.Width || b.YMax > c.Domain.Height {
		return dynamo.ConfigError(field+".block", "lies outside the %gx%g tank", c.Domain.Width, c.Domain.Height)
	}
	return nil
}
