package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/respawn/pkg/errors"
)

// Config is the root configuration.
type Config struct {
	Logging    LoggingConfig         `yaml:"logging" json:"logging"`
	Metrics    MetricsConfig         `yaml:"metrics" json:"metrics"`
	Tracing    TracingConfig         `yaml:"tracing" json:"tracing"`
	Simulation SimulationConfig      `yaml:"simulation" json:"simulation"`
	Pools      map[string]PoolConfig `yaml:"pools" json:"pools"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level       string   `yaml:"level" json:"level"`
	Development bool     `yaml:"development" json:"development"`
	Encoding    string   `yaml:"encoding" json:"encoding"`
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"service_name" json:"service_name"`
	SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate"`
}

// SimulationConfig shapes the workload of the simulator.
type SimulationConfig struct {
	// Frames is the number of frames to run.
	Frames int `yaml:"frames" json:"frames"`
	// SpawnsPerFrame is how many props are claimed each frame.
	SpawnsPerFrame int `yaml:"spawns_per_frame" json:"spawns_per_frame"`
	// Lifetime is how many frames a prop stays claimed.
	Lifetime int `yaml:"lifetime" json:"lifetime"`
	// EffectsPerFrame is how many effects are spawned each frame.
	EffectsPerFrame int `yaml:"effects_per_frame" json:"effects_per_frame"`
	// EffectFrames is how long one effect plays.
	EffectFrames int `yaml:"effect_frames" json:"effect_frames"`
	// AssetEvery claims one asset every N frames; 0 disables assets.
	AssetEvery int `yaml:"asset_every" json:"asset_every"`
}

// PoolConfig sizes one pool.
type PoolConfig struct {
	Prewarm int `yaml:"prewarm" json:"prewarm"`
	MaxIdle int `yaml:"max_idle" json:"max_idle"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stderr"},
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
		Tracing: TracingConfig{
			ServiceName:  "poolsim",
			SamplingRate: 1.0,
		},
		Simulation: SimulationConfig{
			Frames:          600,
			SpawnsPerFrame:  4,
			Lifetime:        30,
			EffectsPerFrame: 2,
			EffectFrames:    20,
			AssetEvery:      10,
		},
		Pools: map[string]PoolConfig{
			"props":   {Prewarm: 32, MaxIdle: 128},
			"effects": {Prewarm: 8, MaxIdle: 48},
			"assets":  {Prewarm: 2, MaxIdle: 8},
		},
	}
}

// Pool returns the configuration of the named pool, or the zero value.
func (c *Config) Pool(name string) PoolConfig {
	return c.Pools[name]
}

// Validate checks the configuration for values no pool can honour.
func (c *Config) Validate() error {
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return invalid("tracing.sampling_rate", c.Tracing.SamplingRate, "must be between 0 and 1")
	}

	sim := c.Simulation
	counts := []struct {
		field string
		value int
	}{
		{"simulation.frames", sim.Frames},
		{"simulation.spawns_per_frame", sim.SpawnsPerFrame},
		{"simulation.lifetime", sim.Lifetime},
		{"simulation.effects_per_frame", sim.EffectsPerFrame},
		{"simulation.effect_frames", sim.EffectFrames},
		{"simulation.asset_every", sim.AssetEvery},
	}
	for _, n := range counts {
		if n.value < 0 {
			return invalid(n.field, n.value, "must not be negative")
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Pools)) {
		p := c.Pools[name]
		if p.Prewarm < 0 {
			return invalid("pools."+name+".prewarm", p.Prewarm, "must not be negative")
		}
		if p.MaxIdle < 0 {
			return invalid("pools."+name+".max_idle", p.MaxIdle, "must not be negative")
		}
	}
	return nil
}

func invalid(field string, value interface{}, reason string) error {
	return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("%s %s", field, reason)).
		WithDetail("field", field).
		WithDetail("value", value)
}

// LoadFile reads path over Default and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := Load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load decodes the YAML file at filePath into config after substituting
// environment variables.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		errType := errors.ErrorTypeConfig
		if stderrors.Is(err, fs.ErrNotExist) {
			errType = errors.ErrorTypeNotFound
		}
		return errors.Wrap(err, errType, "failed to read config file").
			WithDetail("path", filePath)
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail("path", filePath)
	}
	return nil
}

// Save writes config to filePath as YAML.
func Save(filePath string, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to write config file").
			WithDetail("path", filePath)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with the variable's value. Unset
// variables become empty strings.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
