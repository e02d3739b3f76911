// Package config loads the YAML configuration. Every setting has a
// default in the embedded default.yaml; a user file only needs the keys
// it changes.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/repeat"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfigYAML []byte

type Config struct {
	Lang     string          `yaml:"lang"`
	Defaults detour.FuelData `yaml:"defaults"`
	Steps    StepConfig      `yaml:"steps"`
	Repeat   RepeatConfig    `yaml:"repeat"`
	Prices   PricesConfig    `yaml:"prices"`
	Location LocationConfig  `yaml:"location"`
	Advice   AdviceConfig    `yaml:"advice"`
	Server   ServerConfig    `yaml:"server"`
}

// StepConfig holds the stepper magnitude of each field.
type StepConfig struct {
	PriceOnRoad    float64 `yaml:"price_on_road"`
	PriceOffRoad   float64 `yaml:"price_off_road"`
	LitersToRefuel float64 `yaml:"liters_to_refuel"`
	ConsumptionKmL float64 `yaml:"consumption_km_l"`
}

type RepeatConfig struct {
	InitialDelay    time.Duration `yaml:"initial_delay"`
	BaseInterval    time.Duration `yaml:"base_interval"`
	FastInterval    time.Duration `yaml:"fast_interval"`
	FastestInterval time.Duration `yaml:"fastest_interval"`
	FastAfter       int           `yaml:"fast_after"`
	FastestAfter    int           `yaml:"fastest_after"`
}

type PricesConfig struct {
	DB             string        `yaml:"db"`
	APIURL         string        `yaml:"api_url"`
	UpdateInterval time.Duration `yaml:"update_interval"`
	RetentionDays  int           `yaml:"retention_days"`
	NearestMaxKm   float64       `yaml:"nearest_max_km"`
	LookupTimeout  time.Duration `yaml:"lookup_timeout"`
}

type LocationConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Nominatim string        `yaml:"nominatim"`
	Timeout   time.Duration `yaml:"timeout"`
}

type AdviceConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	RateLimit int    `yaml:"rate_limit"`
}

// Default returns the embedded configuration.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("invalid embedded configuration: %v", err))
	}
	return &cfg
}

// Load reads filename over the defaults. An empty filename returns the
// defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot work with.
func (c *Config) Validate() error {
	var errs []error
	for field, step := range c.StepMap() {
		if step <= 0 {
			errs = append(errs, fmt.Errorf("steps: %s must be > 0", field))
		}
	}

	r := c.Repeat
	if r.InitialDelay <= 0 || r.BaseInterval <= 0 || r.FastInterval <= 0 || r.FastestInterval <= 0 {
		errs = append(errs, errors.New("repeat: delays and intervals must be > 0"))
	}
	if r.FastAfter < 0 || r.FastestAfter < r.FastAfter {
		errs = append(errs, errors.New("repeat: fastest_after must be >= fast_after >= 0"))
	}
	if c.Prices.UpdateInterval <= 0 {
		errs = append(errs, errors.New("prices: update_interval must be > 0"))
	}
	if c.Prices.NearestMaxKm <= 0 {
		errs = append(errs, errors.New("prices: nearest_max_km must be > 0"))
	}
	if c.Server.RateLimit <= 0 {
		errs = append(errs, errors.New("server: rate_limit must be > 0"))
	}
	return errors.Join(errs...)
}

// StepMap returns the stepper magnitudes keyed by field.
func (c *Config) StepMap() map[detour.Field]float64 {
	return map[detour.Field]float64{
		detour.PriceOnRoad:    c.Steps.PriceOnRoad,
		detour.PriceOffRoad:   c.Steps.PriceOffRoad,
		detour.LitersToRefuel: c.Steps.LitersToRefuel,
		detour.ConsumptionKmL: c.Steps.ConsumptionKmL,
	}
}

// RepeatTiming converts the repeat section for the press controller.
func (c *Config) RepeatTiming() repeat.Config {
	return repeat.Config{
		InitialDelay:    c.Repeat.InitialDelay,
		BaseInterval:    c.Repeat.BaseInterval,
		FastInterval:    c.Repeat.FastInterval,
		FastestInterval: c.Repeat.FastestInterval,
		FastAfter:       c.Repeat.FastAfter,
		FastestAfter:    c.Repeat.FastestAfter,
	}
}

// NewForm returns a calculator form seeded with the configured defaults.
func (c *Config) NewForm() *detour.Form {
	return detour.NewForm(c.Defaults, c.StepMap())
}
