// Package config provides Viper-based configuration loading for the simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// IntervalConfig bounds a rolled delay in ticks.
type IntervalConfig struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// SimulationConfig holds the batch and per-run settings.
type SimulationConfig struct {
	// Scenario is the path of the YAML loadout to simulate.
	Scenario string `mapstructure:"scenario"`
	// Ticks is the length of one run; 6000 ticks is one hour.
	Ticks int `mapstructure:"ticks"`
	// Runs is the number of independent runs in the batch.
	Runs int `mapstructure:"runs"`
	// Workers bounds parallel runs; 0 uses GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// Seed fixes the batch seed; 0 draws one from math/rand/v2.
	Seed       uint64         `mapstructure:"seed"`
	GearSwitch IntervalConfig `mapstructure:"gear_switch"`
	Idle       IntervalConfig `mapstructure:"idle"`
	// LogEvents records the event trace of each run.
	LogEvents bool `mapstructure:"log_events"`
	// LogTicks prefixes each trace line with its tick.
	LogTicks bool `mapstructure:"log_ticks"`
	// LogFile receives the trace when the batch is a single run.
	LogFile string `mapstructure:"log_file"`
	// PerRun prints every run in the report, not just the aggregate.
	PerRun bool `mapstructure:"per_run"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on persistence of run summaries.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a file path or "stderr"/"stdout"; empty means stderr.
	Output string `mapstructure:"output"`
}

// Config is the top-level application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateInterval(name string, i IntervalConfig) []string {
	var errs []string
	if i.Min < 0 {
		errs = append(errs, fmt.Sprintf("simulation.%s.min must be >= 0, got %d", name, i.Min))
	}
	if i.Max < i.Min {
		errs = append(errs, fmt.Sprintf("simulation.%s.max must be >= min, got %d < %d", name, i.Max, i.Min))
	}
	return errs
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Scenario == "" {
		errs = append(errs, "simulation.scenario must not be empty")
	}
	if s.Ticks < 1 {
		errs = append(errs, fmt.Sprintf("simulation.ticks must be >= 1, got %d", s.Ticks))
	}
	if s.Runs < 1 {
		errs = append(errs, fmt.Sprintf("simulation.runs must be >= 1, got %d", s.Runs))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be >= 0, got %d", s.Workers))
	}
	errs = append(errs, validateInterval("gear_switch", s.GearSwitch)...)
	errs = append(errs, validateInterval("idle", s.Idle)...)
	if s.LogTicks && !s.LogEvents {
		errs = append(errs, "simulation.log_ticks requires simulation.log_events")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// New returns a Viper instance carrying the defaults and DEMONSIM_ environment
// overrides, with no config file attached.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DEMONSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.scenario", "content/scenarios/dual_wield.yaml")
	v.SetDefault("simulation.ticks", 6000)
	v.SetDefault("simulation.runs", 1)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.gear_switch.min", 4)
	v.SetDefault("simulation.gear_switch.max", 6)
	v.SetDefault("simulation.idle.min", 5)
	v.SetDefault("simulation.idle.max", 7)
	v.SetDefault("simulation.log_events", false)
	v.SetDefault("simulation.log_ticks", false)
	v.SetDefault("simulation.log_file", "simulation.log")
	v.SetDefault("simulation.per_run", false)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "demonsim")
	v.SetDefault("database.password", "demonsim")
	v.SetDefault("database.name", "demonsim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}
