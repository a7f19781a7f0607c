// Package config loads the engine's runtime configuration, layering CLI
// flags over environment variables over an optional YAML file,
// following the loader shape in storbeck-augustus's pkg/config.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/jruiznavarro/battlesim/internal/errs"
)

// Config is the engine's fully-resolved runtime configuration.
type Config struct {
	UnitsFile         string `koanf:"units_file"`
	OutputPath        string `koanf:"output"`
	CheckpointPath    string `koanf:"checkpoint"`
	BatchSize         int    `koanf:"batch_size"`
	CheckpointEvery   int    `koanf:"checkpoint_interval"`
	Extended          bool   `koanf:"extended"`
	CompactExtended   bool   `koanf:"compact_extended"`
	Aggregated        bool   `koanf:"aggregated"`
	Resume            bool   `koanf:"resume"`
	Quiet             bool   `koanf:"quiet"`
	Seed              uint64 `koanf:"seed"`
	Threads           int    `koanf:"threads"`
	SQLiteExport      string `koanf:"sqlite_export"`
}

// Defaults holds the documented CLI defaults.
func Defaults() Config {
	return Config{
		OutputPath:      "results.bin",
		CheckpointPath:  "checkpoint.bin",
		BatchSize:       10_000,
		CheckpointEvery: 1_000_000,
	}
}

// Load builds a Config from, in ascending priority: built-in defaults, an
// optional YAML file at configPath, then environment variables prefixed
// BSIM_ (BSIM_SEED, BSIM_THREADS). CLI flags are not read here:
// cliapp.Resolve copies every flag set on the command line over the
// returned Config, so flags always win.
func Load(configPath string) (Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, errs.Config(fmt.Sprintf("load config file %s", configPath), err)
		}
	}

	err := k.Load(env.Provider("BSIM_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "BSIM_")
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return Config{}, errs.Config("load environment overrides", err)
	}

	cfg := Defaults()
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true, // env values arrive as strings; coerce into int/uint/bool fields
			TagName:          "koanf",
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return Config{}, errs.Config("unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errs.Config("validate config", err)
	}
	return cfg, nil
}

// Validate checks the invariants a ConfigError requires: nonsensical
// CLI/env values are rejected before the engine starts.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.CheckpointEvery <= 0 {
		return fmt.Errorf("checkpoint_interval must be positive, got %d", c.CheckpointEvery)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0 (0 means hardware concurrency), got %d", c.Threads)
	}
	selected := 0
	for _, b := range []bool{c.Extended, c.CompactExtended, c.Aggregated} {
		if b {
			selected++
		}
	}
	if selected > 1 {
		return fmt.Errorf("only one of -e/-E/-A may be set")
	}
	if c.SQLiteExport != "" && !c.Aggregated {
		return fmt.Errorf("sqlite_export requires -A/--aggregated")
	}
	return nil
}
