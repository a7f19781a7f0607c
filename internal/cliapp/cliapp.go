// Package cliapp holds the flag-binding and config-resolution logic shared
// by the two thin CLI front-ends, cmd/battle_sim and cmd/batch_sim.
package cliapp

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/jruiznavarro/battlesim/internal/config"
	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/simulation/persist"
)

// Flags holds the pflag-bound variables for the CLI surface common to
// both front-ends.
type Flags struct {
	Output          string
	Checkpoint      string
	BatchSize       int
	CheckpointEvery int
	Extended        bool
	CompactExtended bool
	Aggregated      bool
	Resume          bool
	Quiet           bool
	ConfigFile      string
	SQLiteExport    string
}

// Bind registers the -o -c -b -i -e -E -A -r -q flag surface plus an
// additive --config for the optional YAML file the ambient config layer
// supports and --sqlite for the optional Aggregated-mode SQLite sink;
// -h is cobra's own default.
func Bind(fs *pflag.FlagSet) *Flags {
	d := config.Defaults()
	f := &Flags{}
	fs.StringVarP(&f.Output, "output", "o", d.OutputPath, "output result file")
	fs.StringVarP(&f.Checkpoint, "checkpoint", "c", d.CheckpointPath, "checkpoint file")
	fs.IntVarP(&f.BatchSize, "batch-size", "b", d.BatchSize, "batch size, in pairs per work slice")
	fs.IntVarP(&f.CheckpointEvery, "checkpoint-interval", "i", d.CheckpointEvery, "checkpoint interval, in completed pairs")
	fs.BoolVarP(&f.Extended, "extended", "e", false, "Extended (24B) result format")
	fs.BoolVarP(&f.CompactExtended, "compact-extended", "E", false, "CompactExtended (16B) result format")
	fs.BoolVarP(&f.Aggregated, "aggregated", "A", false, "Aggregated (256B/unit) result format")
	fs.BoolVarP(&f.Resume, "resume", "r", false, "resume from checkpoint if present")
	fs.BoolVarP(&f.Quiet, "quiet", "q", false, "suppress the progress callback")
	fs.StringVar(&f.ConfigFile, "config", "", "optional YAML config file")
	fs.StringVar(&f.SQLiteExport, "sqlite", "", "also export the Aggregated rollup to a sqlite database at this path (requires -A)")
	return f
}

// Resolve layers f over config.Load's defaults/file/env result: any flag
// the caller actually set on the command line wins highest priority.
func Resolve(fs *pflag.FlagSet, f *Flags, unitsFile string) (config.Config, error) {
	cfg, err := config.Load(f.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	cfg.UnitsFile = unitsFile

	if fs.Changed("output") {
		cfg.OutputPath = f.Output
	}
	if fs.Changed("checkpoint") {
		cfg.CheckpointPath = f.Checkpoint
	}
	if fs.Changed("batch-size") {
		cfg.BatchSize = f.BatchSize
	}
	if fs.Changed("checkpoint-interval") {
		cfg.CheckpointEvery = f.CheckpointEvery
	}
	if fs.Changed("extended") {
		cfg.Extended = f.Extended
	}
	if fs.Changed("compact-extended") {
		cfg.CompactExtended = f.CompactExtended
	}
	if fs.Changed("aggregated") {
		cfg.Aggregated = f.Aggregated
	}
	if fs.Changed("resume") {
		cfg.Resume = f.Resume
	}
	if fs.Changed("quiet") {
		cfg.Quiet = f.Quiet
	}
	if fs.Changed("sqlite") {
		cfg.SQLiteExport = f.SQLiteExport
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, errs.Config("validate resolved config", err)
	}
	return cfg, nil
}

// SimulateFormat picks the on-disk record format the batch driver itself
// writes. Aggregated is never produced directly by the simulator — it is
// computed in a separate reduce pass over a Compact/Extended run — so when
// -A is set, the driver still writes CompactExtended (the richest format
// the reduce pass can consume) and the caller runs
// internal/simulation/aggregate afterward.
func SimulateFormat(cfg config.Config) persist.Format {
	switch {
	case cfg.Extended:
		return persist.FormatExtended
	case cfg.CompactExtended, cfg.Aggregated:
		return persist.FormatCompactExtended
	default:
		return persist.FormatCompact
	}
}

// NewLogger builds the zerolog logger every front-end writes structured
// events through, instead of fmt.Printf. Quiet mode raises the level to
// Warn so routine progress and checkpoint events are suppressed but
// failures still surface.
func NewLogger(quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if quiet {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
}

// ExitCode maps err to its process exit code, falling back to 1 for any
// error that did not come from internal/errs.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind.ExitCode()
	}
	return 1
}
