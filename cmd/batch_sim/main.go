// Command batch_sim runs the full N×N matchup matrix for a unit catalog:
// a thin wrapper binding CLI flags and calling into the engine, not a
// place for simulation logic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jruiznavarro/battlesim/internal/catalog"
	"github.com/jruiznavarro/battlesim/internal/cliapp"
	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/model"
	"github.com/jruiznavarro/battlesim/internal/runner"
	"github.com/jruiznavarro/battlesim/internal/simulation/aggregate"
	"github.com/jruiznavarro/battlesim/internal/simulation/batch"
)

func main() {
	var flags *cliappFlags

	cmd := &cobra.Command{
		Use:          "batch_sim <units_file>",
		Short:        "Run the full N×N matchup matrix for a unit catalog",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args[0])
		},
	}
	flags = bindFlags(cmd)

	if err := cmd.Execute(); err != nil {
		if err == errInterrupted {
			os.Exit(130) // interrupted with checkpoint written
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliapp.ExitCode(err))
	}
}

// errInterrupted marks a clean stop via signal, mapped to exit code 130
// rather than any of internal/errs's Kind-driven codes.
var errInterrupted = fmt.Errorf("interrupted by signal")

// cliappFlags is a thin alias kept local to main so cobra's RunE closure
// doesn't need to import cliapp.Flags twice under two names.
type cliappFlags = cliapp.Flags

func bindFlags(cmd *cobra.Command) *cliappFlags {
	return cliapp.Bind(cmd.Flags())
}

func run(cmd *cobra.Command, flags *cliappFlags, unitsFile string) error {
	cfg, err := cliapp.Resolve(cmd.Flags(), flags, unitsFile)
	if err != nil {
		return err
	}
	log := cliapp.NewLogger(cfg.Quiet)

	pool := model.NewWeaponPool()
	units, warnings, lines, err := catalog.Load(cfg.UnitsFile, pool)
	if err != nil {
		return errs.Input("load catalog", err)
	}
	for _, w := range warnings {
		log.Warn().Err(w).Msg("catalog line skipped")
	}
	log.Info().Int("units", len(units)).Int("lines", lines).Msg("catalog loaded")
	if len(units) == 0 {
		return errs.Input("load catalog", fmt.Errorf("catalog %s contains no units", cfg.UnitsFile))
	}

	reg := model.NewRuleRegistry()

	simFormat := cliapp.SimulateFormat(cfg)
	outputPath := cfg.OutputPath
	if cfg.Aggregated {
		// The driver writes the richer CompactExtended file to a sibling
		// path; the final -o path becomes the reduced Aggregated file.
		outputPath = cfg.OutputPath + ".raw"
	}

	bcfg := batch.Config{
		BatchSize:       cfg.BatchSize,
		CheckpointEvery: cfg.CheckpointEvery,
		MasterSeed:      cfg.Seed,
		Threads:         cfg.Threads,
		Format:          simFormat,
		OutputPath:      outputPath,
		CheckpointPath:  cfg.CheckpointPath,
		Resume:          cfg.Resume,
		Quiet:           cfg.Quiet,
		Game:            runner.DefaultConfig(),
		OnProgress: func(completed, total uint64, rate, eta float64, resumed bool) {
			log.Info().
				Uint64("completed", completed).
				Uint64("total", total).
				Float64("rate_per_sec", rate).
				Float64("eta_sec", eta).
				Bool("resumed", resumed).
				Msg("progress")
		},
	}

	sim := batch.New(units, units, pool, reg, bcfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("interrupt received, finishing in-flight batches and checkpointing")
			close(stop)
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	stats, err := sim.SimulateAll(ctx, stop)
	if err != nil {
		return err
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Uint64("attacker_wins", stats.AttackerWins).
		Uint64("defender_wins", stats.DefenderWins).
		Uint64("draws", stats.Draws).
		Msg("simulation complete")

	if cfg.Aggregated {
		rows, err := aggregate.Reduce(outputPath)
		if err != nil {
			return err
		}
		if err := aggregate.WriteAggregatedFile(cfg.OutputPath, len(units), len(units), rows); err != nil {
			return err
		}
		log.Info().Str("path", cfg.OutputPath).Int("units", len(rows)).Msg("aggregated rollup written")

		if cfg.SQLiteExport != "" {
			if err := aggregate.ExportSQLite(cfg.SQLiteExport, rows); err != nil {
				return err
			}
			log.Info().Str("path", cfg.SQLiteExport).Int("units", len(rows)).Msg("aggregated rollup exported to sqlite")
		}
	}

	select {
	case <-stop:
		return errInterrupted
	default:
	}
	return nil
}
