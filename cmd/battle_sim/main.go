// Command battle_sim runs one attacker-vs-defender matchup with a
// round-by-round trace printed to stdout, the showcase front-end that
// complements batch_sim's full-matrix run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jruiznavarro/battlesim/internal/catalog"
	"github.com/jruiznavarro/battlesim/internal/cliapp"
	"github.com/jruiznavarro/battlesim/internal/dice"
	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/model"
	"github.com/jruiznavarro/battlesim/internal/runner"
)

func main() {
	var (
		seed  uint64
		quiet bool
	)

	cmd := &cobra.Command{
		Use:          "battle_sim <units_file> <attacker> <defender>",
		Short:        "Trace one attacker-vs-defender matchup round by round",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2], seed, quiet)
		},
	}
	fs := cmd.Flags()
	fs.Uint64Var(&seed, "seed", 1, "dice stream seed")
	fs.BoolVarP(&quiet, "quiet", "q", false, "suppress info-level logging")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliapp.ExitCode(err))
	}
}

func run(unitsFile, attackerName, defenderName string, seed uint64, quiet bool) error {
	log := cliapp.NewLogger(quiet)

	pool := model.NewWeaponPool()
	units, warnings, lines, err := catalog.Load(unitsFile, pool)
	if err != nil {
		return errs.Input("load catalog", err)
	}
	for _, w := range warnings {
		log.Warn().Err(w).Msg("catalog line skipped")
	}
	log.Info().Int("units", len(units)).Int("lines", lines).Msg("catalog loaded")

	attacker := findUnit(units, attackerName)
	defender := findUnit(units, defenderName)
	if attacker == nil {
		return errs.Input("resolve attacker", fmt.Errorf("no unit named %q in %s", attackerName, unitsFile))
	}
	if defender == nil {
		return errs.Input("resolve defender", fmt.Errorf("no unit named %q in %s", defenderName, unitsFile))
	}

	reg := model.NewRuleRegistry()
	roller := dice.NewStream(seed)

	result, logs := runner.RunVerbose(roller, reg, pool, attacker, defender, runner.DefaultConfig())

	for _, line := range logs {
		fmt.Printf("round %2d [%.1f\"]: %s\n", line.Round, line.Distance, line.Description)
	}

	fmt.Println()
	fmt.Printf("%s vs %s: winner=%s wounds=%d/%d kills=%d/%d rounds=%d\n",
		attacker.Name, defender.Name,
		winnerLabel(result, attacker, defender),
		result.TotalWoundsA, result.TotalWoundsB,
		result.TotalKillsA, result.TotalKillsB,
		result.TotalRounds,
	)
	return nil
}

func findUnit(units []*model.Unit, name string) *model.Unit {
	for _, u := range units {
		if u.Name == name {
			return u
		}
	}
	return nil
}

func winnerLabel(r runner.MatchResult, a, b *model.Unit) string {
	switch {
	case r.GamesWonA > 0:
		return a.Name
	case r.GamesWonB > 0:
		return b.Name
	default:
		return "draw"
	}
}
