// Package runner implements the full-game runner: one complete N-round
// game between two units, and the RunMatch entry point that plays a
// configurable number of games per matchup.
package runner

import "github.com/jruiznavarro/battlesim/internal/model"

// Config controls a matchup's game parameters. GamesPerMatch is an
// explicit field rather than an inferred constant, so batch runs can
// request more than one game per matchup without the runner guessing.
type Config struct {
	MaxRounds                int
	GamesPerMatch            int
	StartingDistanceInches   float64
	ObjectiveControlInches   float64
}

// DefaultConfig is max_rounds = 4, one game per match. Both front-ends
// (battle_sim and batch_sim) use it unchanged; a caller that wants more
// games per matchup sets GamesPerMatch on the returned value.
func DefaultConfig() Config {
	return Config{
		MaxRounds:              4,
		GamesPerMatch:          1,
		StartingDistanceInches: 24,
		ObjectiveControlInches: 3,
	}
}

// Phase enumerates the per-round state machine.
type Phase int

const (
	PhaseDeployment Phase = iota
	PhaseMovement
	PhaseShooting
	PhaseMelee
	PhaseMorale
	PhaseObjective
	PhaseEndOfGame
)

// GameState is the per-game bookkeeping: two unit references
// plus round counters, discarded at game end.
type GameState struct {
	A, B *model.Unit

	Round            int
	Distance         float64
	RoundsHoldingA   int
	RoundsHoldingB   int
	WoundsA, WoundsB int // total wounds dealt by A, by B
	KillsA, KillsB   int // total models killed by A, by B

	chargedA, chargedB bool
	routedOnceA        bool // morale already failed once this game
	routedOnceB        bool
	aFirst             bool // side order, fixed once per game
}

// GameResult is the outcome of one game.
type GameResult struct {
	Winner       int // 0 = A, 1 = B, -1 = draw
	RoundsPlayed int
	WoundsA      int
	WoundsB      int
	KillsA       int
	KillsB       int
	HoldingA     int
	HoldingB     int
}

// MatchResult accumulates GamesPerMatch GameResults for one matchup:
// games_won_a, games_won_b, and per-category totals.
type MatchResult struct {
	GamesPlayed int
	GamesWonA   int
	GamesWonB   int
	Draws       int

	TotalWoundsA   uint32
	TotalWoundsB   uint32
	TotalKillsA    uint32
	TotalKillsB    uint32
	TotalHoldingA  uint32
	TotalHoldingB  uint32
	TotalRounds    uint32
}

func (m *MatchResult) addGame(g GameResult) {
	m.GamesPlayed++
	switch g.Winner {
	case 0:
		m.GamesWonA++
	case 1:
		m.GamesWonB++
	default:
		m.Draws++
	}
	m.TotalWoundsA += uint32(g.WoundsA)
	m.TotalWoundsB += uint32(g.WoundsB)
	m.TotalKillsA += uint32(g.KillsA)
	m.TotalKillsB += uint32(g.KillsB)
	m.TotalHoldingA += uint32(g.HoldingA)
	m.TotalHoldingB += uint32(g.HoldingB)
	m.TotalRounds += uint32(g.RoundsPlayed)
}

// RoundLog is one round's human-readable trace, used by the showcase
// replay front-end.
type RoundLog struct {
	Round       int
	Distance    float64
	Description string
}

// cloneUnit deep-copies a unit to full health for one fresh game. The
// catalog unit passed to RunMatch is never itself mutated; workers share
// it read-only.
func cloneUnit(u *model.Unit) *model.Unit {
	models := make([]model.Model, len(u.Models))
	for i, m := range u.Models {
		models[i] = m
		models[i].WoundsRemaining = m.Tough
	}
	clone := *u
	clone.Models = models
	return &clone
}
