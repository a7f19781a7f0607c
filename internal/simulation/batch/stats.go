// Package batch implements the batch simulator: it partitions
// the (attacker, defender) pair space into fixed-size batches, runs them
// across a bounded worker pool, and appends results to the output file in
// pair-index order via a reorder buffer.
package batch

// LocalStats is a worker's partial aggregate over one batch, merged into
// the driver's running Stats at batch-completion time.
type LocalStats struct {
	AttackerWins    uint64
	DefenderWins    uint64
	Draws           uint64
	WoundsAB        uint64
	WoundsBA        uint64
	KillsAB         uint64
	KillsBA         uint64
	ObjectiveRoundsA uint64
	ObjectiveRoundsB uint64
	TotalRounds     uint64
}

func (s *LocalStats) add(o LocalStats) {
	s.AttackerWins += o.AttackerWins
	s.DefenderWins += o.DefenderWins
	s.Draws += o.Draws
	s.WoundsAB += o.WoundsAB
	s.WoundsBA += o.WoundsBA
	s.KillsAB += o.KillsAB
	s.KillsBA += o.KillsBA
	s.ObjectiveRoundsA += o.ObjectiveRoundsA
	s.ObjectiveRoundsB += o.ObjectiveRoundsB
	s.TotalRounds += o.TotalRounds
}

// Stats is the driver's running global aggregate. The driver merges into this from
// a single goroutine, so no atomics are needed here; workers never touch
// it directly.
type Stats struct {
	LocalStats
}

// Progress is the monotone callback signature:
// (completed, total, rate_per_sec, eta_sec, resumed).
type Progress func(completed, total uint64, ratePerSec float64, etaSec float64, resumed bool)
