package batch

import (
	"context"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jruiznavarro/battlesim/internal/dice"
	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/model"
	"github.com/jruiznavarro/battlesim/internal/runner"
	"github.com/jruiznavarro/battlesim/internal/simulation/persist"
)

// Config controls one SimulateAll run, combining the driver contract with
// the CLI-facing knobs.
type Config struct {
	BatchSize       int
	CheckpointEvery int
	MasterSeed      uint64
	Threads         int // 0 means hardware concurrency
	Format          persist.Format
	OutputPath      string
	CheckpointPath  string
	Resume          bool
	Quiet           bool
	Game            runner.Config
	OnProgress      Progress
}

// Simulator runs the full pair matrix between two read-only unit catalogs.
type Simulator struct {
	UnitsA, UnitsB []*model.Unit
	Pool           *model.WeaponPool
	Registry       *model.RuleRegistry
	Cfg            Config
}

// New constructs a Simulator.
func New(unitsA, unitsB []*model.Unit, pool *model.WeaponPool, reg *model.RuleRegistry, cfg Config) *Simulator {
	return &Simulator{UnitsA: unitsA, UnitsB: unitsB, Pool: pool, Registry: reg, Cfg: cfg}
}

// pairBatch is [lo, hi) over the pair-index space i*|B|+j, always aligned
// to multiples of the configured batch size regardless of where a resume
// starts. emitFrom marks the first pair in the batch whose record should
// actually be written: on a resumed run whose checkpoint lands mid-batch,
// pairs in [lo, emitFrom) are still replayed through the dice stream (to
// keep the stream's position identical to an uninterrupted run) but their
// output is discarded, since it was already durably written before the
// crash.
type pairBatch struct {
	lo, hi, emitFrom int
}

type batchResult struct {
	seq   int
	buf   []byte
	stats LocalStats
}

// SimulateAll implements the batch contract: partitions the
// pair space into BatchSize batches, runs them across a bounded worker
// pool, and appends ResultRecords to the output file in pair-index order.
// stop is checked at batch-dispatch boundaries;
// in-flight batches always finish.
func (s *Simulator) SimulateAll(ctx context.Context, stop <-chan struct{}) (Stats, error) {
	total := len(s.UnitsA) * len(s.UnitsB)
	if total == 0 {
		return Stats{}, errs.Input("simulate_all", errEmptyCatalog)
	}

	startIndex, resumed, err := s.resumeState(total)
	if err != nil {
		return Stats{}, err
	}

	out, err := s.openOutput(resumed)
	if err != nil {
		return Stats{}, err
	}
	defer out.Close()

	batches := planBatches(total, startIndex, s.Cfg.BatchSize)

	threads := s.Cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	sem := semaphore.NewWeighted(int64(threads * 2))

	g, gctx := errgroup.WithContext(ctx)
	resultsCh := make(chan batchResult, len(batches))

	// resultsCh is buffered to hold every batch, so each worker's send
	// below never blocks — that lets this dispatcher safely call g.Wait()
	// itself before closing the channel, with no risk of send-on-closed.
	go func() {
		defer close(resultsCh)
		for seq, b := range batches {
			select {
			case <-stop:
				g.Wait() // let already-dispatched batches finish
				return
			default:
			}
			if err := sem.Acquire(gctx, 1); err != nil {
				break
			}
			seq, b := seq, b
			g.Go(func() error {
				defer sem.Release(1)
				buf, local := s.runBatch(b)
				select {
				case resultsCh <- batchResult{seq: seq, buf: buf, stats: local}:
				case <-gctx.Done():
				}
				return nil
			})
		}
		g.Wait()
	}()

	var stats Stats
	completed := uint64(startIndex)
	lastOutputBytes, err := out.Seek(0, io.SeekEnd)
	if err != nil {
		return stats, errs.IO("seek output", err)
	}

	writer := &reorderWriter{out: out, nextSeq: 0, pending: make(map[int]batchResult), recSize: persist.RecordSize(s.Cfg.Format)}
	lastCheckpoint := completed
	lastProgress := time.Time{}
	start := time.Now()

	for r := range resultsCh {
		stats.add(r.stats)
		n, werr := writer.accept(r)
		if werr != nil {
			return stats, werr
		}
		completed += uint64(n)
		lastOutputBytes += int64(n) * int64(persist.RecordSize(s.Cfg.Format))

		if completed-lastCheckpoint >= uint64(s.Cfg.CheckpointEvery) {
			if err := out.Sync(); err != nil {
				return stats, errs.IO("sync output", err)
			}
			if err := s.writeCheckpoint(completed, uint64(lastOutputBytes)); err != nil {
				return stats, err
			}
			lastCheckpoint = completed
		}

		if !s.Cfg.Quiet && s.Cfg.OnProgress != nil && time.Since(lastProgress) >= 500*time.Millisecond {
			elapsed := time.Since(start).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(completed-uint64(startIndex)) / elapsed
			}
			eta := 0.0
			if rate > 0 {
				eta = float64(uint64(total)-completed) / rate
			}
			s.Cfg.OnProgress(completed, uint64(total), rate, eta, resumed)
			lastProgress = time.Now()
		}
	}

	if err := g.Wait(); err != nil {
		return stats, errs.Internal("batch worker pool", err)
	}

	if err := out.Sync(); err != nil {
		return stats, errs.IO("sync output", err)
	}
	if err := s.writeCheckpoint(completed, uint64(lastOutputBytes)); err != nil {
		return stats, err
	}
	if !s.Cfg.Quiet && s.Cfg.OnProgress != nil {
		s.Cfg.OnProgress(completed, uint64(total), 0, 0, resumed)
	}

	return stats, nil
}

// runBatch runs every pair in [b.lo, b.hi) with its own DiceStream, seeded
// from the batch's starting pair index so the stream is independent of
// which physical worker or thread count processes it.
func (s *Simulator) runBatch(b pairBatch) ([]byte, LocalStats) {
	roller := dice.NewWorkerStream(s.Cfg.MasterSeed, 0, b.lo)

	recSize := persist.RecordSize(s.Cfg.Format)
	buf := make([]byte, 0, (b.hi-b.emitFrom)*recSize)

	var local LocalStats
	nb := len(s.UnitsB)

	for p := b.lo; p < b.hi; p++ {
		i, j := p/nb, p%nb
		a, d := s.UnitsA[i], s.UnitsB[j]

		mr := runner.RunMatch(roller, s.Registry, s.Pool, a, d, s.Cfg.Game)

		if p < b.emitFrom {
			continue // replay only: keeps the dice stream aligned with an uninterrupted run
		}

		rec := persist.Record{
			AttackerID:     uint16(i),
			DefenderID:     uint16(j),
			AttackerWins:   uint16(mr.GamesWonA),
			DefenderWins:   uint16(mr.GamesWonB),
			WoundsDealtA:   mr.TotalWoundsA,
			WoundsDealtB:   mr.TotalWoundsB,
			ModelsKilledA:  mr.TotalKillsA,
			ModelsKilledB:  mr.TotalKillsB,
			RoundsHoldingA: mr.TotalHoldingA,
			RoundsHoldingB: mr.TotalHoldingB,
		}
		if mr.Draws > 0 {
			rec.Flags |= 1
		}
		buf = append(buf, persist.Encode(s.Cfg.Format, rec)...)

		local.AttackerWins += uint64(mr.GamesWonA)
		local.DefenderWins += uint64(mr.GamesWonB)
		local.Draws += uint64(mr.Draws)
		local.WoundsAB += uint64(mr.TotalWoundsA)
		local.WoundsBA += uint64(mr.TotalWoundsB)
		local.KillsAB += uint64(mr.TotalKillsA)
		local.KillsBA += uint64(mr.TotalKillsB)
		local.ObjectiveRoundsA += uint64(mr.TotalHoldingA)
		local.ObjectiveRoundsB += uint64(mr.TotalHoldingB)
		local.TotalRounds += uint64(mr.TotalRounds)
	}

	return buf, local
}

// planBatches lays out batches aligned to multiples of batchSize over the
// full [0, total) pair space — alignment never shifts with startIndex, so
// a given batch's dice seed (its lo) is the same whether or not this is a
// resumed run. Batches that finish entirely before startIndex are
// dropped; a batch straddling startIndex is kept with emitFrom set so its
// already-durable leading pairs are replayed but not re-emitted.
func planBatches(total, startIndex, batchSize int) []pairBatch {
	var batches []pairBatch
	for lo := 0; lo < total; lo += batchSize {
		hi := lo + batchSize
		if hi > total {
			hi = total
		}
		if hi <= startIndex {
			continue
		}
		emitFrom := lo
		if startIndex > emitFrom {
			emitFrom = startIndex
		}
		batches = append(batches, pairBatch{lo: lo, hi: hi, emitFrom: emitFrom})
	}
	return batches
}
