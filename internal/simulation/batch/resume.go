package batch

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/simulation/persist"
)

var errEmptyCatalog = errors.New("unit catalog is empty")

// resumeState implements the resume precondition: fast-forward to the
// checkpointed completed index iff resume is requested and the
// checkpoint's catalog shape matches. A checksum/magic mismatch is
// treated as "no valid checkpoint", not a fatal error — the run falls
// back to starting fresh.
func (s *Simulator) resumeState(total int) (startIndex int, resumed bool, err error) {
	if !s.Cfg.Resume {
		return 0, false, nil
	}

	cp, rerr := persist.ReadCheckpoint(s.Cfg.CheckpointPath)
	if rerr != nil {
		if os.IsNotExist(rerr) {
			return 0, false, nil
		}
		log.Warn().Err(rerr).Str("checkpoint", s.Cfg.CheckpointPath).Msg("checkpoint invalid, starting fresh")
		return 0, false, nil
	}

	if !cp.Matches(uint32(len(s.UnitsA)), uint32(len(s.UnitsB)), s.Cfg.Format) {
		log.Warn().Msg("checkpoint catalog shape does not match this run, starting fresh")
		return 0, false, nil
	}

	if err := persist.TruncateToLength(s.Cfg.OutputPath, int64(cp.OutputBytes)); err != nil {
		return 0, false, err
	}

	log.Info().Uint64("completed", cp.Completed).Msg("resuming from checkpoint")
	return int(cp.Completed), true, nil
}

// openOutput opens the result file, writing a fresh header when this is
// not a resume.
func (s *Simulator) openOutput(resumed bool) (*os.File, error) {
	if resumed {
		f, err := os.OpenFile(s.Cfg.OutputPath, os.O_RDWR, 0o644)
		if err != nil {
			return nil, errs.IO("open output for resume", err)
		}
		return f, nil
	}

	f, err := os.OpenFile(s.Cfg.OutputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errs.IO("create output", err)
	}

	header := persist.Header{Version: 1, Format: s.Cfg.Format, UnitsA: uint32(len(s.UnitsA)), UnitsB: uint32(len(s.UnitsB))}
	if _, err := f.Write(header.Encode()); err != nil {
		f.Close()
		return nil, errs.IO("write output header", err)
	}
	return f, nil
}

// writeCheckpoint persists the driver's current progress atomically. It
// does not touch the output file: SimulateAll syncs the output before
// every call, so the recorded outputBytes are durable when the
// checkpoint names them.
func (s *Simulator) writeCheckpoint(completed, outputBytes uint64) error {
	cp := persist.Checkpoint{
		Version:     1,
		Format:      s.Cfg.Format,
		UnitsA:      uint32(len(s.UnitsA)),
		UnitsB:      uint32(len(s.UnitsB)),
		Completed:   completed,
		OutputBytes: outputBytes,
		MasterSeed:  s.Cfg.MasterSeed,
	}
	if err := persist.WriteCheckpointAtomic(s.Cfg.CheckpointPath, cp); err != nil {
		return err
	}
	log.Info().Uint64("completed", completed).Msg("checkpoint written")
	return nil
}
