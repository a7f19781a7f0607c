package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jruiznavarro/battlesim/internal/errs"
)

// WriteCheckpointAtomic writes a checkpoint via temp-file-plus-rename so a
// crash mid-write never leaves a partially-written checkpoint on disk.
func WriteCheckpointAtomic(path string, c Checkpoint) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return errs.IO("create checkpoint temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(c.Encode()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.IO("write checkpoint", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.IO("sync checkpoint", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.IO("close checkpoint temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.IO("rename checkpoint into place", err)
	}
	return nil
}

// ReadCheckpoint loads and validates a checkpoint file. A missing file is
// reported via os.IsNotExist on the returned error; a present-but-invalid
// file (bad magic/CRC) returns a ChecksumError the caller should treat as
// "no valid checkpoint".
func ReadCheckpoint(path string) (Checkpoint, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Checkpoint{}, err
	}
	return DecodeCheckpoint(buf)
}

// TruncateToLength truncates path to exactly n bytes, the recovery step
// for a crash mid-append: the driver truncates any excess left by a
// partial record write before resuming.
func TruncateToLength(path string, n int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return errs.IO("open output for truncate", err)
	}
	defer f.Close()
	if err := f.Truncate(n); err != nil {
		return errs.IO(fmt.Sprintf("truncate output to %d bytes", n), err)
	}
	return nil
}
