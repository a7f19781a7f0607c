package chunkmanifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/jruiznavarro/battlesim/internal/errs"
)

// Save persists the manifest as zstd-compressed JSON, atomically (temp
// file plus rename) and under a file lock so concurrent chunk workers
// never observe a half-written manifest.
func Save(path string, m Manifest) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return errs.IO("lock chunk manifest", err)
	}
	defer lock.Unlock()

	raw, err := json.Marshal(m)
	if err != nil {
		return errs.Internal("marshal chunk manifest", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return errs.Internal("create zstd encoder", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(raw, nil)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return errs.IO("create manifest temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.IO("write chunk manifest", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.IO("close manifest temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.IO("rename chunk manifest into place", err)
	}
	return nil
}

// Load reads and decompresses a manifest previously written by Save.
func Load(path string) (Manifest, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return Manifest{}, errs.IO("lock chunk manifest", err)
	}
	defer lock.Unlock()

	compressed, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Manifest{}, errs.Internal("create zstd decoder", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return Manifest{}, errs.Checksum("decompress chunk manifest", err)
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, errs.Checksum("unmarshal chunk manifest", err)
	}
	return m, nil
}

// Assign marks chunk chunkID as in_progress and tagged to a fresh worker
// token — assigned_to is a uuid identifying the claiming worker.
func (m *Manifest) Assign(chunkID int) (string, error) {
	for i := range m.Chunks {
		if m.Chunks[i].ChunkID != chunkID {
			continue
		}
		token := uuid.NewString()
		m.Chunks[i].AssignedTo = token
		m.Chunks[i].State = StateInProgress
		return token, nil
	}
	return "", fmt.Errorf("chunkmanifest: no chunk with id %d", chunkID)
}

// Complete marks a chunk done.
func (m *Manifest) Complete(chunkID int) error {
	for i := range m.Chunks {
		if m.Chunks[i].ChunkID == chunkID {
			m.Chunks[i].State = StateDone
			return nil
		}
	}
	return fmt.Errorf("chunkmanifest: no chunk with id %d", chunkID)
}
