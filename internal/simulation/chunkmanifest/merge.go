package chunkmanifest

import (
	"fmt"
	"os"
	"sort"

	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/simulation/persist"
)

// ChunkPath resolves a chunk's own result file given its output directory.
type ChunkPath func(chunkID int) string

// MergeChunks concatenates every chunk's result file into destPath in
// pair-index order, and verifies every pair index in [0, UnitsA*UnitsB)
// appears exactly once across the inputs. Chunk states (all StateDone) and
// range coverage (contiguous, no gap or overlap) are checked before
// destPath is created; each chunk's format, record count and per-record
// pair indices are checked as that chunk is copied, so a failure there
// leaves destPath partially written. destPath gets a fresh file header
// followed by every record, ordered by pair index.
func MergeChunks(m Manifest, format persist.Format, path ChunkPath, destPath string) error {
	chunks := append([]Chunk{}, m.Chunks...)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Lo < chunks[j].Lo })

	total := m.UnitsA * m.UnitsB
	want := 0
	for _, c := range chunks {
		if c.State != StateDone {
			return errs.Input("merge_chunks", fmt.Errorf("chunk %d is %s, not done", c.ChunkID, c.State))
		}
		if c.Lo != want {
			return errs.Input("merge_chunks", fmt.Errorf("gap or overlap in chunk coverage at pair index %d (chunk %d starts at %d)", want, c.ChunkID, c.Lo))
		}
		want = c.Hi
	}
	if want != total {
		return errs.Input("merge_chunks", fmt.Errorf("chunks cover [0,%d) but catalog has %d pairs", want, total))
	}

	recSize := persist.RecordSize(format)
	nb := m.UnitsB

	out, err := os.Create(destPath)
	if err != nil {
		return errs.IO("create merged output", err)
	}
	defer out.Close()

	h := persist.Header{Version: 1, Format: format, UnitsA: uint32(m.UnitsA), UnitsB: uint32(m.UnitsB)}
	if _, err := out.Write(h.Encode()); err != nil {
		return errs.IO("write merged header", err)
	}

	for _, c := range chunks {
		data, err := os.ReadFile(path(c.ChunkID))
		if err != nil {
			return errs.IO("read chunk output", err)
		}

		ch, err := persist.DecodeHeader(data)
		if err != nil {
			return errs.Checksum("decode chunk header", err)
		}
		if ch.Format != format {
			return errs.Input("merge_chunks", fmt.Errorf("chunk %d uses format %d, expected %d", c.ChunkID, ch.Format, format))
		}

		body := data[20:]
		n := c.Hi - c.Lo
		if len(body) != n*recSize {
			return errs.Input("merge_chunks", fmt.Errorf("chunk %d has %d records, expected %d", c.ChunkID, len(body)/recSize, n))
		}

		for k := 0; k < n; k++ {
			rec := persist.Decode(format, body[k*recSize:(k+1)*recSize])
			p := c.Lo + k
			wantI, wantJ := uint16(p/nb), uint16(p%nb)
			if rec.AttackerID != wantI || rec.DefenderID != wantJ {
				return errs.Checksum("merge_chunks", fmt.Errorf("pair index %d: record has (%d,%d), expected (%d,%d)", p, rec.AttackerID, rec.DefenderID, wantI, wantJ))
			}
		}

		if _, err := out.Write(body); err != nil {
			return errs.IO("write merged record block", err)
		}
	}

	return out.Sync()
}
