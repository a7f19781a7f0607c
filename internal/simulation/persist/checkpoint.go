package persist

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/jruiznavarro/battlesim/internal/errs"
)

// Checkpoint is the 64-byte fixed layout the batch simulator writes
// atomically at every checkpoint_interval.
type Checkpoint struct {
	Version      uint16
	Format       Format
	UnitsA       uint32
	UnitsB       uint32
	Completed    uint64
	OutputBytes  uint64
	MasterSeed   uint64
}

// Encode serializes the checkpoint to exactly checkpointSize bytes,
// computing the CRC32 of the preceding fields and zeroing the reserved
// tail.
func (c Checkpoint) Encode() []byte {
	buf := make([]byte, checkpointSize)
	copy(buf[0:8], checkpointMagic)
	binary.LittleEndian.PutUint16(buf[8:10], c.Version)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(c.Format))
	binary.LittleEndian.PutUint32(buf[12:16], c.UnitsA)
	binary.LittleEndian.PutUint32(buf[16:20], c.UnitsB)
	binary.LittleEndian.PutUint64(buf[20:28], c.Completed)
	binary.LittleEndian.PutUint64(buf[28:36], c.OutputBytes)
	binary.LittleEndian.PutUint64(buf[36:44], c.MasterSeed)

	sum := crc32.ChecksumIEEE(buf[0:44])
	binary.LittleEndian.PutUint32(buf[44:48], sum)
	// buf[48:64] stays zero: reserved.
	return buf
}

// DecodeCheckpoint parses and validates a 64-byte checkpoint. A magic or
// CRC mismatch is a ChecksumError: callers should treat this as
// "no valid checkpoint" and start fresh, not as a fatal failure.
func DecodeCheckpoint(buf []byte) (Checkpoint, error) {
	if len(buf) < checkpointSize {
		return Checkpoint{}, errs.Checksum("decode checkpoint", fmt.Errorf("persist: short checkpoint (%d bytes)", len(buf)))
	}
	if string(buf[0:8]) != checkpointMagic {
		return Checkpoint{}, errs.Checksum("decode checkpoint", fmt.Errorf("persist: bad checkpoint magic %q", buf[0:8]))
	}

	wantSum := binary.LittleEndian.Uint32(buf[44:48])
	gotSum := crc32.ChecksumIEEE(buf[0:44])
	if wantSum != gotSum {
		return Checkpoint{}, errs.Checksum("decode checkpoint", fmt.Errorf("persist: checkpoint crc mismatch (want %08x, got %08x)", wantSum, gotSum))
	}

	return Checkpoint{
		Version:     binary.LittleEndian.Uint16(buf[8:10]),
		Format:      Format(binary.LittleEndian.Uint16(buf[10:12])),
		UnitsA:      binary.LittleEndian.Uint32(buf[12:16]),
		UnitsB:      binary.LittleEndian.Uint32(buf[16:20]),
		Completed:   binary.LittleEndian.Uint64(buf[20:28]),
		OutputBytes: binary.LittleEndian.Uint64(buf[28:36]),
		MasterSeed:  binary.LittleEndian.Uint64(buf[36:44]),
	}, nil
}

// Matches reports whether this checkpoint's catalog shape matches the
// current run, the precondition for a valid resume.
func (c Checkpoint) Matches(unitsA, unitsB uint32, format Format) bool {
	return c.UnitsA == unitsA && c.UnitsB == unitsB && c.Format == format
}
