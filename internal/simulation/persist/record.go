package persist

import "encoding/binary"

// Record is the in-memory representation of one matchup's result, at full
// precision; codecs below narrow it to whichever on-disk Format is active.
type Record struct {
	AttackerID      uint16
	DefenderID      uint16
	AttackerWins    uint16
	DefenderWins    uint16
	WoundsDealtA    uint32
	WoundsDealtB    uint32
	ModelsKilledA   uint32
	ModelsKilledB   uint32
	RoundsHoldingA  uint32
	RoundsHoldingB  uint32
	Flags           uint8
}

// EncodeCompact writes the 8-byte Compact record.
func EncodeCompact(r Record) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], r.AttackerID)
	binary.LittleEndian.PutUint16(buf[2:4], r.DefenderID)
	binary.LittleEndian.PutUint16(buf[4:6], r.AttackerWins)
	binary.LittleEndian.PutUint16(buf[6:8], r.DefenderWins)
	return buf
}

// DecodeCompact parses an 8-byte Compact record.
func DecodeCompact(buf []byte) Record {
	return Record{
		AttackerID:   binary.LittleEndian.Uint16(buf[0:2]),
		DefenderID:   binary.LittleEndian.Uint16(buf[2:4]),
		AttackerWins: binary.LittleEndian.Uint16(buf[4:6]),
		DefenderWins: binary.LittleEndian.Uint16(buf[6:8]),
	}
}

// saturate clamps v to the n-bit unsigned range instead of letting a packed
// field silently wrap: a clamped stat is visibly pegged at its ceiling, a
// wrapped one reads as an arbitrary wrong number.
func saturate(v uint32, bits uint) uint32 {
	max := uint32(1)<<bits - 1
	if v > max {
		return max
	}
	return v
}

// EncodeCompactExtended writes the 16-byte CompactExtended record: Compact
// plus two packed u32 fields. ModelsKilled (8 bits/side) and RoundsHolding
// (4 bits/side) saturate rather than wrap when a high-GamesPerMatch match
// accumulates more than the packed field can hold, the same precision
// ceiling documented for CompactExtended's draw bit in
// internal/simulation/aggregate.Reduce.
func EncodeCompactExtended(r Record) []byte {
	buf := make([]byte, 16)
	copy(buf[0:8], EncodeCompact(r))

	wounds := saturate(r.WoundsDealtA, 16) | (saturate(r.WoundsDealtB, 16) << 16)
	binary.LittleEndian.PutUint32(buf[8:12], wounds)

	packed := saturate(r.ModelsKilledA, 8) |
		(saturate(r.ModelsKilledB, 8) << 8) |
		(saturate(r.RoundsHoldingA, 4) << 16) |
		(saturate(r.RoundsHoldingB, 4) << 20) |
		(uint32(r.Flags) << 24)
	binary.LittleEndian.PutUint32(buf[12:16], packed)
	return buf
}

// DecodeCompactExtended parses a 16-byte CompactExtended record.
func DecodeCompactExtended(buf []byte) Record {
	r := DecodeCompact(buf[0:8])

	wounds := binary.LittleEndian.Uint32(buf[8:12])
	r.WoundsDealtA = wounds & 0xFFFF
	r.WoundsDealtB = (wounds >> 16) & 0xFFFF

	packed := binary.LittleEndian.Uint32(buf[12:16])
	r.ModelsKilledA = packed & 0xFF
	r.ModelsKilledB = (packed >> 8) & 0xFF
	r.RoundsHoldingA = (packed >> 16) & 0xF
	r.RoundsHoldingB = (packed >> 20) & 0xF
	r.Flags = uint8((packed >> 24) & 0xFF)
	return r
}

// EncodeExtended writes the 24-byte Extended record: full-precision u32
// fields for every statistic.
func EncodeExtended(r Record) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint16(buf[0:2], r.AttackerID)
	binary.LittleEndian.PutUint16(buf[2:4], r.DefenderID)
	binary.LittleEndian.PutUint16(buf[4:6], r.AttackerWins)
	binary.LittleEndian.PutUint16(buf[6:8], r.DefenderWins)
	binary.LittleEndian.PutUint32(buf[8:12], r.WoundsDealtA)
	binary.LittleEndian.PutUint32(buf[12:16], r.WoundsDealtB)
	binary.LittleEndian.PutUint32(buf[16:20], r.ModelsKilledA)
	binary.LittleEndian.PutUint32(buf[20:24], r.ModelsKilledB)
	return buf
}

// DecodeExtended parses a 24-byte Extended record. RoundsHolding and Flags
// are not carried at this precision (only CompactExtended packs them);
// callers needing them should use CompactExtended or the source
// MatchResult directly.
func DecodeExtended(buf []byte) Record {
	return Record{
		AttackerID:    binary.LittleEndian.Uint16(buf[0:2]),
		DefenderID:    binary.LittleEndian.Uint16(buf[2:4]),
		AttackerWins:  binary.LittleEndian.Uint16(buf[4:6]),
		DefenderWins:  binary.LittleEndian.Uint16(buf[6:8]),
		WoundsDealtA:  binary.LittleEndian.Uint32(buf[8:12]),
		WoundsDealtB:  binary.LittleEndian.Uint32(buf[12:16]),
		ModelsKilledA: binary.LittleEndian.Uint32(buf[16:20]),
		ModelsKilledB: binary.LittleEndian.Uint32(buf[20:24]),
	}
}

// Encode dispatches to the codec matching f.
func Encode(f Format, r Record) []byte {
	switch f {
	case FormatCompact:
		return EncodeCompact(r)
	case FormatCompactExtended:
		return EncodeCompactExtended(r)
	case FormatExtended:
		return EncodeExtended(r)
	default:
		return nil
	}
}

// Decode dispatches to the codec matching f.
func Decode(f Format, buf []byte) Record {
	switch f {
	case FormatCompact:
		return DecodeCompact(buf)
	case FormatCompactExtended:
		return DecodeCompactExtended(buf)
	case FormatExtended:
		return DecodeExtended(buf)
	default:
		return Record{}
	}
}
