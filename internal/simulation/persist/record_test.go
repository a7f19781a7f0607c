package persist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactRoundTrip(t *testing.T) {
	r := Record{AttackerID: 3, DefenderID: 7, AttackerWins: 2, DefenderWins: 1}
	buf := EncodeCompact(r)
	require.Len(t, buf, 8)
	require.Equal(t, r, DecodeCompact(buf))
}

func TestCompactExtendedRoundTrip(t *testing.T) {
	r := Record{
		AttackerID: 1, DefenderID: 2, AttackerWins: 3, DefenderWins: 0,
		WoundsDealtA: 1000, WoundsDealtB: 2000,
		ModelsKilledA: 12, ModelsKilledB: 8,
		RoundsHoldingA: 4, RoundsHoldingB: 2,
		Flags: 0xAB,
	}
	buf := EncodeCompactExtended(r)
	require.Len(t, buf, 16)
	require.Equal(t, r, DecodeCompactExtended(buf))
}

func TestCompactExtendedSaturatesInsteadOfWrapping(t *testing.T) {
	r := Record{
		WoundsDealtA: 1 << 20, WoundsDealtB: 1 << 20,
		ModelsKilledA: 9000, ModelsKilledB: 9000,
		RoundsHoldingA: 900, RoundsHoldingB: 900,
	}
	got := DecodeCompactExtended(EncodeCompactExtended(r))

	require.Equal(t, uint32(0xFFFF), got.WoundsDealtA)
	require.Equal(t, uint32(0xFFFF), got.WoundsDealtB)
	require.Equal(t, uint32(0xFF), got.ModelsKilledA)
	require.Equal(t, uint32(0xFF), got.ModelsKilledB)
	require.Equal(t, uint32(0xF), got.RoundsHoldingA)
	require.Equal(t, uint32(0xF), got.RoundsHoldingB)
}

func TestExtendedRoundTrip(t *testing.T) {
	r := Record{
		AttackerID: 5, DefenderID: 6, AttackerWins: 1, DefenderWins: 2,
		WoundsDealtA: 500000, WoundsDealtB: 600000,
		ModelsKilledA: 90000, ModelsKilledB: 80000,
	}
	buf := EncodeExtended(r)
	require.Len(t, buf, 24)
	require.Equal(t, r, DecodeExtended(buf))
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Version: 1, Format: FormatExtended, UnitsA: 40, UnitsB: 12}
	buf := h.Encode()
	require.Len(t, buf, headerSize)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, headerSize)
	copy(buf, "GARBAGE!")
	_, err := DecodeHeader(buf)
	require.Error(t, err)
}

func TestAggregatedRoundTrip(t *testing.T) {
	a := Aggregated{
		UnitID:              4,
		MatchesPlayed:       39,
		Wins:                20,
		Losses:              15,
		Draws:               4,
		MeanWoundsDealt:     12.5,
		VarianceWoundsDealt: 3.2,
		MeanWoundsTaken:     9.25,
		VarianceWoundsTaken: 2.1,
		HoldingHistogram:    [5]uint32{1, 2, 3, 4, 5},
		BestMatchupID:       7,
		WorstMatchupID:      11,
	}
	buf := a.Encode()
	require.Len(t, buf, AggregatedSize)
	require.Equal(t, a, DecodeAggregated(buf))
}

func TestCheckpointRoundTrip(t *testing.T) {
	c := Checkpoint{
		Version:     1,
		Format:      FormatCompact,
		UnitsA:      40,
		UnitsB:      40,
		Completed:   123456,
		OutputBytes: 987654,
		MasterSeed:  0xDEADBEEF,
	}
	buf := c.Encode()
	require.Len(t, buf, checkpointSize)

	got, err := DecodeCheckpoint(buf)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestCheckpointDetectsCorruption(t *testing.T) {
	c := Checkpoint{Version: 1, Format: FormatCompact, UnitsA: 1, UnitsB: 1}
	buf := c.Encode()
	buf[20] ^= 0xFF // corrupt a completed-count byte without touching the CRC

	_, err := DecodeCheckpoint(buf)
	require.Error(t, err)
}

func TestCheckpointMatches(t *testing.T) {
	c := Checkpoint{UnitsA: 10, UnitsB: 20, Format: FormatExtended}
	require.True(t, c.Matches(10, 20, FormatExtended))
	require.False(t, c.Matches(10, 20, FormatCompact))
	require.False(t, c.Matches(11, 20, FormatExtended))
}
