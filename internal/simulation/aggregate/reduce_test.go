package aggregate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jruiznavarro/battlesim/internal/simulation/persist"
)

func writeResultFile(t *testing.T, path string, format persist.Format, n int, recs map[[2]int]persist.Record) {
	t.Helper()
	h := persist.Header{Version: 1, Format: format, UnitsA: uint32(n), UnitsB: uint32(n)}
	buf := h.Encode()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rec := recs[[2]int{i, j}]
			rec.AttackerID, rec.DefenderID = uint16(i), uint16(j)
			buf = append(buf, persist.Encode(format, rec)...)
		}
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestReduceSumsMatchesPlayedAcrossBothRoles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.bin")

	recs := map[[2]int]persist.Record{
		{0, 1}: {AttackerWins: 3, DefenderWins: 1, WoundsDealtA: 10, WoundsDealtB: 4, RoundsHoldingA: 2, RoundsHoldingB: 0},
		{1, 0}: {AttackerWins: 2, DefenderWins: 2, WoundsDealtA: 6, WoundsDealtB: 8, RoundsHoldingA: 1, RoundsHoldingB: 1},
		{0, 0}: {AttackerWins: 1, DefenderWins: 1, WoundsDealtA: 3, WoundsDealtB: 3},
		{1, 1}: {AttackerWins: 1, DefenderWins: 1, WoundsDealtA: 5, WoundsDealtB: 5},
	}
	writeResultFile(t, path, persist.FormatCompactExtended, 2, recs)

	rows, err := Reduce(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Unit 0 appears as attacker in (0,0),(0,1) and as defender in (0,0),(1,0): 4 matches.
	require.Equal(t, uint32(4), rows[0].MatchesPlayed)
	// wins: attacker-role (0,0)->1, (0,1)->3; defender-role (0,0)->1, (1,0) defender wins=2.
	require.Equal(t, uint32(1+3+1+2), rows[0].Wins)
}

func TestReduceWoundsMeanMatchesHandComputation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.bin")

	recs := map[[2]int]persist.Record{
		{0, 1}: {WoundsDealtA: 10, WoundsDealtB: 2},
		{1, 0}: {WoundsDealtA: 4, WoundsDealtB: 6},
		{0, 0}: {},
		{1, 1}: {},
	}
	writeResultFile(t, path, persist.FormatCompactExtended, 2, recs)

	rows, err := Reduce(path)
	require.NoError(t, err)

	// Unit 0's wounds-dealt samples: as attacker in (0,1) -> 10, as attacker in (0,0) -> 0,
	// as defender in (1,0) -> 6, as defender in (0,0) -> 0. Mean = (10+0+6+0)/4 = 4.
	require.InDelta(t, 4.0, rows[0].MeanWoundsDealt, 1e-9)
}

func TestReduceRejectsNonSquareCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.bin")

	h := persist.Header{Version: 1, Format: persist.FormatCompact, UnitsA: 2, UnitsB: 3}
	require.NoError(t, os.WriteFile(path, h.Encode(), 0o644))

	_, err := Reduce(path)
	require.Error(t, err)
}

func TestWriteAggregatedFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agg.bin")

	rows := []persist.Aggregated{
		{UnitID: 0, MatchesPlayed: 4, Wins: 3, Losses: 1, MeanWoundsDealt: 4.5},
		{UnitID: 1, MatchesPlayed: 4, Wins: 1, Losses: 3, MeanWoundsDealt: 2.0},
	}
	require.NoError(t, WriteAggregatedFile(path, 2, 2, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	h, err := persist.DecodeHeader(data)
	require.NoError(t, err)
	require.Equal(t, persist.FormatAggregated, h.Format)

	body := data[20:]
	require.Equal(t, 2*persist.AggregatedSize, len(body))
	got0 := persist.DecodeAggregated(body[:persist.AggregatedSize])
	require.Equal(t, rows[0], got0)
}
