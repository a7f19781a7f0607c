// Package aggregate implements the streaming reduce pass:
// turning a Compact/CompactExtended/Extended result file into one
// Aggregated record per catalog unit. Reading a file written by the batch
// simulator and reducing it here must reproduce the same numbers a direct
// format=Aggregated run would have recorded.
package aggregate

import (
	"fmt"
	"os"

	"github.com/jruiznavarro/battlesim/internal/errs"
	"github.com/jruiznavarro/battlesim/internal/simulation/persist"
)

// unitAccum is the running reduction state for one catalog unit, combining
// its appearances as both attacker and defender across the pair matrix.
type unitAccum struct {
	matchesPlayed, wins, losses, draws uint32

	woundsDealtSum, woundsDealtSumSq float64
	woundsTakenSum, woundsTakenSumSq float64
	samples                          int

	holding [5]uint32

	haveBest, haveWorst bool
	bestID, worstID     uint32
	bestNet, worstNet   int64 // wounds dealt minus wounds taken, for the matchup
}

func (u *unitAccum) observe(opponent uint32, wins, losses uint32, drew bool, woundsDealt, woundsTaken, holding uint32) {
	u.matchesPlayed++
	u.wins += wins
	u.losses += losses
	if drew {
		u.draws++
	}

	u.woundsDealtSum += float64(woundsDealt)
	u.woundsDealtSumSq += float64(woundsDealt) * float64(woundsDealt)
	u.woundsTakenSum += float64(woundsTaken)
	u.woundsTakenSumSq += float64(woundsTaken) * float64(woundsTaken)
	u.samples++

	bucket := holding
	if bucket > 4 {
		bucket = 4
	}
	u.holding[bucket]++

	net := int64(woundsDealt) - int64(woundsTaken)
	if !u.haveBest || net > u.bestNet {
		u.haveBest, u.bestNet, u.bestID = true, net, opponent
	}
	if !u.haveWorst || net < u.worstNet {
		u.haveWorst, u.worstNet, u.worstID = true, net, opponent
	}
}

func (u *unitAccum) finalize(unitID uint32) persist.Aggregated {
	a := persist.Aggregated{
		UnitID:        unitID,
		MatchesPlayed: u.matchesPlayed,
		Wins:          u.wins,
		Losses:        u.losses,
		Draws:         u.draws,
		HoldingHistogram: u.holding,
		BestMatchupID: u.bestID,
		WorstMatchupID: u.worstID,
	}
	if u.samples > 0 {
		n := float64(u.samples)
		a.MeanWoundsDealt = u.woundsDealtSum / n
		a.MeanWoundsTaken = u.woundsTakenSum / n
		a.VarianceWoundsDealt = u.woundsDealtSumSq/n - a.MeanWoundsDealt*a.MeanWoundsDealt
		a.VarianceWoundsTaken = u.woundsTakenSumSq/n - a.MeanWoundsTaken*a.MeanWoundsTaken
	}
	return a
}

// Reduce streams the result file at path (written for a square N×N
// catalog, UnitsA == UnitsB) and returns one Aggregated record per catalog
// unit, indexed by unit id. Draws are reconstructed from the per-record
// draw flag. No format carries an exact draw count: CompactExtended packs
// one bit signalling "at least one draw occurred in this matchup", and
// Compact and Extended carry no draw flag at all, so Draws is zero for
// them. For CompactExtended, Draws undercounts matchups run with
// GamesPerMatch > 1 where more than one game drew; this is a precision
// ceiling of the on-disk formats, not a bug in the reduce pass.
func Reduce(path string) ([]persist.Aggregated, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO("read result file for aggregation", err)
	}

	h, err := persist.DecodeHeader(data)
	if err != nil {
		return nil, errs.Checksum("decode result header", err)
	}
	if h.Format == persist.FormatAggregated {
		return nil, errs.Input("aggregate_reduce", fmt.Errorf("input file is already in Aggregated format"))
	}
	if h.UnitsA != h.UnitsB {
		return nil, errs.Input("aggregate_reduce", fmt.Errorf("reduce requires a square N×N catalog, got %dx%d", h.UnitsA, h.UnitsB))
	}

	n := int(h.UnitsA)
	recSize := persist.RecordSize(h.Format)
	body := data[20:]
	if recSize == 0 || len(body)%recSize != 0 {
		return nil, errs.Checksum("aggregate_reduce", fmt.Errorf("result body length %d is not a multiple of record size %d", len(body), recSize))
	}

	accs := make([]unitAccum, n)
	count := len(body) / recSize
	nb := n

	for k := 0; k < count; k++ {
		rec := persist.Decode(h.Format, body[k*recSize:(k+1)*recSize])
		i, j := int(rec.AttackerID), int(rec.DefenderID)
		if i >= n || j >= nb {
			return nil, errs.Checksum("aggregate_reduce", fmt.Errorf("record %d references unit outside catalog bounds", k))
		}
		drew := rec.Flags&1 != 0

		accs[i].observe(uint32(j), uint32(rec.AttackerWins), uint32(rec.DefenderWins), drew, rec.WoundsDealtA, rec.WoundsDealtB, rec.RoundsHoldingA)
		accs[j].observe(uint32(i), uint32(rec.DefenderWins), uint32(rec.AttackerWins), drew, rec.WoundsDealtB, rec.WoundsDealtA, rec.RoundsHoldingB)
	}

	out := make([]persist.Aggregated, n)
	for i := range accs {
		out[i] = accs[i].finalize(uint32(i))
	}
	return out, nil
}

// WriteAggregatedFile encodes rows as a full Aggregated-format result file
// (file header plus one 256-byte record per unit, in unit-id order).
func WriteAggregatedFile(path string, unitsA, unitsB int, rows []persist.Aggregated) error {
	h := persist.Header{Version: 1, Format: persist.FormatAggregated, UnitsA: uint32(unitsA), UnitsB: uint32(unitsB)}
	buf := h.Encode()
	for _, row := range rows {
		buf = append(buf, row.Encode()...)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errs.IO("write aggregated file", err)
	}
	return nil
}
