package persist

import "encoding/binary"

// AggregatedSize is the fixed per-unit record size.
const AggregatedSize = 256

// Aggregated is one unit's rollup across every matchup it played: matches
// played, win/loss/draw counts, wound statistics, a per-round holding
// histogram, and the best/worst matchup opponent ids.
type Aggregated struct {
	UnitID             uint32
	MatchesPlayed      uint32
	Wins               uint32
	Losses             uint32
	Draws              uint32
	MeanWoundsDealt    float64
	VarianceWoundsDealt float64
	MeanWoundsTaken    float64
	VarianceWoundsTaken float64
	HoldingHistogram   [5]uint32 // rounds_holding in [0,4]
	BestMatchupID      uint32
	WorstMatchupID     uint32
}

// Encode serializes an Aggregated record to exactly AggregatedSize bytes.
// Unused trailing bytes are left zero, reserved for future fields.
func (a Aggregated) Encode() []byte {
	buf := make([]byte, AggregatedSize)
	binary.LittleEndian.PutUint32(buf[0:4], a.UnitID)
	binary.LittleEndian.PutUint32(buf[4:8], a.MatchesPlayed)
	binary.LittleEndian.PutUint32(buf[8:12], a.Wins)
	binary.LittleEndian.PutUint32(buf[12:16], a.Losses)
	binary.LittleEndian.PutUint32(buf[16:20], a.Draws)
	binary.LittleEndian.PutUint64(buf[20:28], float64Bits(a.MeanWoundsDealt))
	binary.LittleEndian.PutUint64(buf[28:36], float64Bits(a.VarianceWoundsDealt))
	binary.LittleEndian.PutUint64(buf[36:44], float64Bits(a.MeanWoundsTaken))
	binary.LittleEndian.PutUint64(buf[44:52], float64Bits(a.VarianceWoundsTaken))
	for i, n := range a.HoldingHistogram {
		binary.LittleEndian.PutUint32(buf[52+i*4:56+i*4], n)
	}
	binary.LittleEndian.PutUint32(buf[72:76], a.BestMatchupID)
	binary.LittleEndian.PutUint32(buf[76:80], a.WorstMatchupID)
	return buf
}

// DecodeAggregated parses a 256-byte Aggregated record.
func DecodeAggregated(buf []byte) Aggregated {
	var a Aggregated
	a.UnitID = binary.LittleEndian.Uint32(buf[0:4])
	a.MatchesPlayed = binary.LittleEndian.Uint32(buf[4:8])
	a.Wins = binary.LittleEndian.Uint32(buf[8:12])
	a.Losses = binary.LittleEndian.Uint32(buf[12:16])
	a.Draws = binary.LittleEndian.Uint32(buf[16:20])
	a.MeanWoundsDealt = bitsFloat64(binary.LittleEndian.Uint64(buf[20:28]))
	a.VarianceWoundsDealt = bitsFloat64(binary.LittleEndian.Uint64(buf[28:36]))
	a.MeanWoundsTaken = bitsFloat64(binary.LittleEndian.Uint64(buf[36:44]))
	a.VarianceWoundsTaken = bitsFloat64(binary.LittleEndian.Uint64(buf[44:52]))
	for i := range a.HoldingHistogram {
		a.HoldingHistogram[i] = binary.LittleEndian.Uint32(buf[52+i*4 : 56+i*4])
	}
	a.BestMatchupID = binary.LittleEndian.Uint32(buf[72:76])
	a.WorstMatchupID = binary.LittleEndian.Uint32(buf[76:80])
	return a
}
