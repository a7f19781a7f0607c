package persist

import "math"

func float64Bits(f float64) uint64 { return math.Float64bits(f) }

func bitsFloat64(b uint64) float64 { return math.Float64frombits(b) }
