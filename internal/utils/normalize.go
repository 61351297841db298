package utils

import "math"

// RankList returns 1-based positional ranks for an already ordered result,
// saturating at the uint16 limit of the wire format.
func RankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}
