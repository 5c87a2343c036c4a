package codec

import "math"

func bitsToFloat(bits uint64) float64 {
	return math.Float64frombits(bits)
}
