package face

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(math.Min(v, hi), lo)
}

// Remap maps [lo, hi] onto [0, 1], clamping outside the range.
func Remap(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (Clamp(v, lo, hi) - lo) / (hi - lo)
}

// RangeTransform linearly maps [inA, inB] onto [outA, outB]. Inputs below
// inA give outA and inputs above inB give outB. inA < inB is assumed.
func RangeTransform(inA, inB, outA, outB, v float64) float64 {
	if v < inA {
		return outA
	}
	if v > inB {
		return outB
	}
	return (v-inA)/(inB-inA)*(outB-outA) + outA
}

// safeAsin returns asin(num/den) with the ratio clamped to [-1, 1].
// A zero denominator yields 0.
func safeAsin(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return math.Asin(Clamp(num/den, -1, 1))
}
