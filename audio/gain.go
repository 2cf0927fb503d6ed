// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// DBToGain converts a decibel offset to a linear amplitude factor,
// 10^(db/20). 0 dB is unity, -6 dB is roughly one half.
func DBToGain(db float64) float32 {
	return float32(math.Pow(10, db/20))
}

// GainToDB is the inverse of DBToGain. A non-positive gain maps to -Inf.
func GainToDB(gain float32) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(gain))
}
