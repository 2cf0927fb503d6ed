// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp limits x to [-1, 1], the representable range of a normalized sample.
// NaN maps to silence.
func Clamp(x float32) float32 {
	if x != x {
		return 0
	}
	if x > 1 {
		return 1
	} else if x < -1 {
		return -1
	}
	return x
}

// SaturatingAdd returns a+b clamped to [-1, 1]. Accumulating a mix with it
// never wraps: the result sticks at full scale instead.
func SaturatingAdd(a, b float32) float32 {
	return Clamp(a + b)
}

// ClampProduct returns s*gain clamped to [-1, 1]. The product is taken in
// float64 so a gain near the float32 limit cannot overflow to Inf, and a
// silent sample stays silent whatever the gain.
func ClampProduct(s, gain float32) float32 {
	p := float64(s) * float64(gain)
	if p != p {
		return 0
	}
	return float32(max(-1, min(1, p)))
}

func Float32ToInt16(x float32) int16 {
	// Use 32767 for positive max to avoid overflow
	return int16(Clamp(x) * 32767.0)
}

func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// IntToFloat32 normalizes a signed PCM integer of the given bit depth.
// Unknown depths are treated as 16-bit.
func IntToFloat32(v int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(v) / 128.0
	case 24:
		return float32(v) / 8388608.0
	case 32:
		return float32(v) / 2147483648.0
	default:
		return float32(v) / 32768.0
	}
}
