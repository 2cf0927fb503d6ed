// SPDX-License-Identifier: EPL-2.0

// Package mixer combines a selection of stems into a single waveform.
//
//	sel, _ := mixer.ParseSelection("vocals=0,bass=-6")
//	buf, err := mixer.Mix(ctx, set, sel)
//
// The whole mix is computed before it is returned; there is no streaming
// mode. Sums never leave [-1, 1]: each addition clamps, so very large gains
// clip instead of wrapping.
package mixer
