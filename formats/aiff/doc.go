// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes PCM AIFF stems through github.com/go-audio/aiff.
//
//	src, err := aiff.Decoder{}.Decode(file)
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory
// first. 8, 16, 24 and 32-bit integer samples are accepted; anything else
// fails with ErrUnsupportedBitDepth.
package aiff
