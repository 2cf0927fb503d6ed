// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// Samples come straight out of the decoder as float32, so no integer
// conversion happens here. Reads are trimmed to whole frames.
package vorbis
