// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III streams with
// github.com/hajimehoshi/go-mp3.
//
// The decoder always produces interleaved stereo at the stream's sample
// rate; mono files are upmixed by go-mp3 itself. Stems separated to mp3
// therefore always register as two-channel.
package mp3
