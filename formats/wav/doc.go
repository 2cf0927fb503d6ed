// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE files.
//
// Decoding goes through github.com/go-audio/wav, so files with extra chunks
// (LIST, fact, bext) and 16, 24 or 32-bit integer PCM are accepted:
//
//	src, err := wav.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// Encoding writes canonical 44-byte-header 16-bit PCM. WriteBuffer converts
// a normalized float buffer, clipping anything outside [-1, 1]:
//
//	err := wav.WriteBuffer(file, mixed)
//
// The playback controller uses WriteBuffer to render a mix to a temporary
// file before handing it to a device.
package wav
