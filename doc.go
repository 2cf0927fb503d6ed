// SPDX-License-Identifier: EPL-2.0

// Package stemdeck mixes separated stems of a recording and plays the result.
//
// A recording is split by an external tool (package separator) into stems
// such as vocals, drums, bass and other. Package stems registers the files,
// package mixer renders any subset with per-stem gain into one buffer using
// saturating addition, and package playback plays that buffer while
// reporting progress. Package engine puts them together.
//
// # Quick Start
//
// Render a mix of stems separated earlier to a WAV file:
//
//	set, _ := stems.Register("song", "/tmp/stems")
//	sel, _ := mixer.ParseSelection("vocals=0,bass=-6")
//	out, _ := os.Create("mix.wav")
//	err := stemdeck.MixToWAV(ctx, set, sel, out)
//
// Or collect the mix as 16-bit mono PCM at a given rate, for speech tools
// or telephony:
//
//	pcm16, rate, err := stemdeck.MixToMono16(ctx, set, sel, 8000)
//
// # Supported Formats
//
// Stems are decoded by extension:
//   - WAV (PCM 16-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 16-bit) via formats/aiff
//   - FLAC via formats/flac
//
// # Playback
//
// Output devices live under package device: null, file, speaker (oto),
// miniaudio and pulse. None of them can seek, so a seek restarts the mix
// from the beginning.
package stemdeck
