// SPDX-License-Identifier: EPL-2.0

// Package playback drives a device through one playback session at a time
// and reports progress.
//
// A Controller moves between Idle, Playing and Stopped. Start renders the
// mix to a temporary WAV, hands it to the device and polls the device every
// 50ms by default. While the device plays, the position reported to
// OnProgress is the wall-clock time since Start clamped to the mix length.
// When the device runs dry the session is released, the position is
// reported as the full duration and OnEnded fires exactly once.
//
// Devices cannot seek. Restart, and any seek built on it, starts over from
// position 0.
package playback
