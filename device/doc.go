// SPDX-License-Identifier: EPL-2.0

// Package device defines the playback device capability and a registry of
// output devices.
//
// A Device takes an audio.Source and starts playing it on its own thread;
// the returned Handle reports whether it is still playing and can stop it.
// Devices are created by name:
//
//	dev, err := device.Create(device.Settings{Name: "null"})
//
// This package registers "null" (silent, paced by the wall clock) and
// "file" (writes a WAV). Sound card backends live in subpackages and
// register themselves when imported:
//
//	import _ "github.com/ik5/stemdeck/device/speaker"
package device
