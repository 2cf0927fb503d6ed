// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams with github.com/mewkiz/flac.
//
// Demucs can write stems as FLAC (--flac); registering this decoder for the
// "flac" extension lets those stems load without conversion.
package flac
