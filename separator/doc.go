// SPDX-License-Identifier: EPL-2.0

// Package separator runs an external source separation tool.
//
// Two backends are supported: spleeter (4stems by default) and demucs. Both
// leave vocals, drums, bass and other under <outputDir>/<base>/, ready for
// stems.Register. A lock file in outputDir keeps two separations from
// writing the same directory.
package separator
