// SPDX-License-Identifier: EPL-2.0

// Package stems locates and validates the files a separator leaves behind.
//
// A separated recording lives at <outputDir>/<baseName>/<stem>.<ext>.
// Register checks that every stem of the vocabulary is present and that all
// of them share one sample rate and channel count; the resulting Set is
// read-only and hands out decoded sources on demand.
package stems
