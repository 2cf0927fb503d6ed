// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("no decoder registered for format")
	ErrDecode         = errors.New("decode failed")
	// ErrNoProgress is returned by ReadAll when a source keeps returning
	// zero samples without reporting io.EOF.
	ErrNoProgress    = errors.New("source stopped producing samples")
	ErrInvalidFormat = errors.New("invalid sample rate or channel count")
)
