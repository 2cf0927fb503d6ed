// SPDX-License-Identifier: EPL-2.0

package stems

import "errors"

var (
	// ErrMissingStemFile is returned when an expected stem file is absent or
	// unreadable.
	ErrMissingStemFile = errors.New("missing stem file")
	// ErrInvalidAudioFormat is returned when a stem cannot be decoded or its
	// format disagrees with the other stems of the set.
	ErrInvalidAudioFormat = errors.New("invalid stem audio format")
	ErrInvalidName        = errors.New("invalid stem or base name")
)
