// SPDX-License-Identifier: EPL-2.0

package separator

import "errors"

var (
	ErrUnknownBackend   = errors.New("unknown separator backend")
	ErrSeparationFailed = errors.New("stem separation failed")
	// ErrBusy is returned when another separation holds the output directory.
	ErrBusy = errors.New("output directory is locked by another separation")
)
