// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	// ErrEmptySelection means no stem is selected: there is nothing to play.
	// It is an expected condition, not a fault.
	ErrEmptySelection   = errors.New("no stems selected")
	ErrInvalidSelection = errors.New("invalid stem selection")
)
