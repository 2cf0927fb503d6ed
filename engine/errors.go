// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrNoStems     = errors.New("no stems loaded")
	ErrNoSeparator = errors.New("no separator configured")
	ErrClosed      = errors.New("engine closed")
)
