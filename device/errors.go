// SPDX-License-Identifier: EPL-2.0

package device

import "github.com/pkg/errors"

var (
	// ErrDeviceNotSupported is returned when the requested device is not supported
	ErrDeviceNotSupported = errors.New("device not supported")
	// ErrUnsupportedFormat is returned when a device cannot take the source layout
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrClosed            = errors.New("device closed")
)
