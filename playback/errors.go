// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	// ErrPlaybackDevice is returned when the device cannot begin playback.
	// The controller is left in the state it was in.
	ErrPlaybackDevice    = errors.New("playback device error")
	ErrInvalidTransition = errors.New("invalid playback state transition")
	ErrEmptyBuffer       = errors.New("nothing to play")
)
