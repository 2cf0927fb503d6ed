// SPDX-License-Identifier: EPL-2.0

package playback

// Status is the controller state.
type Status int

const (
	Idle Status = iota
	Playing
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
