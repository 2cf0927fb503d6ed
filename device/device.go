// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ik5/stemdeck/audio"
)

// Kind is the class of output a device writes to.
type Kind int

const (
	KindNone Kind = iota
	KindSoundCard
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindSoundCard:
		return "soundcard"
	case KindFile:
		return "file"
	default:
		return "none"
	}
}

// Format is the layout a device wants. Zero fields accept whatever the
// source provides.
type Format struct {
	SampleRate int
	Channels   int
}

// Device plays sources.
type Device interface {
	Name() string
	Kind() Kind
	Format() Format
	// Play starts playing src and returns immediately. The device owns src
	// from then on and closes it when playback ends or is stopped.
	Play(ctx context.Context, src audio.Source) (Handle, error)
	Close() error
}

// Handle controls one running playback.
type Handle interface {
	// IsPlaying reports whether audio is still being produced.
	IsPlaying() bool
	// Stop halts playback immediately. Calling it more than once is safe.
	Stop() error
}

// Settings is the settings for configuring an output device
type Settings struct {
	Name       string
	SampleRate int
	Channels   int
	Filepath   string
	Latency    time.Duration
	Logger     *zap.Logger
}

func (s Settings) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// CreateFunc builds a device from settings.
type CreateFunc func(settings Settings) (Device, error)

type deviceDetails struct {
	create CreateFunc
	kind   Kind
}

// Map is the mapping of device name to device details
var Map = make(map[string]deviceDetails)

// Register makes a device available to Create under name. Backends call it
// from init.
func Register(name string, kind Kind, create CreateFunc) {
	Map[name] = deviceDetails{create: create, kind: kind}
}

// Names lists the registered devices.
func Names() []string {
	out := make([]string, 0, len(Map))
	for name := range Map {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Create creates an output device based on the provided settings
func Create(settings Settings) (Device, error) {
	if details, ok := Map[settings.Name]; ok && details.create != nil {
		dev, err := details.create(settings)
		if err != nil {
			return nil, errors.Wrapf(err, "create %s device", settings.Name)
		}
		settings.logger().Debug("output device created",
			zap.String("device", settings.Name),
			zap.Stringer("kind", details.kind),
			zap.Int("sample_rate", dev.Format().SampleRate),
			zap.Int("channels", dev.Format().Channels),
		)
		return dev, nil
	}

	return nil, errors.Wrap(ErrDeviceNotSupported, settings.Name)
}
