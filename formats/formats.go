// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/formats/aiff"
	"github.com/ik5/stemdeck/formats/flac"
	"github.com/ik5/stemdeck/formats/mp3"
	"github.com/ik5/stemdeck/formats/vorbis"
	"github.com/ik5/stemdeck/formats/wav"
)

// NewRegistry returns a registry with wav, mp3, ogg, aiff and flac decoders.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("flac", flac.Decoder{})
	return r
}
