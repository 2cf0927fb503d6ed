// SPDX-License-Identifier: EPL-2.0

// Package audio holds the waveform model shared by the decoders, the mixer
// and the playback devices.
//
// A Source streams interleaved float32 samples in [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Sources chain. ConvertChannels and ConvertRate wrap a Source with a
// MonoMixer, ChannelDuplicator or Resampler when a playback device wants a
// different layout:
//
//	src, err := registry.Open("out/song/vocals.wav")
//	if err != nil {
//	    return err
//	}
//	src = audio.ConvertRate(audio.ConvertChannels(src, 2), 48000)
//
// A Buffer is a fully materialized waveform. ReadAll drains a Source into
// one; Buffer.Source turns it back into a Source.
//
// Registry maps file extensions to Decoders. Keys are case-insensitive and
// a leading dot is ignored, so Open can dispatch on filepath.Ext directly.
//
// Gains are expressed in decibels; DBToGain converts them to the linear
// factor 10^(dB/20).
//
// ReadSamples returns io.EOF when the stream is exhausted, possibly together
// with the final samples.
package audio
