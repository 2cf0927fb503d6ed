// SPDX-License-Identifier: EPL-2.0

/*
Package engine ties separation, mixing and playback together behind the
operations a user interface needs.

	eng, err := engine.New(engine.Config{
		OutputDir: "/tmp/stems",
		Separator: sep,
		Device:    dev,
	})
	set, err := eng.Load(ctx, "song.mp3")
	eng.OnProgress(func(pos, dur time.Duration) { ... })
	err = eng.SetSelection(ctx, mixer.GainSelection{stems.Vocals: 0, stems.Bass: -6})
	err = eng.Play(ctx)

The playback device cannot seek. Seek and a selection change while playing
both render a new mix and restart it from position 0.
*/
package engine
