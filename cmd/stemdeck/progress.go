// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

type progressReporter interface {
	Update(pos, dur time.Duration)
	Finish()
}

func newProgressReporter(w io.Writer, label string) progressReporter {
	if isTerminal(w) {
		return &barReporter{w: w, label: label}
	}
	return &lineReporter{w: w, last: -1}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// barReporter draws a progress bar in milliseconds. The bar is created on
// the first update because the duration is only known once mixed.
type barReporter struct {
	w     io.Writer
	label string

	mu  sync.Mutex
	bar *progressbar.ProgressBar
	dur time.Duration
}

func (r *barReporter) Update(pos, dur time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil || dur != r.dur {
		r.dur = dur
		r.bar = progressbar.NewOptions64(dur.Milliseconds(),
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription(r.label),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
	}
	_ = r.bar.Set64(pos.Milliseconds())
}

func (r *barReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		_ = r.bar.Finish()
		fmt.Fprintln(r.w)
	}
}

// lineReporter prints one line per elapsed second.
type lineReporter struct {
	w io.Writer

	mu   sync.Mutex
	last int64
}

func (r *lineReporter) Update(pos, dur time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sec := int64(pos / time.Second)
	if sec == r.last && pos < dur {
		return
	}
	r.last = sec
	fmt.Fprintf(r.w, "%s / %s\n", formatClock(pos), formatClock(dur))
}

func (r *lineReporter) Finish() {}

// formatClock renders d as mm:ss.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}
