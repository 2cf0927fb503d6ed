// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/utils"
)

// PCM16Reader exposes a Source as little-endian signed 16-bit PCM bytes,
// the layout sound card APIs consume.
type PCM16Reader struct {
	src  audio.Source
	tmp  []float32
	done bool
}

func NewPCM16Reader(src audio.Source) *PCM16Reader {
	return &PCM16Reader{src: src}
}

// Read fills p with whole frames. It returns io.EOF once the source is
// drained.
func (r *PCM16Reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}

	frameBytes := 2 * r.src.Channels()
	samples := (len(p) / frameBytes) * r.src.Channels()
	if samples == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(r.tmp) < samples {
		r.tmp = make([]float32, samples)
	}
	tmp := r.tmp[:samples]

	n, err := r.src.ReadSamples(tmp)
	for i := range n {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(utils.Float32ToInt16(tmp[i])))
	}

	if errors.Is(err, io.EOF) {
		r.done = true
		if n == 0 {
			return 0, io.EOF
		}
		return n * 2, nil
	}
	if err != nil {
		return n * 2, fmt.Errorf("%w", err)
	}
	return n * 2, nil
}
