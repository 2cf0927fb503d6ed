// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/stemdeck/stems"
)

// withGain returns a copy with every selected stem at db.
func (g GainSelection) withGain(db float64) GainSelection {
	out := g.Clone()
	for k := range out {
		out[k] = db
	}
	return out
}

func TestParseSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  GainSelection
	}{
		{"gains", "vocals=0,bass=-6", GainSelection{stems.Vocals: 0, stems.Bass: -6}},
		{"bare names", "vocals, drums", GainSelection{stems.Vocals: 0, stems.Drums: 0}},
		{"disabled", "vocals=0,drums=off", GainSelection{stems.Vocals: 0}},
		{"db suffix", "bass=-3dB", GainSelection{stems.Bass: -3}},
		{"case", "VOCALS=+2", GainSelection{stems.Vocals: 2}},
		{"later wins", "bass=-6,bass=off", GainSelection{}},
		{"empty", "", GainSelection{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSelection(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelection_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"vocals=loud", "=3", "bass=NaN", "drums=inf", "a/b=0"} {
		_, err := ParseSelection(input)
		assert.ErrorIs(t, err, ErrInvalidSelection, input)
	}
}

func TestGainSelection_Selected(t *testing.T) {
	t.Parallel()

	sel := GainSelection{stems.Other: 0, stems.Vocals: -1}
	assert.Equal(t, []stems.Name{stems.Vocals, stems.Other}, sel.Selected(stems.DefaultNames()))
}

func TestGainSelection_String(t *testing.T) {
	t.Parallel()

	sel := GainSelection{stems.Vocals: 0, stems.Bass: -6.5}
	assert.Equal(t, "bass=-6.5,vocals=0", sel.String())

	parsed, err := ParseSelection(sel.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(sel))
}

func TestGainSelection_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	sel := GainSelection{stems.Vocals: 0}
	c := sel.Clone()
	c[stems.Bass] = 1

	assert.Len(t, sel, 1)
	assert.Len(t, GainSelection(nil).Clone(), 0)
}
