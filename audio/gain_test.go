// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"testing"
)

func TestDBToGain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		db   float64
		want float64
	}{
		{0, 1},
		{-6, 0.501},
		{6, 1.995},
		{-20, 0.1},
		{20, 10},
	}

	for _, tt := range tests {
		got := float64(DBToGain(tt.db))
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("DBToGain(%v) = %v, want ≈%v", tt.db, got, tt.want)
		}
	}
}

func TestGainToDB(t *testing.T) {
	t.Parallel()

	for _, db := range []float64{-12, -6, 0, 3, 9} {
		got := GainToDB(DBToGain(db))
		if math.Abs(got-db) > 1e-4 {
			t.Errorf("GainToDB(DBToGain(%v)) = %v", db, got)
		}
	}

	if got := GainToDB(0); !math.IsInf(got, -1) {
		t.Errorf("GainToDB(0) = %v, want -Inf", got)
	}
}
