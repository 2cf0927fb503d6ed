// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ik5/stemdeck/stems"
)

// Disabled is the gain keyword that excludes a stem in ParseSelection.
const Disabled = "off"

// GainSelection maps a stem to its gain in dB. A stem without an entry is
// excluded from the mix.
type GainSelection map[stems.Name]float64

// All selects every name at 0 dB.
func All(names []stems.Name) GainSelection {
	sel := make(GainSelection, len(names))
	for _, n := range names {
		sel[n] = 0
	}
	return sel
}

// ParseSelection reads "vocals=0,bass=-6,drums=off". A bare name selects the
// stem at 0 dB; the Disabled keyword drops it.
func ParseSelection(s string) (GainSelection, error) {
	sel := GainSelection{}
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		name, err := stems.ParseName(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
		}

		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.ToLower(value)), "db"))
		switch {
		case !hasValue:
			sel[name] = 0
		case value == Disabled:
			delete(sel, name)
		default:
			gain, err := strconv.ParseFloat(value, 64)
			if err != nil || math.IsNaN(gain) || math.IsInf(gain, 0) {
				return nil, fmt.Errorf("%w: gain %q for %s", ErrInvalidSelection, value, name)
			}
			sel[name] = gain
		}
	}
	return sel, nil
}

// Clone returns an independent copy.
func (g GainSelection) Clone() GainSelection {
	if g == nil {
		return GainSelection{}
	}
	return maps.Clone(g)
}

// Equal reports whether both select the same stems at the same gains.
func (g GainSelection) Equal(other GainSelection) bool {
	return maps.Equal(g, other)
}

// Selected returns the selected names in the order of names.
func (g GainSelection) Selected(names []stems.Name) []stems.Name {
	out := make([]stems.Name, 0, len(g))
	for _, n := range names {
		if _, ok := g[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// String formats the selection in ParseSelection syntax, sorted by name.
func (g GainSelection) String() string {
	keys := slices.Sorted(maps.Keys(g))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k) + "=" + strconv.FormatFloat(g[k], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
