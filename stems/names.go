// SPDX-License-Identifier: EPL-2.0

package stems

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Name identifies one stem of a separated recording.
type Name string

// The four stems produced by a 4-stem separation model.
const (
	Vocals Name = "vocals"
	Drums  Name = "drums"
	Bass   Name = "bass"
	Other  Name = "other"
)

// DefaultExtension is the container the separators write.
const DefaultExtension = "wav"

// DefaultNames returns the 4-stem vocabulary in mixing order.
func DefaultNames() []Name {
	return []Name{Vocals, Drums, Bass, Other}
}

// ParseName validates a stem name. Names are lowercase and must be usable as
// a file name on their own.
func ParseName(s string) (Name, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	if n == "" || n == "." || n == ".." || strings.ContainsAny(n, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	return Name(n), nil
}

// ParseNames validates a list of names and rejects duplicates.
func ParseNames(in []string) ([]Name, error) {
	seen := make(map[Name]struct{}, len(in))
	out := make([]Name, 0, len(in))
	for _, s := range in {
		n, err := ParseName(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: duplicate %q", ErrInvalidName, n)
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// BaseName derives the directory name a separator uses for inputPath: the
// file name without its extension.
func BaseName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Path returns <outputDir>/<baseName>/<name>.<ext>.
func Path(outputDir, baseName string, name Name, ext string) string {
	return filepath.Join(outputDir, baseName, string(name)+"."+strings.TrimPrefix(ext, "."))
}
