// SPDX-License-Identifier: EPL-2.0

package stems

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/stemdeck/audio"
	"github.com/ik5/stemdeck/formats"
)

// Format is the layout every stem of a set shares.
type Format struct {
	SampleRate int
	Channels   int
}

// Stem is one file of a set.
type Stem struct {
	Name Name
	Path string
}

// Set is an immutable group of stems separated from one recording.
type Set struct {
	BaseName  string
	Dir       string // <outputDir>/<baseName>
	Extension string
	Stems     []Stem // vocabulary order
	Format    Format

	decoders *audio.Registry
}

type options struct {
	names     []Name
	extension string
	decoders  *audio.Registry
}

// Option customizes Register.
type Option func(*options)

// WithNames overrides the stem vocabulary. Order is kept and becomes the
// mixing order.
func WithNames(names ...Name) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.names = names
		}
	}
}

// WithExtension sets the stem file extension ("wav", "flac", ...).
func WithExtension(ext string) Option {
	return func(o *options) {
		if ext = strings.TrimPrefix(strings.TrimSpace(ext), "."); ext != "" {
			o.extension = ext
		}
	}
}

// WithDecoders sets the registry used to probe and open stems.
func WithDecoders(r *audio.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.decoders = r
		}
	}
}

// Register builds the set for baseName under outputDir and verifies that
// every stem file exists, decodes, and shares the first stem's format.
// Nothing on disk is modified.
func Register(baseName, outputDir string, opts ...Option) (*Set, error) {
	o := options{
		names:     DefaultNames(),
		extension: DefaultExtension,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.decoders == nil {
		o.decoders = formats.NewRegistry()
	}

	if baseName == "" || baseName != filepath.Base(baseName) || baseName == "." || baseName == ".." {
		return nil, fmt.Errorf("%w: base %q", ErrInvalidName, baseName)
	}

	set := &Set{
		BaseName:  baseName,
		Dir:       filepath.Join(outputDir, baseName),
		Extension: o.extension,
		Stems:     make([]Stem, 0, len(o.names)),
		decoders:  o.decoders,
	}

	for i, name := range o.names {
		stem := Stem{Name: name, Path: Path(outputDir, baseName, name, o.extension)}

		format, err := set.probe(stem)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			set.Format = format
		} else if format != set.Format {
			return nil, fmt.Errorf("%w: %s is %d Hz/%d ch, %s is %d Hz/%d ch",
				ErrInvalidAudioFormat, name, format.SampleRate, format.Channels,
				set.Stems[0].Name, set.Format.SampleRate, set.Format.Channels)
		}

		set.Stems = append(set.Stems, stem)
	}

	return set, nil
}

func (s *Set) probe(stem Stem) (Format, error) {
	src, err := s.open(stem)
	if err != nil {
		return Format{}, err
	}
	defer src.Close()

	f := Format{SampleRate: src.SampleRate(), Channels: src.Channels()}
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return Format{}, fmt.Errorf("%w: %s: %d Hz/%d ch", ErrInvalidAudioFormat, stem.Path, f.SampleRate, f.Channels)
	}
	return f, nil
}

func (s *Set) open(stem Stem) (audio.Source, error) {
	info, err := os.Stat(stem.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrMissingStemFile, stem.Path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingStemFile, stem.Path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrMissingStemFile, stem.Path)
	}

	src, err := s.decoders.Open(stem.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrMissingStemFile, stem.Path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAudioFormat, stem.Path, err)
	}
	return src, nil
}

// Names lists the stems in mixing order.
func (s *Set) Names() []Name {
	out := make([]Name, len(s.Stems))
	for i, st := range s.Stems {
		out[i] = st.Name
	}
	return out
}

// Lookup finds a stem by name.
func (s *Set) Lookup(name Name) (Stem, bool) {
	for _, st := range s.Stems {
		if st.Name == name {
			return st, true
		}
	}
	return Stem{}, false
}

// Open decodes the named stem. Stems deleted since registration report
// ErrMissingStemFile.
func (s *Set) Open(name Name) (audio.Source, error) {
	stem, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not part of %s", ErrMissingStemFile, name, s.BaseName)
	}
	return s.open(stem)
}

// Remove deletes the set's directory and every file in it.
func (s *Set) Remove() error {
	if s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("remove stems %s: %w", s.Dir, err)
	}
	return nil
}
