// Package assets provides the cat's frame sequences, described by a YAML
// sprite manifest, and hot reload of asset files.
package assets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/casper/internal/engine/character"
)

//go:embed data/casper.yaml
var defaultManifest []byte

// ErrInvalidManifest is returned for manifests that describe no usable sheet.
var ErrInvalidManifest = errors.New("invalid sprite manifest")

// Sheet describes the frames of one state.
type Sheet struct {
	Frames      int  `yaml:"frames"`
	Directional bool `yaml:"directional"`
}

// Manifest maps state names to sheets.
type Manifest struct {
	Sheets map[string]Sheet `yaml:"sheets"`
}

// ParseManifest parses and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrInvalidManifest)
	}
	for name, sheet := range m.Sheets {
		if sheet.Frames <= 0 {
			return nil, fmt.Errorf("%w: sheet %q has %d frames", ErrInvalidManifest, name, sheet.Frames)
		}
	}
	return &m, nil
}

// DefaultManifest returns the embedded cat manifest.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("assets: embedded manifest: %v", err))
	}
	return m
}

// Key returns the sequence key for (state, dir). DirNone yields the bare state.
func Key(state string, dir character.Direction) string {
	if dir == character.DirNone {
		return state
	}
	return state + "_" + string(dir)
}

// FrameName returns the handle of frame i of a sequence key.
func FrameName(key string, i int) character.Frame {
	return character.Frame(fmt.Sprintf("%s_%02d", strings.ToLower(key), i))
}

// Library serves frame sequences built from a manifest.
// It is safe for concurrent use.
type Library struct {
	mu   sync.RWMutex
	seqs map[string][]character.Frame
	path string
	log  *zap.Logger

	// Stats
	hits   int
	misses int
}

// NewLibrary builds a library from m.
func NewLibrary(m *Manifest) *Library {
	return &Library{
		seqs: build(m),
		log:  zap.NewNop(),
	}
}

// Open loads a manifest file, or the embedded manifest when path is empty.
func Open(path string, log *zap.Logger) (*Library, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		l := NewLibrary(DefaultManifest())
		l.log = log
		return l, nil
	}

	m, err := loadManifest(path)
	if err != nil {
		return nil, err
	}
	l := NewLibrary(m)
	l.path = path
	l.log = log
	log.Info("sprite manifest loaded", zap.String("path", path), zap.Int("sequences", len(l.seqs)))
	return l, nil
}

// Path returns the manifest file, or "" for the embedded one.
func (l *Library) Path() string {
	return l.path
}

// Reload re-reads the manifest file. On error the current sequences are kept.
func (l *Library) Reload() error {
	if l.path == "" {
		return nil
	}
	m, err := loadManifest(l.path)
	if err != nil {
		return err
	}
	seqs := build(m)

	l.mu.Lock()
	l.seqs = seqs
	l.mu.Unlock()

	l.log.Info("sprite manifest reloaded", zap.String("path", l.path), zap.Int("sequences", len(seqs)))
	return nil
}

// Frames implements character.FrameProvider.
func (l *Library) Frames(state string, dir character.Direction) ([]character.Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq, ok := l.seqs[Key(state, dir)]
	if ok {
		l.hits++
	} else {
		l.misses++
	}
	return seq, ok
}

// Keys returns every sequence key, sorted.
func (l *Library) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.seqs))
	for k := range l.seqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns lookup statistics.
func (l *Library) Stats() (hits, misses int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hits, l.misses
}

// Covers reports the first state of table that has no sequence at all.
func (l *Library) Covers(table *character.Table) error {
	for _, name := range table.Names() {
		if _, err := character.ResolveFrames(l, name, character.DirS); err != nil {
			return err
		}
	}
	return nil
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func build(m *Manifest) map[string][]character.Frame {
	seqs := make(map[string][]character.Frame)
	for state, sheet := range m.Sheets {
		if !sheet.Directional {
			seqs[Key(state, character.DirNone)] = sequence(Key(state, character.DirNone), sheet.Frames)
			continue
		}
		for _, dir := range character.Directions {
			key := Key(state, dir)
			seqs[key] = sequence(key, sheet.Frames)
		}
	}
	return seqs
}

func sequence(key string, n int) []character.Frame {
	frames := make([]character.Frame, n)
	for i := range frames {
		frames[i] = FrameName(key, i)
	}
	return frames
}
