// Package character implements the character state machine: the state table,
// the 8-way facing resolver, the straight-line movement integrator and the
// per-tick controller that ties them to an animation provider and a drawable
// surface.
package character

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/casper/pkg/math"
)

// State table errors.
var (
	ErrUnknownState  = errors.New("unknown state")
	ErrInvalidTable  = errors.New("invalid state table")
	ErrMissingFrames = errors.New("missing frame sequence")
)

// Frame is an opaque handle to a drawable frame owned by the animation provider.
type Frame string

// FrameProvider resolves a (state, direction) pair to an ordered frame sequence.
// DirNone asks for the direction-less sequence of a state.
type FrameProvider interface {
	Frames(state string, dir Direction) ([]Frame, bool)
}

// Surface is the drawable entity the character controls.
type Surface interface {
	Position() math.Vec2
	SetPosition(p math.Vec2)
	// ShowFrame displays a single still frame.
	ShowFrame(f Frame)
	// PlayFrames starts playing frames from the beginning at rate frames per
	// tick unit. A non-looping sequence must be reported back through
	// Character.AnimationComplete when it ends.
	PlayFrames(frames []Frame, rate float32, loop bool)
}

// MoveMode selects the locomotion state used to reach a target.
type MoveMode int

const (
	MoveWalk MoveMode = iota
	MoveRun
)

// String returns the mode name.
func (m MoveMode) String() string {
	if m == MoveRun {
		return "run"
	}
	return "walk"
}

// ParseMoveMode converts "walk" or "run" to a MoveMode.
func ParseMoveMode(s string) (MoveMode, error) {
	switch s {
	case "walk":
		return MoveWalk, nil
	case "run":
		return MoveRun, nil
	default:
		return MoveWalk, fmt.Errorf("unknown move mode %q", s)
	}
}

// StateDescriptor describes one named state.
type StateDescriptor struct {
	Speed     float32 `yaml:"speed,omitempty"`      // world units per tick unit, dynamic states only
	Static    bool    `yaml:"static,omitempty"`     // single-frame pose
	PostState string  `yaml:"post_state,omitempty"` // one-shot: switch here when the animation ends
	FrameRate float32 `yaml:"frame_rate,omitempty"` // 0 = frame count / FrameRateDivisor
}

// MoveSpeed returns Speed, defaulting to 1.
func (d StateDescriptor) MoveSpeed() float32 {
	if d.Speed <= 0 {
		return 1
	}
	return d.Speed
}

// Loops reports whether the state's animation repeats indefinitely.
func (d StateDescriptor) Loops() bool {
	return d.PostState == ""
}

// Table is the closed set of states a character can be in.
type Table struct {
	Default string                     `yaml:"default"`
	Walk    string                     `yaml:"walk"`
	Run     string                     `yaml:"run"`
	States  map[string]StateDescriptor `yaml:"states"`
}

// Lookup returns the descriptor for name.
func (t *Table) Lookup(name string) (StateDescriptor, error) {
	d, ok := t.States[name]
	if !ok {
		return StateDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return d, nil
}

// Names returns all state names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.States))
	for name := range t.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MoveState returns the state used for the given locomotion mode.
func (t *Table) MoveState(mode MoveMode) string {
	if mode == MoveRun {
		return t.Run
	}
	return t.Walk
}

// Validate checks the table's internal references.
func (t *Table) Validate() error {
	if len(t.States) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalidTable)
	}
	if _, ok := t.States[t.Default]; !ok {
		return fmt.Errorf("%w: default state %q not defined", ErrInvalidTable, t.Default)
	}
	for _, name := range []string{t.Walk, t.Run} {
		d, ok := t.States[name]
		if !ok {
			return fmt.Errorf("%w: movement state %q not defined", ErrInvalidTable, name)
		}
		if d.Static {
			return fmt.Errorf("%w: movement state %q is static", ErrInvalidTable, name)
		}
	}
	for _, name := range t.Names() {
		d := t.States[name]
		if d.Static && (d.Speed != 0 || d.PostState != "" || d.FrameRate != 0) {
			return fmt.Errorf("%w: static state %q declares animation fields", ErrInvalidTable, name)
		}
		if d.PostState == "" {
			continue
		}
		if d.PostState == name {
			return fmt.Errorf("%w: state %q follows itself", ErrInvalidTable, name)
		}
		if _, ok := t.States[d.PostState]; !ok {
			return fmt.Errorf("%w: state %q post_state %q not defined", ErrInvalidTable, name, d.PostState)
		}
	}
	return nil
}

// State names of the built-in cat table.
const (
	StateStanding      = "standing"
	StateSitting       = "sitting"
	StateLaying        = "laying"
	StateWalking       = "walking"
	StateRunning       = "running"
	StateSittingDown   = "sitting_down"
	StateLayingDown    = "laying_down"
	StateLookingAround = "looking_around"
)

// DefaultTable returns the built-in cat state table.
func DefaultTable() *Table {
	return &Table{
		Default: StateSittingDown,
		Walk:    StateWalking,
		Run:     StateRunning,
		States: map[string]StateDescriptor{
			StateStanding:      {Static: true},
			StateSitting:       {Static: true},
			StateLaying:        {Static: true},
			StateWalking:       {Speed: 1},
			StateRunning:       {Speed: 15},
			StateSittingDown:   {PostState: StateSitting},
			StateLayingDown:    {PostState: StateLaying},
			StateLookingAround: {PostState: StateSitting, FrameRate: 0.1},
		},
	}
}

// LoadTable parses and validates a YAML state table.
func LoadTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing state table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTableFile reads a YAML state table from disk.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := LoadTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
