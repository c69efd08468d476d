package character

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/casper/internal/engine/event"
	"github.com/Faultbox/casper/pkg/math"
)

// Options configures a Character.
type Options struct {
	Table   *Table        // defaults to DefaultTable()
	Frames  FrameProvider // required
	Surface Surface       // required
	Bus     *event.Bus    // defaults to a private bus
	Rand    *rand.Rand    // defaults to a time-seeded source
	Logger  *zap.Logger   // defaults to a no-op logger
}

// Character is the live state of an animated character.
//
// All methods must be called from the goroutine that drives Update.
type Character struct {
	table   *Table
	frames  FrameProvider
	surface Surface
	bus     *event.Bus
	rng     *rand.Rand
	log     *zap.Logger

	current    string
	previous   string
	facing     Direction
	stateTimer float32

	target    math.Vec2
	hasTarget bool
}

// New creates a character. It has no state until the first Update, which
// enters the table's default state.
func New(opts Options) (*Character, error) {
	if opts.Frames == nil {
		return nil, errors.New("character: frame provider is required")
	}
	if opts.Surface == nil {
		return nil, errors.New("character: surface is required")
	}
	if opts.Table == nil {
		opts.Table = DefaultTable()
	}
	if err := opts.Table.Validate(); err != nil {
		return nil, fmt.Errorf("character: %w", err)
	}
	if opts.Bus == nil {
		opts.Bus = event.NewBus()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Character{
		table:   opts.Table,
		frames:  opts.Frames,
		surface: opts.Surface,
		bus:     opts.Bus,
		rng:     opts.Rand,
		log:     opts.Logger,
		facing:  DirS,
	}, nil
}

// Update advances the character by delta tick units.
func (c *Character) Update(delta float32) error {
	if c.current == "" {
		c.current = c.table.Default
	}
	if err := c.enterIfChanged(); err != nil {
		return err
	}

	c.stateTimer += delta

	desc, err := c.table.Lookup(c.current)
	if err != nil {
		return err
	}
	if !desc.Static && c.hasTarget {
		return c.move(delta, desc)
	}
	return nil
}

// AnimationComplete must be called when a non-looping sequence finishes.
// One-shot states switch to their post state and enter it immediately.
// A completion that arrives after SetState but before the new state was
// entered belongs to the old sequence and is ignored.
func (c *Character) AnimationComplete() error {
	if c.current == "" || c.current != c.previous {
		return nil
	}
	desc, err := c.table.Lookup(c.current)
	if err != nil {
		return err
	}
	if desc.Loops() {
		return nil
	}
	if err := c.SetState(desc.PostState); err != nil {
		return err
	}
	return c.enterIfChanged()
}

// SetState switches to the named state. Entry logic runs on the next Update.
func (c *Character) SetState(name string) error {
	if _, err := c.table.Lookup(name); err != nil {
		return err
	}
	c.current = name
	c.stateTimer = 0
	return nil
}

// ResetToDefault switches to the default state and forces its entry logic to
// run again on the next Update, even if the character is already in it.
func (c *Character) ResetToDefault() error {
	c.ClearTarget()
	if err := c.SetState(c.table.Default); err != nil {
		return err
	}
	c.previous = ""
	return nil
}

// SetMovementTarget starts seeking p in the locomotion state for mode.
func (c *Character) SetMovementTarget(p math.Vec2, mode MoveMode) error {
	if err := c.SetState(c.table.MoveState(mode)); err != nil {
		return err
	}
	c.target = p
	c.hasTarget = true
	return nil
}

// ClearTarget stops seeking without emitting a notification.
func (c *Character) ClearTarget() {
	c.target = math.Vec2{}
	c.hasTarget = false
}

// FaceRandomSouth turns towards SW, S or SE at random.
func (c *Character) FaceRandomSouth() {
	c.facing = RandomSouth(c.rng)
}

// SetFacing sets the facing used by the next animation change.
// DirNone is ignored.
func (c *Character) SetFacing(d Direction) {
	if d.Valid() {
		c.facing = d
	}
}

// SetTable replaces the state table. A current state missing from t falls
// back to the default; either way entry runs again on the next Update.
func (c *Character) SetTable(t *Table) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("character: %w", err)
	}
	c.table = t
	if c.current == "" {
		return nil
	}
	if _, err := t.Lookup(c.current); err != nil {
		return c.ResetToDefault()
	}
	c.previous = ""
	return nil
}

// Refresh re-applies the frames for the current state and facing.
func (c *Character) Refresh() error {
	if c.current == "" {
		return nil
	}
	return c.applyAnimation()
}

// State returns the current state name.
func (c *Character) State() string { return c.current }

// PreviousState returns the last entered state name.
func (c *Character) PreviousState() string { return c.previous }

// Facing returns the current facing.
func (c *Character) Facing() Direction { return c.facing }

// StateTimer returns the tick units elapsed since the current state was set.
func (c *Character) StateTimer() float32 { return c.stateTimer }

// Target returns the movement target and whether one is active.
func (c *Character) Target() (math.Vec2, bool) { return c.target, c.hasTarget }

// HasTarget reports whether the character is seeking a target.
func (c *Character) HasTarget() bool { return c.hasTarget }

// Position returns the surface position.
func (c *Character) Position() math.Vec2 { return c.surface.Position() }

// Table returns the state table.
func (c *Character) Table() *Table { return c.table }

// Bus returns the character's notification bus.
func (c *Character) Bus() *event.Bus { return c.bus }

func (c *Character) enterIfChanged() error {
	if c.current == c.previous {
		return nil
	}
	c.previous = c.current
	c.stateTimer = 0
	return c.onStateEntered()
}

func (c *Character) onStateEntered() error {
	if c.current == c.table.Default {
		c.FaceRandomSouth()
	}
	if err := c.applyAnimation(); err != nil {
		return err
	}
	c.log.Debug("state entered",
		zap.String("state", c.current),
		zap.String("facing", string(c.facing)),
	)
	c.bus.Emit(event.Event{Kind: event.KindStateEntered, State: c.current})
	return nil
}

func (c *Character) emitTargetReached(p math.Vec2) {
	c.log.Debug("target reached", zap.Float32("x", p.X), zap.Float32("y", p.Y))
	c.bus.Emit(event.Event{Kind: event.KindTargetReached, Position: p})
}
