// Package pet wires a character and its behavior scheduler into the entry
// points a host loop drives.
package pet

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/internal/engine/event"
	"github.com/Faultbox/casper/internal/game/ai"
	"github.com/Faultbox/casper/pkg/math"
)

// ErrMissingPose is returned when a state table lacks a state an intent uses.
var ErrMissingPose = errors.New("state table is missing an intent pose")

// Coverage is implemented by frame providers that can check a whole table.
type Coverage interface {
	Covers(table *character.Table) error
}

// Options configures a Pet.
type Options struct {
	Name    string
	Table   *character.Table        // defaults to character.DefaultTable()
	Frames  character.FrameProvider // required
	Surface character.Surface       // required
	Cues    ai.CuePlayer

	Intents      []ai.Intent
	DashCues     []string
	Bounds       ai.Bounds
	IdleTimeout  float32
	SitOnArrival bool

	Rand   *rand.Rand
	Logger *zap.Logger
}

// Pet is one autonomous character.
type Pet struct {
	name   string
	frames character.FrameProvider
	bus    *event.Bus
	char   *character.Character
	sched  *ai.Scheduler
	log    *zap.Logger
}

// New builds a pet and checks that its table and frames can serve every
// intent.
func New(opts Options) (*Pet, error) {
	if opts.Table == nil {
		opts.Table = character.DefaultTable()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := checkTable(opts.Table, opts.Frames); err != nil {
		return nil, err
	}

	bus := event.NewBus()
	char, err := character.New(character.Options{
		Table:   opts.Table,
		Frames:  opts.Frames,
		Surface: opts.Surface,
		Bus:     bus,
		Rand:    opts.Rand,
		Logger:  opts.Logger.Named("character"),
	})
	if err != nil {
		return nil, err
	}

	sched, err := ai.NewScheduler(ai.Options{
		Body:         char,
		Bus:          bus,
		Cues:         opts.Cues,
		Intents:      opts.Intents,
		DashCues:     opts.DashCues,
		Bounds:       opts.Bounds,
		IdleTimeout:  opts.IdleTimeout,
		SitOnArrival: opts.SitOnArrival,
		Rand:         opts.Rand,
		Logger:       opts.Logger.Named("ai"),
	})
	if err != nil {
		return nil, err
	}

	return &Pet{
		name:   opts.Name,
		frames: opts.Frames,
		bus:    bus,
		char:   char,
		sched:  sched,
		log:    opts.Logger,
	}, nil
}

// OnTick advances the pet by delta tick units. The scheduler only runs while
// the character is not seeking a target.
func (p *Pet) OnTick(delta float32) error {
	if err := p.char.Update(delta); err != nil {
		return fmt.Errorf("character: %w", err)
	}
	if p.char.HasTarget() {
		return nil
	}
	if err := p.sched.Update(); err != nil {
		return fmt.Errorf("behavior: %w", err)
	}
	return nil
}

// OnAnimationCycleComplete must be called when a non-looping sequence ends.
func (p *Pet) OnAnimationCycleComplete() error {
	return p.char.AnimationComplete()
}

// SetMovementTarget sends the pet towards pos.
func (p *Pet) SetMovementTarget(pos math.Vec2, mode character.MoveMode) error {
	return p.char.SetMovementTarget(pos, mode)
}

// Request queues the named intent.
func (p *Pet) Request(intent string) error {
	return p.sched.Request(intent)
}

// SetBounds updates the screen area used for dashes.
func (p *Pet) SetBounds(b ai.Bounds) {
	p.sched.SetBounds(b)
}

// SetTable swaps in a new state table after checking it still serves every
// intent.
func (p *Pet) SetTable(t *character.Table) error {
	if err := checkTable(t, p.frames); err != nil {
		return err
	}
	if err := p.char.SetTable(t); err != nil {
		return err
	}
	p.log.Info("state table replaced", zap.Strings("states", t.Names()))
	return nil
}

// RefreshFrames re-applies the current animation, for use after the frame
// provider changed underneath the pet.
func (p *Pet) RefreshFrames() error {
	return p.char.Refresh()
}

// Name returns the pet's display name.
func (p *Pet) Name() string { return p.name }

// State returns the current state name.
func (p *Pet) State() string { return p.char.State() }

// Behavior returns the running intent name, or "".
func (p *Pet) Behavior() string { return p.sched.Behavior() }

// Facing returns the current facing.
func (p *Pet) Facing() character.Direction { return p.char.Facing() }

// Position returns the pet's position.
func (p *Pet) Position() math.Vec2 { return p.char.Position() }

// HasTarget reports whether the pet is moving towards a target.
func (p *Pet) HasTarget() bool { return p.char.HasTarget() }

// Bus returns the pet's notification bus.
func (p *Pet) Bus() *event.Bus { return p.bus }

// Character returns the underlying state machine.
func (p *Pet) Character() *character.Character { return p.char }

// Scheduler returns the underlying behavior scheduler.
func (p *Pet) Scheduler() *ai.Scheduler { return p.sched }

// Status is a one-line summary for display.
func (p *Pet) Status() string {
	state := p.char.State()
	if state == "" {
		state = "-"
	}
	if b := p.sched.Behavior(); b != "" {
		return fmt.Sprintf("%s: %s (%s)", p.name, state, b)
	}
	return fmt.Sprintf("%s: %s", p.name, state)
}

func checkTable(t *character.Table, frames character.FrameProvider) error {
	if err := t.Validate(); err != nil {
		return err
	}
	for _, name := range ai.DefaultPoses().Names() {
		if _, err := t.Lookup(name); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingPose, name)
		}
	}
	if c, ok := frames.(Coverage); ok {
		if err := c.Covers(t); err != nil {
			return err
		}
	}
	return nil
}
