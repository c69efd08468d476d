// Package control turns host input into pet commands and wall time into
// tick units.
package control

import (
	"time"

	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/internal/game/ai"
	"github.com/Faultbox/casper/internal/game/pet"
	"github.com/Faultbox/casper/pkg/math"
)

// Kind identifies a command.
type Kind int

const (
	Move Kind = iota
	Request
	Resize
	Quit
)

// Command is a request from the user to the running pet.
type Command struct {
	Kind   Kind
	Target math.Vec2
	Mode   character.MoveMode
	Intent ai.Intent
	Width  int
	Height int
}

// MoveTo builds a movement command.
func MoveTo(x, y float32, mode character.MoveMode) Command {
	return Command{Kind: Move, Target: math.V2(x, y), Mode: mode}
}

// Apply executes cmd against p. Quit and zero-size resizes are ignored.
func Apply(p *pet.Pet, cmd Command) error {
	switch cmd.Kind {
	case Move:
		return p.SetMovementTarget(cmd.Target, cmd.Mode)
	case Request:
		p.Scheduler().RequestIntent(cmd.Intent)
	case Resize:
		if cmd.Width > 0 && cmd.Height > 0 {
			p.SetBounds(ai.Bounds{Width: float32(cmd.Width), Height: float32(cmd.Height)})
		}
	}
	return nil
}

// MaxTickDelta caps a single step after the host stalls.
const MaxTickDelta = 30

// TickDelta converts elapsed wall time into tick units at ticksPerSecond.
func TickDelta(elapsed time.Duration, ticksPerSecond float32) float32 {
	if elapsed <= 0 || ticksPerSecond <= 0 {
		return 0
	}
	d := float32(elapsed.Seconds()) * ticksPerSecond
	if d > MaxTickDelta {
		return MaxTickDelta
	}
	return d
}
