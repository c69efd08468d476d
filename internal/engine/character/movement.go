package character

import (
	"github.com/Faultbox/casper/pkg/math"
)

// ArrivalThreshold is the per-axis distance at which a target counts as reached.
// The check is a square box around the target, not a circle.
const ArrivalThreshold = 10.0

// StepResult is the outcome of one integration step.
type StepResult struct {
	Position math.Vec2 // unchanged when Arrived
	Heading  math.Vec2 // unit vector towards the target, zero when Arrived
	Arrived  bool
}

// Step advances position towards target by speed*delta along a straight line.
func Step(position, target math.Vec2, delta, speed float32) StepResult {
	toTarget := target.Sub(position)
	if toTarget.Within(ArrivalThreshold) || toTarget.Length() == 0 {
		return StepResult{Position: position, Arrived: true}
	}

	heading := toTarget.Normalize()
	return StepResult{
		Position: position.Add(heading.Scale(speed * delta)),
		Heading:  heading,
	}
}

// move runs the integrator for the current state and applies its result.
func (c *Character) move(delta float32, desc StateDescriptor) error {
	res := Step(c.surface.Position(), c.target, delta, desc.MoveSpeed())
	if res.Arrived {
		reached := c.target
		c.ClearTarget()
		c.emitTargetReached(reached)
		return nil
	}

	if dir := ResolveDirection(res.Heading); dir != DirNone && dir != c.facing {
		c.facing = dir
		if err := c.applyAnimation(); err != nil {
			return err
		}
	}
	c.surface.SetPosition(res.Position)
	return nil
}
