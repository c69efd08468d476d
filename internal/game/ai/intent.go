// Package ai sequences multi-step behaviors ("intents") for an autonomous
// character and picks new ones when it has been idle for too long.
package ai

import (
	"errors"
	"fmt"
	stdmath "math"
	"math/rand/v2"

	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/pkg/math"
)

// ErrUnknownIntent is returned for intent names outside the closed set.
var ErrUnknownIntent = errors.New("unknown intent")

// Intent is a named behavior.
type Intent int

const (
	IntentSit Intent = iota
	IntentLieDown
	IntentLookAround
	IntentDash
)

var intentNames = [...]string{
	IntentSit:        "sit",
	IntentLieDown:    "lie_down",
	IntentLookAround: "look_around",
	IntentDash:       "dash",
}

// AllIntents lists every intent in declaration order.
var AllIntents = []Intent{IntentSit, IntentLieDown, IntentLookAround, IntentDash}

// String returns the intent name.
func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return fmt.Sprintf("intent(%d)", int(i))
	}
	return intentNames[i]
}

// ParseIntent converts a name to an Intent.
func ParseIntent(name string) (Intent, error) {
	for i, n := range intentNames {
		if n == name {
			return Intent(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIntent, name)
}

// ParseIntents converts a list of names, failing on the first unknown one.
func ParseIntents(names []string) ([]Intent, error) {
	intents := make([]Intent, 0, len(names))
	for _, name := range names {
		i, err := ParseIntent(name)
		if err != nil {
			return nil, err
		}
		intents = append(intents, i)
	}
	return intents, nil
}

// StepKind discriminates Step.
type StepKind int

const (
	// StepSetState commits a state change.
	StepSetState StepKind = iota
	// StepMoveTo sets a movement target.
	StepMoveTo
)

// Step is one unit of an intent's script.
type Step struct {
	Kind StepKind

	// StepSetState
	State     string
	FaceSouth bool

	// StepMoveTo
	Target           math.Vec2
	Mode             character.MoveMode
	PlayCue          string // started when the step runs
	StopCueOnArrival string // stopped when this leg's target is reached
}

// Poses names the states the built-in intents commit.
type Poses struct {
	SittingDown   string
	Sitting       string
	LayingDown    string
	LookingAround string
}

// DefaultPoses matches character.DefaultTable.
func DefaultPoses() Poses {
	return Poses{
		SittingDown:   character.StateSittingDown,
		Sitting:       character.StateSitting,
		LayingDown:    character.StateLayingDown,
		LookingAround: character.StateLookingAround,
	}
}

// Names returns every state referenced by p.
func (p Poses) Names() []string {
	return []string{p.SittingDown, p.Sitting, p.LayingDown, p.LookingAround}
}

// Bounds is the visible screen area in world units.
type Bounds struct {
	Width, Height float32
}

// DashMargin is how far outside the screen the dash legs start and turn.
const DashMargin = 100

type planContext struct {
	rng      *rand.Rand
	bounds   Bounds
	poses    Poses
	dashCues []string
	state    string
}

// plan builds the step script for i.
func (i Intent) plan(ctx planContext) ([]Step, error) {
	switch i {
	case IntentSit:
		if ctx.state == ctx.poses.Sitting || ctx.state == ctx.poses.SittingDown {
			return nil, nil
		}
		return []Step{{Kind: StepSetState, State: ctx.poses.SittingDown, FaceSouth: true}}, nil
	case IntentLieDown:
		return []Step{{Kind: StepSetState, State: ctx.poses.LayingDown, FaceSouth: true}}, nil
	case IntentLookAround:
		return []Step{{Kind: StepSetState, State: ctx.poses.LookingAround, FaceSouth: true}}, nil
	case IntentDash:
		return planDash(ctx), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, i)
	}
}

// planDash crosses the screen off-edge to off-edge, then settles somewhere
// visible. The cue plays from the crossing until the final arrival.
func planDash(ctx planContext) []Step {
	w, h := ctx.bounds.Width, ctx.bounds.Height
	r := ctx.rng

	entryY := float32(stdmath.Floor(r.Float64() * float64(h)))
	entryX := float32(-DashMargin)
	exitX := w + DashMargin
	if r.Float64() <= 0.5 {
		entryX, exitX = exitX, entryX
	}
	exitY := float32(stdmath.Ceil(r.Float64() * float64(h)))
	finish := math.V2(
		float32(stdmath.Floor(r.Float64()*float64(w))),
		float32(stdmath.Floor(r.Float64()*float64(h))),
	)

	var cue string
	if len(ctx.dashCues) > 0 {
		cue = ctx.dashCues[r.IntN(len(ctx.dashCues))]
	}

	return []Step{
		{Kind: StepMoveTo, Target: math.V2(entryX, entryY), Mode: character.MoveRun},
		{Kind: StepMoveTo, Target: math.V2(exitX, exitY), Mode: character.MoveRun, PlayCue: cue},
		{Kind: StepMoveTo, Target: finish, Mode: character.MoveRun, StopCueOnArrival: cue},
	}
}
