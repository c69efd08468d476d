package ai

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/internal/engine/event"
	"github.com/Faultbox/casper/pkg/math"
)

// DefaultIdleTimeout is the state time, in tick units, after which an idle
// character picks a new intent.
const DefaultIdleTimeout = 500

// ErrNotRunning is returned when steps are enqueued with no intent running.
var ErrNotRunning = errors.New("no intent running")

// Body is the part of the character the scheduler drives.
type Body interface {
	State() string
	StateTimer() float32
	HasTarget() bool
	SetState(name string) error
	SetMovementTarget(p math.Vec2, mode character.MoveMode) error
	FaceRandomSouth()
	ResetToDefault() error
}

// CuePlayer plays and stops named sound cues.
type CuePlayer interface {
	Play(name string) error
	Stop(name string)
}

// Options configures a Scheduler.
type Options struct {
	Body        Body       // required
	Bus         *event.Bus // required, shared with the character
	Cues        CuePlayer  // optional
	Intents     []Intent   // random pool, defaults to AllIntents
	DashCues    []string
	Bounds      Bounds
	Poses       Poses   // defaults to DefaultPoses()
	IdleTimeout float32 // defaults to DefaultIdleTimeout
	// SitOnArrival requests IntentSit whenever a target is reached with no
	// steps left to run.
	SitOnArrival bool
	Rand         *rand.Rand
	Logger       *zap.Logger
}

// Scheduler runs one intent at a time as an indexed list of steps.
type Scheduler struct {
	body        Body
	bus         *event.Bus
	cues        CuePlayer
	intents     []Intent
	dashCues    []string
	bounds      Bounds
	poses       Poses
	idleTimeout float32
	rng         *rand.Rand
	log         *zap.Logger

	controlled bool
	pending    Intent
	hasPending bool
	behavior   string
	steps      []Step
	next       int
}

// NewScheduler creates a scheduler and subscribes it to the bus.
func NewScheduler(opts Options) (*Scheduler, error) {
	if opts.Body == nil {
		return nil, errors.New("ai: body is required")
	}
	if opts.Bus == nil {
		return nil, errors.New("ai: bus is required")
	}
	if len(opts.Intents) == 0 {
		opts.Intents = AllIntents
	}
	for _, i := range opts.Intents {
		if i < 0 || int(i) >= len(intentNames) {
			return nil, fmt.Errorf("ai: %w: %s", ErrUnknownIntent, i)
		}
	}
	if opts.Poses == (Poses{}) {
		opts.Poses = DefaultPoses()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Scheduler{
		body:        opts.Body,
		bus:         opts.Bus,
		cues:        opts.Cues,
		intents:     opts.Intents,
		dashCues:    opts.DashCues,
		bounds:      opts.Bounds,
		poses:       opts.Poses,
		idleTimeout: opts.IdleTimeout,
		rng:         opts.Rand,
		log:         opts.Logger,
	}
	if opts.SitOnArrival {
		s.bus.Subscribe(event.KindTargetReached, s.onTargetReached)
	}
	return s, nil
}

// Update runs one scheduler pass. Callers must only invoke it while the body
// has no movement target.
func (s *Scheduler) Update() error {
	if s.behavior == "" {
		s.controlled = false
	}

	if s.hasPending && s.behavior == "" {
		if err := s.start(s.pending); err != nil {
			return err
		}
	}

	if s.controlled {
		if err := s.advance(); err != nil {
			return err
		}
	}

	if !s.body.HasTarget() && s.body.StateTimer() > s.idleTimeout {
		return s.timeout()
	}
	return nil
}

// Request queues the named intent to start once nothing else is running.
func (s *Scheduler) Request(name string) error {
	i, err := ParseIntent(name)
	if err != nil {
		return err
	}
	s.RequestIntent(i)
	return nil
}

// RequestIntent queues i to start once nothing else is running.
// A later request replaces an earlier one that has not started.
func (s *Scheduler) RequestIntent(i Intent) {
	s.pending = i
	s.hasPending = true
}

// Enqueue appends steps to the running intent. They run after the steps
// already queued and delay its completion accordingly.
func (s *Scheduler) Enqueue(steps ...Step) error {
	if !s.controlled {
		return ErrNotRunning
	}
	s.steps = append(s.steps, steps...)
	return nil
}

// SetBounds updates the screen area used to plan dashes.
func (s *Scheduler) SetBounds(b Bounds) {
	s.bounds = b
}

// Behavior returns the running intent name, or "".
func (s *Scheduler) Behavior() string { return s.behavior }

// Controlled reports whether an intent's script is running.
func (s *Scheduler) Controlled() bool { return s.controlled }

// Pending returns the intent waiting to start.
func (s *Scheduler) Pending() (Intent, bool) { return s.pending, s.hasPending }

// Remaining returns the steps not yet run.
func (s *Scheduler) Remaining() []Step {
	if s.next >= len(s.steps) {
		return nil
	}
	return s.steps[s.next:]
}

func (s *Scheduler) start(i Intent) error {
	s.hasPending = false
	steps, err := i.plan(planContext{
		rng:      s.rng,
		bounds:   s.bounds,
		poses:    s.poses,
		dashCues: s.dashCues,
		state:    s.body.State(),
	})
	if err != nil {
		return err
	}

	s.behavior = i.String()
	s.steps = steps
	s.next = 0
	s.controlled = true
	s.log.Debug("intent started", zap.String("intent", s.behavior), zap.Int("steps", len(steps)))
	s.bus.Emit(event.Event{Kind: event.KindBehaviorChanged, Behavior: s.behavior})
	return nil
}

// advance runs the next step. The intent completes once every step has run
// and no movement target is left, so a trailing move completes on the first
// pass after arrival while a trailing state change completes right away.
func (s *Scheduler) advance() error {
	if s.next < len(s.steps) {
		step := s.steps[s.next]
		s.next++
		if err := s.run(step); err != nil {
			return err
		}
	}
	if s.next >= len(s.steps) && !s.body.HasTarget() {
		s.complete()
	}
	return nil
}

func (s *Scheduler) run(step Step) error {
	switch step.Kind {
	case StepSetState:
		if step.FaceSouth {
			s.body.FaceRandomSouth()
		}
		return s.body.SetState(step.State)
	case StepMoveTo:
		if err := s.body.SetMovementTarget(step.Target, step.Mode); err != nil {
			return err
		}
		if step.PlayCue != "" {
			s.play(step.PlayCue)
		}
		if cue := step.StopCueOnArrival; cue != "" {
			s.bus.Once(event.KindTargetReached, func(event.Event) { s.stop(cue) })
		}
		return nil
	default:
		return fmt.Errorf("ai: unknown step kind %d", step.Kind)
	}
}

func (s *Scheduler) complete() {
	name := s.behavior
	s.behavior = ""
	s.controlled = false
	s.steps = nil
	s.next = 0
	s.log.Debug("intent completed", zap.String("intent", name))
	s.bus.Emit(event.Event{Kind: event.KindIntentCompleted, Behavior: name})
	s.bus.Emit(event.Event{Kind: event.KindBehaviorChanged})
}

func (s *Scheduler) timeout() error {
	s.log.Debug("idle timeout",
		zap.String("state", s.body.State()),
		zap.Float32("timer", s.body.StateTimer()),
	)
	if s.controlled || s.behavior != "" {
		s.complete()
	}
	if err := s.body.ResetToDefault(); err != nil {
		return err
	}
	s.RequestIntent(s.intents[s.rng.IntN(len(s.intents))])
	return nil
}

func (s *Scheduler) onTargetReached(event.Event) {
	if s.next < len(s.steps) {
		return
	}
	s.RequestIntent(IntentSit)
}

func (s *Scheduler) play(cue string) {
	if s.cues == nil {
		return
	}
	if err := s.cues.Play(cue); err != nil {
		s.log.Warn("cue playback failed", zap.String("cue", cue), zap.Error(err))
		return
	}
	s.log.Debug("cue started", zap.String("cue", cue))
}

func (s *Scheduler) stop(cue string) {
	if s.cues == nil {
		return
	}
	s.cues.Stop(cue)
}
