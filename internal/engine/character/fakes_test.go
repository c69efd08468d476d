package character

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/Faultbox/casper/internal/engine/event"
	"github.com/Faultbox/casper/pkg/math"
)

// fakeFrames serves generated sequences: directional ones for dynamic states
// and one direction-less sheet of eight poses for static states.
type fakeFrames struct {
	seqs map[string][]Frame
}

func frameKey(state string, dir Direction) string {
	if dir == DirNone {
		return state
	}
	return state + "_" + string(dir)
}

func newFakeFrames(table *Table, count int) *fakeFrames {
	f := &fakeFrames{seqs: make(map[string][]Frame)}
	for name, desc := range table.States {
		if desc.Static {
			f.seqs[frameKey(name, DirNone)] = makeFrames(name, 8)
			continue
		}
		for _, dir := range Directions {
			f.seqs[frameKey(name, dir)] = makeFrames(frameKey(name, dir), count)
		}
	}
	return f
}

func makeFrames(prefix string, n int) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame(fmt.Sprintf("%s_%d", prefix, i))
	}
	return frames
}

func (f *fakeFrames) Frames(state string, dir Direction) ([]Frame, bool) {
	seq, ok := f.seqs[frameKey(state, dir)]
	return seq, ok
}

type playCall struct {
	frames []Frame
	rate   float32
	loop   bool
}

type fakeSurface struct {
	pos   math.Vec2
	shown []Frame
	plays []playCall
}

func (s *fakeSurface) Position() math.Vec2     { return s.pos }
func (s *fakeSurface) SetPosition(p math.Vec2) { s.pos = p }
func (s *fakeSurface) ShowFrame(f Frame)       { s.shown = append(s.shown, f) }
func (s *fakeSurface) PlayFrames(frames []Frame, rate float32, loop bool) {
	s.plays = append(s.plays, playCall{frames: frames, rate: rate, loop: loop})
}

func (s *fakeSurface) lastPlay(t *testing.T) playCall {
	t.Helper()
	if len(s.plays) == 0 {
		t.Fatal("expected PlayFrames to have been called")
	}
	return s.plays[len(s.plays)-1]
}

type harness struct {
	char    *Character
	surface *fakeSurface
	frames  *fakeFrames
	bus     *event.Bus
	entered []string
	reached int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	table := DefaultTable()
	h := &harness{
		surface: &fakeSurface{},
		frames:  newFakeFrames(table, 10),
		bus:     event.NewBus(),
	}
	h.bus.Subscribe(event.KindStateEntered, func(ev event.Event) {
		h.entered = append(h.entered, ev.State)
	})
	h.bus.Subscribe(event.KindTargetReached, func(event.Event) { h.reached++ })

	c, err := New(Options{
		Table:   table,
		Frames:  h.frames,
		Surface: h.surface,
		Bus:     h.bus,
		Rand:    rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.char = c
	return h
}

func (h *harness) tick(t *testing.T, delta float32) {
	t.Helper()
	if err := h.char.Update(delta); err != nil {
		t.Fatalf("Update(%v) error: %v", delta, err)
	}
}
