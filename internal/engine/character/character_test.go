package character

import (
	"errors"
	"testing"

	"github.com/Faultbox/casper/internal/engine/event"
	"github.com/Faultbox/casper/pkg/math"
)

func TestFirstUpdateEntersDefaultState(t *testing.T) {
	h := newHarness(t)
	if h.char.State() != "" {
		t.Fatalf("state before first tick = %q, want empty", h.char.State())
	}
	if h.char.Facing() != DirS {
		t.Errorf("initial facing = %q, want S", h.char.Facing())
	}

	h.tick(t, 1)

	if h.char.State() != StateSittingDown {
		t.Errorf("state = %q, want %q", h.char.State(), StateSittingDown)
	}
	if h.char.PreviousState() != StateSittingDown {
		t.Errorf("previous = %q, want %q", h.char.PreviousState(), StateSittingDown)
	}
	switch h.char.Facing() {
	case DirS, DirSW, DirSE:
	default:
		t.Errorf("default state should face south, got %q", h.char.Facing())
	}

	play := h.surface.lastPlay(t)
	if play.loop {
		t.Error("sitting_down should not loop")
	}
	if play.rate != 0.5 {
		t.Errorf("rate = %v, want 10 frames / 20", play.rate)
	}
	if want := Frame("sitting_down_" + string(h.char.Facing()) + "_0"); play.frames[0] != want {
		t.Errorf("first frame = %s, want %s", play.frames[0], want)
	}
	if len(h.entered) != 1 || h.entered[0] != StateSittingDown {
		t.Errorf("entered events = %v", h.entered)
	}
	if h.char.StateTimer() != 1 {
		t.Errorf("state timer = %v, want 1", h.char.StateTimer())
	}
}

func TestStateTimerAccumulatesAndResets(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	h.tick(t, 2.5)
	if h.char.StateTimer() != 3.5 {
		t.Errorf("timer = %v, want 3.5", h.char.StateTimer())
	}

	if err := h.char.SetState(StateLookingAround); err != nil {
		t.Fatal(err)
	}
	if h.char.StateTimer() != 0 {
		t.Errorf("timer after SetState = %v, want 0", h.char.StateTimer())
	}
	h.tick(t, 1)
	if h.char.StateTimer() != 1 {
		t.Errorf("timer = %v, want 1", h.char.StateTimer())
	}
}

func TestAnimationCompleteFollowsPostState(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	h.entered = nil
	facing := h.char.Facing()

	if err := h.char.AnimationComplete(); err != nil {
		t.Fatalf("AnimationComplete() error: %v", err)
	}

	if h.char.State() != StateSitting {
		t.Errorf("state = %q, want %q", h.char.State(), StateSitting)
	}
	if len(h.entered) != 1 || h.entered[0] != StateSitting {
		t.Errorf("entered events = %v, want exactly [sitting]", h.entered)
	}
	if len(h.surface.shown) != 1 {
		t.Fatalf("ShowFrame calls = %d, want 1", len(h.surface.shown))
	}
	want := Frame("sitting_" + itoa(facing.Index()))
	if h.surface.shown[0] != want {
		t.Errorf("static frame = %s, want %s", h.surface.shown[0], want)
	}

	// The next tick must not re-enter.
	h.tick(t, 1)
	if len(h.entered) != 1 {
		t.Errorf("state re-entered on tick: %v", h.entered)
	}
}

func TestAnimationCompleteLoopingStateStays(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	if err := h.char.SetMovementTarget(math.V2(500, 500), MoveWalk); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 1)
	h.entered = nil

	for i := 0; i < 3; i++ {
		if err := h.char.AnimationComplete(); err != nil {
			t.Fatal(err)
		}
	}
	if h.char.State() != StateWalking {
		t.Errorf("state = %q, want walking", h.char.State())
	}
	if len(h.entered) != 0 {
		t.Errorf("looping state fired entries: %v", h.entered)
	}
}

func TestAnimationCompleteIgnoredWhileStateChangePending(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	h.entered = nil

	if err := h.char.SetState(StateLayingDown); err != nil {
		t.Fatal(err)
	}
	// The sitting_down sequence ends before laying_down has been entered.
	if err := h.char.AnimationComplete(); err != nil {
		t.Fatalf("AnimationComplete() error: %v", err)
	}
	if h.char.State() != StateLayingDown {
		t.Errorf("state = %q, want %q still pending", h.char.State(), StateLayingDown)
	}

	h.tick(t, 1)
	if len(h.entered) != 1 || h.entered[0] != StateLayingDown {
		t.Fatalf("entered = %v, want [laying_down]", h.entered)
	}
	if play := h.surface.lastPlay(t); play.frames[0] != Frame("laying_down_"+string(h.char.Facing())+"_0") {
		t.Errorf("playing %s, want the laying_down sequence", play.frames[0])
	}

	// Its own completion then moves on to laying.
	if err := h.char.AnimationComplete(); err != nil {
		t.Fatal(err)
	}
	if h.char.State() != StateLaying {
		t.Errorf("state = %q, want %q", h.char.State(), StateLaying)
	}
}

func TestAnimationCompleteIgnoredAfterReset(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	if err := h.char.ResetToDefault(); err != nil {
		t.Fatal(err)
	}
	if err := h.char.AnimationComplete(); err != nil {
		t.Fatal(err)
	}
	if h.char.State() != StateSittingDown {
		t.Errorf("state = %q, want sitting_down awaiting re-entry", h.char.State())
	}
}

func TestAnimationCompleteBeforeFirstTick(t *testing.T) {
	h := newHarness(t)
	if err := h.char.AnimationComplete(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if h.char.State() != "" {
		t.Errorf("state = %q, want empty", h.char.State())
	}
}

func TestMovementUpdatesPositionAndFacing(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)

	if err := h.char.SetMovementTarget(math.V2(0, -200), MoveRun); err != nil {
		t.Fatal(err)
	}
	if h.char.State() != StateRunning {
		t.Fatalf("state = %q, want running", h.char.State())
	}

	h.tick(t, 1)

	if h.char.Facing() != DirN {
		t.Errorf("facing = %q, want N", h.char.Facing())
	}
	if got := h.surface.pos; got != math.V2(0, -15) {
		t.Errorf("position = %v, want (0,-15)", got)
	}
	play := h.surface.lastPlay(t)
	if !play.loop || play.frames[0] != "running_N_0" {
		t.Errorf("expected looping running_N, got %+v", play)
	}
}

func TestFacingChangeReselectsAnimation(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	if err := h.char.SetMovementTarget(math.V2(300, 0), MoveWalk); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 1) // enters walking, then turns east
	plays := len(h.surface.plays)

	h.tick(t, 1) // still east, no re-selection
	if len(h.surface.plays) != plays {
		t.Errorf("animation re-selected without a facing change")
	}

	if err := h.char.SetMovementTarget(math.V2(2, 300), MoveWalk); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 1)
	if h.char.Facing() != DirS {
		t.Errorf("facing = %q, want S", h.char.Facing())
	}
	if h.surface.lastPlay(t).frames[0] != "walking_S_0" {
		t.Errorf("expected walking_S frames, got %v", h.surface.lastPlay(t).frames[0])
	}
}

func TestArrivalClearsTargetAndNotifies(t *testing.T) {
	h := newHarness(t)
	h.surface.pos = math.V2(95, 3)
	h.tick(t, 1)

	if err := h.char.SetMovementTarget(math.V2(100, 0), MoveWalk); err != nil {
		t.Fatal(err)
	}
	var reachedAt math.Vec2
	h.bus.Subscribe(event.KindTargetReached, func(ev event.Event) { reachedAt = ev.Position })

	h.tick(t, 1)

	if h.char.HasTarget() {
		t.Error("target should be cleared on arrival")
	}
	if h.reached != 1 {
		t.Errorf("target reached events = %d, want 1", h.reached)
	}
	if reachedAt != math.V2(100, 0) {
		t.Errorf("event position = %v", reachedAt)
	}
	if h.surface.pos != math.V2(95, 3) {
		t.Errorf("arrival moved the surface to %v", h.surface.pos)
	}
}

func TestStaticStateIgnoresTarget(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	if err := h.char.SetMovementTarget(math.V2(400, 400), MoveWalk); err != nil {
		t.Fatal(err)
	}
	if err := h.char.SetState(StateSitting); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 1)
	if h.surface.pos != (math.Vec2{}) {
		t.Errorf("static state moved to %v", h.surface.pos)
	}
}

func TestResetToDefaultReenters(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	h.entered = nil

	if err := h.char.ResetToDefault(); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 1)

	if len(h.entered) != 1 || h.entered[0] != StateSittingDown {
		t.Errorf("entered = %v, want [sitting_down]", h.entered)
	}
}

func TestSetStateUnknown(t *testing.T) {
	h := newHarness(t)
	if err := h.char.SetState("flying"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("expected ErrUnknownState, got %v", err)
	}
}

func TestMissingFramesSurfaced(t *testing.T) {
	h := newHarness(t)
	delete(h.frames.seqs, frameKey(StateSittingDown, DirS))
	delete(h.frames.seqs, frameKey(StateSittingDown, DirSW))
	delete(h.frames.seqs, frameKey(StateSittingDown, DirSE))

	err := h.char.Update(1)
	if !errors.Is(err, ErrMissingFrames) {
		t.Errorf("expected ErrMissingFrames, got %v", err)
	}
}

func TestResolveFramesFallsBackToDirectionless(t *testing.T) {
	f := &fakeFrames{seqs: map[string][]Frame{
		"looking_around": {"a", "b"},
	}}
	frames, err := ResolveFrames(f, "looking_around", DirNE)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("frames = %v", frames)
	}

	if _, err := ResolveFrames(f, "running", DirNE); !errors.Is(err, ErrMissingFrames) {
		t.Errorf("expected ErrMissingFrames, got %v", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{Surface: &fakeSurface{}}); err == nil {
		t.Error("expected error without frame provider")
	}
	if _, err := New(Options{Frames: &fakeFrames{}}); err == nil {
		t.Error("expected error without surface")
	}
	bad := DefaultTable()
	bad.Default = "ghost"
	if _, err := New(Options{Frames: &fakeFrames{}, Surface: &fakeSurface{}, Table: bad}); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable, got %v", err)
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func TestSetTableReentersCurrentState(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	h.entered = nil

	next := DefaultTable()
	desc := next.States[StateSittingDown]
	desc.FrameRate = 2
	next.States[StateSittingDown] = desc
	if err := h.char.SetTable(next); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 1)

	if len(h.entered) != 1 || h.entered[0] != StateSittingDown {
		t.Errorf("entered = %v, want [sitting_down]", h.entered)
	}
	if rate := h.surface.lastPlay(t).rate; rate != 2 {
		t.Errorf("rate = %v, want 2 from the new table", rate)
	}
}

func TestSetTableDropsRemovedState(t *testing.T) {
	h := newHarness(t)
	h.tick(t, 1)
	if err := h.char.SetState(StateLookingAround); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 1)

	next := DefaultTable()
	delete(next.States, StateLookingAround)
	if err := h.char.SetTable(next); err != nil {
		t.Fatal(err)
	}
	if h.char.State() != StateSittingDown {
		t.Errorf("state = %q, want default after its state was removed", h.char.State())
	}

	bad := DefaultTable()
	bad.Default = ""
	if err := h.char.SetTable(bad); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable, got %v", err)
	}
	if h.char.Table() != next {
		t.Error("invalid table replaced the current one")
	}
}

func TestRefreshReappliesFrames(t *testing.T) {
	h := newHarness(t)
	if err := h.char.Refresh(); err != nil {
		t.Fatalf("Refresh() before first tick: %v", err)
	}
	if len(h.surface.plays) != 0 {
		t.Error("Refresh() before first tick touched the surface")
	}

	h.tick(t, 1)
	before := len(h.surface.plays)
	if err := h.char.Refresh(); err != nil {
		t.Fatal(err)
	}
	if len(h.surface.plays) != before+1 {
		t.Errorf("plays = %d, want %d", len(h.surface.plays), before+1)
	}
}
