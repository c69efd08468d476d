package game

import (
	"hash/fnv"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/internal/engine/input"
	"github.com/Faultbox/casper/internal/engine/window"
	"github.com/Faultbox/casper/internal/game/ai"
	"github.com/Faultbox/casper/internal/game/control"
)

// placeholder size of one frame in source pixels
const frameSize = 32

var (
	background = window.Color{R: 24, G: 24, B: 32, A: 255}
	targetMark = window.Color{R: 255, G: 255, B: 255, A: 96}
	facingMark = window.Color{R: 255, G: 255, B: 255, A: 255}
)

// intentKeys binds keys to intents.
var intentKeys = map[sdl.Keycode]ai.Intent{
	sdl.K_s: ai.IntentSit,
	sdl.K_l: ai.IntentLieDown,
	sdl.K_a: ai.IntentLookAround,
	sdl.K_d: ai.IntentDash,
}

// command maps an input event to a pet command.
func command(e input.Event) (control.Command, bool) {
	switch e.Type {
	case input.EventQuit:
		return control.Command{Kind: control.Quit}, true
	case input.EventWindowResize:
		return control.Command{Kind: control.Resize, Width: e.Width, Height: e.Height}, true
	case input.EventPointer:
		switch e.Button {
		case input.ButtonLeft:
			return control.MoveTo(e.X, e.Y, character.MoveWalk), true
		case input.ButtonRight:
			return control.MoveTo(e.X, e.Y, character.MoveRun), true
		}
	case input.EventKeyDown:
		if e.Key == sdl.K_ESCAPE {
			return control.Command{Kind: control.Quit}, true
		}
		if i, ok := intentKeys[e.Key]; ok {
			return control.Command{Kind: control.Request, Intent: i}, true
		}
	}
	return control.Command{}, false
}

// render draws the pet as a block tinted by its frame, with a facing tick
// and the current movement target.
func (g *Game) render() error {
	if err := g.window.Clear(background); err != nil {
		return err
	}

	if target, ok := g.pet.Character().Target(); ok {
		if err := g.window.FillRect(int32(target.X)-3, int32(target.Y)-3, 6, 6, targetMark); err != nil {
			return err
		}
	}

	x, y, w, h := g.sprite.Bounds(frameSize, frameSize)
	if err := g.window.FillRect(x, y, w, h, frameColor(string(g.sprite.Frame()))); err != nil {
		return err
	}

	cx, cy := x+w/2, y+h/2
	dx, dy := facingOffset(g.pet.Facing())
	return g.window.DrawLine(cx, cy, cx+dx*w/2, cy+dy*h/2, facingMark)
}

// frameColor derives a stable color from a frame handle.
func frameColor(frame string) window.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(frame))
	v := h.Sum32()
	return window.Color{
		R: 96 + uint8(v&0x7f),
		G: 96 + uint8((v>>8)&0x7f),
		B: 96 + uint8((v>>16)&0x7f),
		A: 255,
	}
}

func facingOffset(d character.Direction) (int32, int32) {
	switch d {
	case character.DirN:
		return 0, -1
	case character.DirNE:
		return 1, -1
	case character.DirE:
		return 1, 0
	case character.DirSE:
		return 1, 1
	case character.DirS:
		return 0, 1
	case character.DirSW:
		return -1, 1
	case character.DirW:
		return -1, 0
	case character.DirNW:
		return -1, -1
	}
	return 0, 0
}
