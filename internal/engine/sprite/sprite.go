// Package sprite holds the on-screen presentation of an animated character.
package sprite

import (
	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/pkg/math"
)

// Sprite is a positioned frame player. It implements character.Surface.
type Sprite struct {
	pos    math.Vec2
	Scale  float32
	Anchor math.Vec2

	frames  []character.Frame
	rate    float32 // frames advanced per tick
	loop    bool
	cursor  float32
	playing bool
}

var _ character.Surface = (*Sprite)(nil)

// New creates a sprite at pos, centred on its anchor.
func New(pos math.Vec2, scale float32) *Sprite {
	if scale <= 0 {
		scale = 1
	}
	return &Sprite{
		pos:    pos,
		Scale:  scale,
		Anchor: math.V2(0.5, 0.5),
	}
}

// Position returns the sprite's anchor position.
func (s *Sprite) Position() math.Vec2 { return s.pos }

// SetPosition moves the sprite.
func (s *Sprite) SetPosition(p math.Vec2) { s.pos = p }

// ShowFrame stops playback and displays a single frame.
func (s *Sprite) ShowFrame(f character.Frame) {
	s.frames = []character.Frame{f}
	s.rate = 0
	s.loop = false
	s.cursor = 0
	s.playing = false
}

// PlayFrames starts a sequence from its first frame.
func (s *Sprite) PlayFrames(frames []character.Frame, rate float32, loop bool) {
	s.frames = append(s.frames[:0:0], frames...)
	s.rate = rate
	s.loop = loop
	s.cursor = 0
	s.playing = len(frames) > 0
}

// Update advances playback by delta ticks. It returns true on the tick a
// non-looping sequence finishes; the last frame stays on screen.
func (s *Sprite) Update(delta float32) bool {
	if !s.playing || s.rate <= 0 {
		return false
	}

	n := float32(len(s.frames))
	s.cursor += s.rate * delta
	if s.cursor < n {
		return false
	}

	if s.loop {
		for s.cursor >= n {
			s.cursor -= n
		}
		return false
	}

	s.cursor = n - 1
	s.playing = false
	return true
}

// Frame returns the frame currently on screen, or "" when nothing is loaded.
func (s *Sprite) Frame() character.Frame {
	if len(s.frames) == 0 {
		return ""
	}
	i := int(s.cursor)
	if i >= len(s.frames) {
		i = len(s.frames) - 1
	}
	return s.frames[i]
}

// FrameIndex returns the cursor position within the current sequence.
func (s *Sprite) FrameIndex() int { return int(s.cursor) }

// Playing reports whether a sequence is advancing.
func (s *Sprite) Playing() bool { return s.playing }

// Looping reports whether the current sequence repeats.
func (s *Sprite) Looping() bool { return s.loop }

// Bounds returns the screen rectangle for a frame of w by h source pixels.
func (s *Sprite) Bounds(w, h int) (x, y, bw, bh int32) {
	sw := float32(w) * s.Scale
	sh := float32(h) * s.Scale
	return int32(s.pos.X - sw*s.Anchor.X), int32(s.pos.Y - sh*s.Anchor.Y), int32(sw), int32(sh)
}
