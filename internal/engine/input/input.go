// Package input collects SDL2 window and pointer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventPointer
)

// Button is a pointer button.
type Button uint8

const (
	ButtonLeft   Button = sdl.BUTTON_LEFT
	ButtonMiddle Button = sdl.BUTTON_MIDDLE
	ButtonRight  Button = sdl.BUTTON_RIGHT
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Keycode
	Width  int
	Height int
	X, Y   float32
	Button Button
}

// Input polls SDL once per frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls pending SDL events. It returns true if the window was closed.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Sym,
				})
			}

		case *sdl.MouseButtonEvent:
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.events = append(i.events, Event{
					Type:   EventPointer,
					X:      float32(e.X),
					Y:      float32(e.Y),
					Button: Button(e.Button),
				})
			}
		}
	}

	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
