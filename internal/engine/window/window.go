// Package window handles the SDL2 window and its 2D renderer.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
)

func init() {
	// SDL video calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Color is an RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Window wraps an SDL2 window and renderer.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	renderer  *sdl.Renderer
	log       *zap.Logger
}

// New creates a window with an accelerated renderer.
func New(cfg Config, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Window{
		config: cfg,
		log:    log,
	}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	rflags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		rflags |= sdl.RENDERER_PRESENTVSYNC
	}
	w.renderer, err = sdl.CreateRenderer(w.sdlWindow, -1, rflags)
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateRenderer failed: %w", err)
	}
	if err := w.renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		log.Warn("failed to enable blending", zap.Error(err))
	}

	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)

	return w, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.renderer != nil {
		_ = w.renderer.Destroy()
	}
	if w.sdlWindow != nil {
		_ = w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

// Clear fills the back buffer with c.
func (w *Window) Clear(c Color) error {
	if err := w.renderer.SetDrawColor(c.R, c.G, c.B, c.A); err != nil {
		return err
	}
	return w.renderer.Clear()
}

// FillRect draws a filled rectangle.
func (w *Window) FillRect(x, y, width, height int32, c Color) error {
	if err := w.renderer.SetDrawColor(c.R, c.G, c.B, c.A); err != nil {
		return err
	}
	return w.renderer.FillRect(&sdl.Rect{X: x, Y: y, W: width, H: height})
}

// DrawLine draws a line segment.
func (w *Window) DrawLine(x1, y1, x2, y2 int32, c Color) error {
	if err := w.renderer.SetDrawColor(c.R, c.G, c.B, c.A); err != nil {
		return err
	}
	return w.renderer.DrawLine(x1, y1, x2, y2)
}

// Present shows the back buffer.
func (w *Window) Present() {
	w.renderer.Present()
}

// Size returns the current window size.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GetSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
