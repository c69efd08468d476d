// Package game implements the host loop that drives a pet on screen.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/casper/internal/assets"
	"github.com/Faultbox/casper/internal/config"
	"github.com/Faultbox/casper/internal/engine/audio"
	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/internal/engine/event"
	"github.com/Faultbox/casper/internal/engine/input"
	"github.com/Faultbox/casper/internal/engine/sprite"
	"github.com/Faultbox/casper/internal/engine/window"
	"github.com/Faultbox/casper/internal/game/ai"
	"github.com/Faultbox/casper/internal/game/control"
	"github.com/Faultbox/casper/internal/game/pet"
	"github.com/Faultbox/casper/internal/logger"
	"github.com/Faultbox/casper/pkg/math"
)

// Game is the running application.
type Game struct {
	cfg     *config.Config
	running bool

	window  *window.Window
	input   *input.Input
	audio   *audio.Manager
	library *assets.Library
	sprite  *sprite.Sprite
	pet     *pet.Pet
	watcher *assets.Watcher

	statesPath  string
	spritesPath string
	log         *zap.Logger
}

// New creates the window, loads assets and builds the pet.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg: cfg,
		log: logger.Named("game"),
	}

	seed := cfg.Pet.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g.log.Info("initializing",
		zap.String("pet", cfg.Pet.Name),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Uint64("seed", seed),
	)

	var err error
	g.library, err = assets.Open(cfg.Pet.SpritesFile, logger.Named("assets"))
	if err != nil {
		return nil, fmt.Errorf("loading sprites: %w", err)
	}

	table := character.DefaultTable()
	if cfg.Pet.StatesFile != "" {
		table, err = character.LoadTableFile(cfg.Pet.StatesFile)
		if err != nil {
			return nil, fmt.Errorf("loading states: %w", err)
		}
	}

	intents, err := cfg.Pet.ParsedIntents()
	if err != nil {
		return nil, err
	}

	g.audio = newAudio(cfg.Audio, g.log)

	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, logger.Named("window"))
	if err != nil {
		g.audio.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	g.input = input.New()

	w, h := g.window.Size()
	g.sprite = sprite.New(math.V2(float32(w)/2, float32(h)/2), cfg.Pet.Scale)

	g.pet, err = pet.New(pet.Options{
		Name:         cfg.Pet.Name,
		Table:        table,
		Frames:       g.library,
		Surface:      g.sprite,
		Cues:         g.audio,
		Intents:      intents,
		DashCues:     cfg.Pet.DashCues,
		Bounds:       ai.Bounds{Width: float32(w), Height: float32(h)},
		IdleTimeout:  cfg.Pet.IdleTimeout,
		SitOnArrival: cfg.Pet.SitOnArrival,
		Rand:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Logger:       logger.Named("pet"),
	})
	if err != nil {
		g.Close()
		return nil, err
	}
	g.subscribe()

	if cfg.Pet.Watch {
		if err := g.watch(); err != nil {
			g.log.Warn("hot reload disabled", zap.Error(err))
		}
	}

	g.log.Info("initialized", zap.Strings("sequences", g.library.Keys()))
	return g, nil
}

// newAudio registers the configured cues. Audio problems only cost sound.
func newAudio(cfg config.AudioConfig, log *zap.Logger) *audio.Manager {
	m := audio.New(logger.Named("audio"))
	m.SetMasterVolume(float64(cfg.MasterVolume))
	m.SetSFXVolume(float64(cfg.SFXVolume))
	m.SetMuted(cfg.Muted)

	for name, path := range cfg.Cues {
		if err := m.RegisterFile(name, path); err != nil {
			log.Warn("cue not loaded", zap.String("cue", name), zap.Error(err))
		}
	}
	if err := m.Init(); err != nil {
		log.Warn("audio unavailable", zap.Error(err))
	}
	return m
}

// subscribe logs every notification and keeps the title bar current.
func (g *Game) subscribe() {
	bus := g.pet.Bus()
	for _, kind := range []event.Kind{
		event.KindStateEntered,
		event.KindTargetReached,
		event.KindBehaviorChanged,
		event.KindIntentCompleted,
	} {
		bus.Subscribe(kind, func(e event.Event) {
			g.log.Debug("pet event", logger.EventFields(e)...)
		})
	}
	status := func(event.Event) { g.window.SetTitle(g.pet.Status()) }
	bus.Subscribe(event.KindStateEntered, status)
	bus.Subscribe(event.KindBehaviorChanged, status)
}

func (g *Game) watch() error {
	var files []string
	if p := g.cfg.Pet.StatesFile; p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		g.statesPath = abs
		files = append(files, abs)
	}
	if p := g.library.Path(); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		g.spritesPath = abs
		files = append(files, abs)
	}
	if len(files) == 0 {
		return errors.New("no states_file or sprites_file to watch")
	}

	w, err := assets.NewWatcher(files...)
	if err != nil {
		return err
	}
	g.watcher = w
	g.log.Info("watching for changes", zap.Strings("files", files))
	return nil
}

// Run drives the pet until the window is closed. Any error from the pet is
// returned and ends the loop.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if g.cfg.Window.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(g.cfg.Window.FPSLimit)
	}

	g.log.Info("starting loop")

	for g.running {
		now := time.Now()
		elapsed := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		for _, e := range g.input.Events() {
			cmd, ok := command(e)
			if !ok {
				continue
			}
			if cmd.Kind == control.Quit {
				g.running = false
				break
			}
			if err := control.Apply(g.pet, cmd); err != nil {
				return fmt.Errorf("update error: %w", err)
			}
		}
		if !g.running {
			break
		}

		// 2. Apply file changes between ticks
		g.drainWatcher()

		// 3. Update the pet
		if err := g.update(control.TickDelta(elapsed, g.cfg.Pet.TicksPerSecond)); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		// 4. Render
		if err := g.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		g.window.Present()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", elapsed))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spare := frameBudget - time.Since(now); spare > 0 {
				time.Sleep(spare)
			}
		}
	}

	return nil
}

// Close releases the window, audio and watcher.
func (g *Game) Close() {
	g.log.Info("closing")

	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.audio != nil {
		g.audio.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}

// update advances sprite playback, then the pet.
func (g *Game) update(delta float32) error {
	if g.sprite.Update(delta) {
		if err := g.pet.OnAnimationCycleComplete(); err != nil {
			return err
		}
	}
	return g.pet.OnTick(delta)
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name := <-g.watcher.Events:
			g.reload(name)
		case err := <-g.watcher.Errors:
			g.log.Warn("watcher error", zap.Error(err))
		default:
			return
		}
	}
}

// reload applies a changed file. A broken file is logged and the previous
// contents stay in use.
func (g *Game) reload(name string) {
	switch name {
	case g.statesPath:
		table, err := character.LoadTableFile(name)
		if err == nil {
			err = g.pet.SetTable(table)
		}
		if err != nil {
			g.log.Error("state table not reloaded", zap.String("path", name), zap.Error(err))
		}
	case g.spritesPath:
		candidate, err := assets.Open(name, nil)
		if err == nil {
			err = candidate.Covers(g.pet.Character().Table())
		}
		if err != nil {
			g.log.Error("sprites not reloaded", zap.String("path", name), zap.Error(err))
			return
		}
		if err := g.library.Reload(); err != nil {
			g.log.Error("sprites not reloaded", zap.String("path", name), zap.Error(err))
			return
		}
		if err := g.pet.RefreshFrames(); err != nil {
			g.log.Error("sprites missing after reload", zap.String("path", name), zap.Error(err))
		}
	}
}
