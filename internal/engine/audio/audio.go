// Package audio plays named sound cues.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// Cue errors.
var (
	ErrUnknownCue     = errors.New("unknown cue")
	ErrNotInitialized = errors.New("audio not initialized")
)

// Manager plays registered WAV cues by name. One instance of a cue plays at
// a time; playing a cue again restarts it.
type Manager struct {
	mu sync.Mutex

	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer

	cues    map[string][]byte
	playing map[string]*beep.Ctrl

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolume    float64
	muted        bool

	log *zap.Logger
}

// New creates an audio manager. Cues can be registered before Init.
func New(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sampleRate:   DefaultSampleRate,
		mixer:        &beep.Mixer{},
		cues:         make(map[string][]byte),
		playing:      make(map[string]*beep.Ctrl),
		masterVolume: 1.0,
		sfxVolume:    1.0,
		log:          log,
	}
}

// Init opens the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30))
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)

	m.initialized = true
	return nil
}

// Close stops all cues and releases the speaker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	m.playing = make(map[string]*beep.Ctrl)
	m.initialized = false
}

// Register stores WAV data under name, replacing any previous cue.
func (m *Manager) Register(name string, data []byte) error {
	streamer, _, err := decode(data)
	if err != nil {
		return fmt.Errorf("cue %q: %w", name, err)
	}
	_ = streamer.Close()

	m.mu.Lock()
	m.cues[name] = data
	m.mu.Unlock()
	return nil
}

// RegisterFile reads a WAV file and registers it under name.
func (m *Manager) RegisterFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cue %q: %w", name, err)
	}
	return m.Register(name, data)
}

// Has reports whether a cue is registered.
func (m *Manager) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cues[name]
	return ok
}

// Play starts the named cue.
func (m *Manager) Play(name string) error {
	m.mu.Lock()
	data, ok := m.cues[name]
	initialized := m.initialized
	vol := m.masterVolume * m.sfxVolume
	muted := m.muted
	prev := m.playing[name]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCue, name)
	}
	if !initialized {
		return ErrNotInitialized
	}
	if muted {
		return nil
	}

	streamer, format, err := decode(data)
	if err != nil {
		return fmt.Errorf("cue %q: %w", name, err)
	}

	var resampled beep.Streamer = streamer
	if format.SampleRate != m.sampleRate {
		resampled = beep.Resample(4, format.SampleRate, m.sampleRate, streamer)
	}

	ctrl := &beep.Ctrl{
		Streamer: &effects.Volume{
			Streamer: resampled,
			Base:     2,
			Volume:   volumeToDb(vol),
			Silent:   vol <= 0,
		},
	}

	speaker.Lock()
	if prev != nil {
		prev.Paused = true
	}
	m.mixer.Add(ctrl)
	speaker.Unlock()

	m.mu.Lock()
	m.playing[name] = ctrl
	m.mu.Unlock()

	m.log.Debug("cue playing", zap.String("cue", name))
	return nil
}

// Stop silences the named cue if it is playing.
func (m *Manager) Stop(name string) {
	m.mu.Lock()
	ctrl := m.playing[name]
	delete(m.playing, name)
	m.mu.Unlock()

	if ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Paused = true
	speaker.Unlock()
	m.log.Debug("cue stopped", zap.String("cue", name))
}

// IsPlaying reports whether the named cue was started and not stopped.
func (m *Manager) IsPlaying(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.playing[name]
	return ok
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// SetSFXVolume sets the cue volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolume = clamp(vol, 0, 1)
}

// SetMuted suppresses new cues while true.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// MasterVolume returns the master volume.
func (m *Manager) MasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.masterVolume
}

// SFXVolume returns the cue volume.
func (m *Manager) SFXVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sfxVolume
}

func decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode wav: %w", err)
	}
	return streamer, format, nil
}

// volumeToDb converts a 0-1 volume to the base-2 exponent effects.Volume uses.
// vol=1 -> 0, vol=0.5 -> -1, vol=0.25 -> -2.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
