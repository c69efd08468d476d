package character

import (
	"fmt"

	"go.uber.org/zap"
)

// FrameRateDivisor derives a playback rate from the frame count when a state
// does not declare one.
const FrameRateDivisor = 20.0

// FrameRate returns the playback rate for a dynamic state with frameCount frames.
func FrameRate(desc StateDescriptor, frameCount int) float32 {
	if desc.FrameRate > 0 {
		return desc.FrameRate
	}
	return float32(frameCount) / FrameRateDivisor
}

// ResolveFrames looks up the sequence for (state, dir), falling back to the
// direction-less sequence of the state.
func ResolveFrames(p FrameProvider, state string, dir Direction) ([]Frame, error) {
	if dir != DirNone {
		if frames, ok := p.Frames(state, dir); ok && len(frames) > 0 {
			return frames, nil
		}
	}
	if frames, ok := p.Frames(state, DirNone); ok && len(frames) > 0 {
		return frames, nil
	}
	return nil, fmt.Errorf("%w: state %q direction %q", ErrMissingFrames, state, dir)
}

// applyAnimation pushes the frames for the current state and facing to the surface.
func (c *Character) applyAnimation() error {
	desc, err := c.table.Lookup(c.current)
	if err != nil {
		return err
	}
	frames, err := ResolveFrames(c.frames, c.current, c.facing)
	if err != nil {
		return err
	}

	if desc.Static {
		// Static sheets hold one pose per facing.
		idx := c.facing.Index()
		if idx < 0 || idx >= len(frames) {
			idx = 0
		}
		c.surface.ShowFrame(frames[idx])
		return nil
	}

	rate := FrameRate(desc, len(frames))
	c.surface.PlayFrames(frames, rate, desc.Loops())
	c.log.Debug("animation applied",
		zap.String("state", c.current),
		zap.String("facing", string(c.facing)),
		zap.Int("frames", len(frames)),
		zap.Float32("rate", rate),
		zap.Bool("loop", desc.Loops()),
	)
	return nil
}
