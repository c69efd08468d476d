package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/casper/internal/engine/character"
	"github.com/Faultbox/casper/pkg/math"
)

func TestDefaultManifestCoversDefaultTable(t *testing.T) {
	lib := NewLibrary(DefaultManifest())
	if err := lib.Covers(character.DefaultTable()); err != nil {
		t.Errorf("default manifest does not cover default table: %v", err)
	}
}

func TestDirectionalSequences(t *testing.T) {
	lib := NewLibrary(DefaultManifest())

	frames, ok := lib.Frames(character.StateWalking, character.DirNE)
	if !ok {
		t.Fatal("expected walking_NE")
	}
	if len(frames) != 8 {
		t.Errorf("walking frames = %d, want 8", len(frames))
	}
	if frames[0] != "walking_ne_00" || frames[7] != "walking_ne_07" {
		t.Errorf("unexpected frame names %v", frames)
	}

	if _, ok := lib.Frames(character.StateWalking, character.DirNone); ok {
		t.Error("directional sheet should have no direction-less key")
	}
}

func TestStaticSequences(t *testing.T) {
	lib := NewLibrary(DefaultManifest())

	if _, ok := lib.Frames(character.StateSitting, character.DirS); ok {
		t.Error("static sheet should not have per-direction keys")
	}
	frames, err := character.ResolveFrames(lib, character.StateSitting, character.DirSW)
	if err != nil {
		t.Fatalf("ResolveFrames() error: %v", err)
	}
	if len(frames) != len(character.Directions) {
		t.Errorf("static sheet has %d poses, want one per facing", len(frames))
	}
}

// Every facing of a state has the same number of frames, so the sequence
// length never depends on the direction resolved from movement.
func TestSequenceLengthIndependentOfDirection(t *testing.T) {
	lib := NewLibrary(DefaultManifest())
	vectors := []math.Vec2{
		math.V2(0, 1), math.V2(-1, 1), math.V2(-1, 0), math.V2(-1, -1),
		math.V2(0, -1), math.V2(1, -1), math.V2(1, 0), math.V2(1, 1),
	}

	for _, state := range character.DefaultTable().Names() {
		want := -1
		for _, v := range vectors {
			dir := character.ResolveDirection(v.Normalize())
			frames, err := character.ResolveFrames(lib, state, dir)
			if err != nil {
				t.Fatalf("%s/%s: %v", state, dir, err)
			}
			if want < 0 {
				want = len(frames)
				continue
			}
			if len(frames) != want {
				t.Errorf("%s/%s has %d frames, want %d", state, dir, len(frames), want)
			}
		}
	}
}

func TestKeysAndStats(t *testing.T) {
	lib := NewLibrary(&Manifest{Sheets: map[string]Sheet{
		"blink": {Frames: 2},
		"hop":   {Frames: 3, Directional: true},
	}})

	keys := lib.Keys()
	if len(keys) != 9 {
		t.Fatalf("keys = %v, want 9", keys)
	}
	if keys[0] != "blink" {
		t.Errorf("keys not sorted: %v", keys)
	}

	lib.Frames("hop", character.DirS)
	lib.Frames("hop", character.DirNone)
	hits, misses := lib.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d/%d, want 1/1", hits, misses)
	}
}

func TestParseManifestInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "sheets: {}\n"},
		{"zero frames", "sheets:\n  walking: {frames: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseManifest([]byte(tt.yaml)); !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("expected ErrInvalidManifest, got %v", err)
			}
		})
	}
	if _, err := ParseManifest([]byte("sheets: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestOpenAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprites.yaml")
	if err := os.WriteFile(path, []byte("sheets:\n  walking: {frames: 4, directional: true}\n"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	lib, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if lib.Path() != path {
		t.Errorf("path = %s", lib.Path())
	}
	frames, _ := lib.Frames("walking", character.DirW)
	if len(frames) != 4 {
		t.Errorf("frames = %d, want 4", len(frames))
	}

	if err := os.WriteFile(path, []byte("sheets:\n  walking: {frames: 6, directional: true}\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite manifest: %v", err)
	}
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	frames, _ = lib.Frames("walking", character.DirW)
	if len(frames) != 6 {
		t.Errorf("frames after reload = %d, want 6", len(frames))
	}

	// A broken edit keeps the previous sequences.
	if err := os.WriteFile(path, []byte("sheets: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := lib.Reload(); err == nil {
		t.Error("expected reload error")
	}
	if frames, _ := lib.Frames("walking", character.DirW); len(frames) != 6 {
		t.Errorf("failed reload dropped sequences")
	}
}

func TestOpenEmbedded(t *testing.T) {
	lib, err := Open("", nil)
	if err != nil {
		t.Fatalf("Open(\"\") error: %v", err)
	}
	if lib.Path() != "" {
		t.Errorf("embedded library has path %q", lib.Path())
	}
	if err := lib.Reload(); err != nil {
		t.Errorf("reloading embedded manifest: %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open("/nonexistent/sprites.yaml", nil); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "states.yaml")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(other, []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}

	want, _ := filepath.Abs(path)
	select {
	case got := <-w.Events:
		if got != want {
			t.Errorf("event for %s, want %s", got, want)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}
