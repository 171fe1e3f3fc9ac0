package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// FromSeed converts a catalog.seed item. Zero volume and pitch take the
// defaults; use mute for silence.
func FromSeed(s config.SoundSeed) Entry {
	st := sound.DefaultSettings()
	if s.Volume != 0 {
		st.Volume = s.Volume
	}
	if s.Pitch != 0 {
		st.Pitch = s.Pitch
	}
	st.Loop = s.Loop
	st.Bus = s.Bus
	st.Spatial.Blend = s.Blend
	return Entry{Name: s.Name, Path: s.Path, Settings: st, Autoplay: s.Autoplay}
}

// Seed creates the seed entries missing from the catalog and returns how
// many were added. Existing entries are left alone so API edits survive
// restarts.
func Seed(ctx context.Context, repo Repository, seeds []config.SoundSeed) (int, error) {
	added := 0
	for _, s := range seeds {
		e := FromSeed(s)
		err := repo.Create(ctx, &e)
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrExists):
		default:
			return added, fmt.Errorf("seeding %q: %w", s.Name, err)
		}
	}
	return added, nil
}

// Loader is the part of sound.Commands Restore needs.
type Loader interface {
	AddSoundFromPath(name, path string, s sound.Settings) sound.Code
	Play(name string, sel sound.Selector) sound.Code
}

// Restore registers every catalog entry with the manager and starts the
// autoplay ones. Entries that fail keep the service running; their codes
// are returned by name.
func Restore(ctx context.Context, repo Repository, into Loader) (map[string]sound.Code, error) {
	entries, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	failed := make(map[string]sound.Code)
	for _, e := range entries {
		code := into.AddSoundFromPath(e.Name, e.Path, e.Settings)
		if code == sound.OK && e.Autoplay {
			code = into.Play(e.Name, sound.Parent)
		}
		if code != sound.OK {
			failed[e.Name] = code
		}
	}
	return failed, nil
}
