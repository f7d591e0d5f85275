// Package presentation owns the display-only state transitions: theme
// toggling and the copy-to-clipboard confirmation.
package presentation

import (
	"context"
	"errors"

	"xenora/log"
	"xenora/prefs"
	"xenora/session"
)

const ThemeKey = "theme"

// LoadTheme reads the persisted theme. Missing or unreadable values
// yield Light.
func LoadTheme(ctx context.Context, store prefs.Store) session.Theme {
	v, err := store.Get(ctx, ThemeKey)
	if err != nil {
		if !errors.Is(err, prefs.ErrNotFound) {
			log.Warnf("load theme: %v", err)
		}
		return session.Light
	}
	return session.ParseTheme(v)
}

type Themes struct {
	state *session.State
	store prefs.Store
}

func NewThemes(state *session.State, store prefs.Store) *Themes {
	return &Themes{state: state, store: store}
}

// Toggle flips the theme and persists it before returning. A failed write
// leaves the new theme in effect for this session.
func (t *Themes) Toggle(ctx context.Context) (session.Theme, error) {
	theme := t.state.Theme().Flip()
	t.state.SetTheme(theme)
	if err := t.store.Set(ctx, ThemeKey, string(theme)); err != nil {
		log.Errorf("persist theme: %v", err)
		return theme, err
	}
	log.Info("theme " + string(theme))
	return theme, nil
}
