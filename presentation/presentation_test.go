package presentation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xenora/clipboard"
	"xenora/prefs"
	"xenora/session"
)

func TestLoadTheme(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	assert.Equal(t, session.Light, LoadTheme(ctx, store))

	require.NoError(t, store.Set(ctx, ThemeKey, "dark"))
	assert.Equal(t, session.Dark, LoadTheme(ctx, store))

	require.NoError(t, store.Set(ctx, ThemeKey, "purple"))
	assert.Equal(t, session.Light, LoadTheme(ctx, store))
}

func TestToggleThemePersists(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	state := session.New(session.Light)
	themes := NewThemes(state, store)

	got, err := themes.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Dark, got)
	assert.Equal(t, session.Dark, state.Theme())

	v, err := store.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	// a fresh session sees the persisted value
	assert.Equal(t, session.Dark, LoadTheme(ctx, store))

	got, err = themes.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Light, got)
	assert.Equal(t, session.Light, LoadTheme(ctx, store))

	// one write per toggle
	assert.Equal(t, 2, store.Writes())
}

func TestToggleThemePersistFailure(t *testing.T) {
	store := prefs.NewMemoryStore()
	store.SetErr = errors.New("disk full")
	state := session.New(session.Light)

	got, err := NewThemes(state, store).Toggle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, session.Dark, got)
	assert.Equal(t, session.Dark, state.Theme())
}

func waitCopy(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("copy did not complete")
		return nil
	}
}

func TestCopyDraftConfirmsThenExpires(t *testing.T) {
	state := session.New(session.Light)
	clip := &clipboard.Memory{}
	c := NewCopier(state, clip, 50*time.Millisecond)

	state.SetDraft("copy me")
	require.NoError(t, waitCopy(t, c.CopyDraft()))
	assert.Equal(t, "copy me", clip.Text())
	assert.True(t, state.CopyConfirmed())

	assert.Eventually(t, func() bool { return !state.CopyConfirmed() }, time.Second, 5*time.Millisecond)
}

func TestCopyDraftRestartsWindow(t *testing.T) {
	state := session.New(session.Light)
	clip := &clipboard.Memory{}
	c := NewCopier(state, clip, 200*time.Millisecond)
	state.SetDraft("x")

	require.NoError(t, waitCopy(t, c.CopyDraft()))
	time.Sleep(130 * time.Millisecond)
	require.NoError(t, waitCopy(t, c.CopyDraft()))
	time.Sleep(130 * time.Millisecond)

	// past the first window, inside the second
	assert.True(t, state.CopyConfirmed())
	assert.Eventually(t, func() bool { return !state.CopyConfirmed() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, clip.Writes())
}

func TestCopyBlankDraftIsNoop(t *testing.T) {
	state := session.New(session.Light)
	clip := &clipboard.Memory{}
	c := NewCopier(state, clip, time.Second)

	for _, draft := range []string{"", "   "} {
		state.SetDraft(draft)
		require.NoError(t, waitCopy(t, c.CopyDraft()))
	}
	assert.Equal(t, 0, clip.Writes())
	assert.False(t, state.CopyConfirmed())
}

func TestCopyFailureIsTolerated(t *testing.T) {
	state := session.New(session.Light)
	clip := &clipboard.Memory{Err: errors.New("no clipboard")}
	c := NewCopier(state, clip, time.Second)
	state.SetDraft("text")

	err := waitCopy(t, c.CopyDraft())
	assert.Error(t, err)
	assert.False(t, state.CopyConfirmed())
	assert.Equal(t, "text", state.Draft())
}

func TestStaleExpiryKeepsNewerConfirmation(t *testing.T) {
	state := session.New(session.Light)
	c := NewCopier(state, &clipboard.Memory{}, time.Minute)
	defer func() {
		c.mu.Lock()
		c.timer.Stop()
		c.mu.Unlock()
	}()

	for range 1000 {
		c.confirm()
		c.mu.Lock()
		stale := c.gen
		c.mu.Unlock()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.expire(stale)
		}()
		go func() {
			defer wg.Done()
			c.confirm()
		}()
		wg.Wait()

		require.True(t, state.CopyConfirmed())
	}
}
