package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)

	_, err = s.Get(ctx, "theme")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	require.NoError(t, s.Set(ctx, "theme", "light"))
	v, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)
	require.NoError(t, s.Close())

	// survives reopen
	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()
	v, err = s2.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Get(ctx, "theme")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "theme", "dark"))
	v, err := m.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
	assert.Equal(t, 1, m.Writes())

	m.SetErr = errors.New("read-only")
	assert.Error(t, m.Set(ctx, "theme", "light"))
	assert.Equal(t, 1, m.Writes())
}
