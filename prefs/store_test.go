package prefs

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/locale"
)

func testContext() context.Context {
	return log.WithContext(context.Background(), log.New(io.Discard))
}

func exerciseStore(t *testing.T, s Store) {
	ctx := testContext()

	_, ok, err := s.Language(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetLanguage(ctx, locale.EN))
	lang, ok, err := s.Language(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, locale.EN, lang)

	require.NoError(t, s.SetLanguage(ctx, locale.CN))
	lang, _, err = s.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, locale.CN, lang)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(testContext(), filepath.Join(t.TempDir(), "data", "gallery.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.db")
	ctx := testContext()

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SetLanguage(ctx, locale.EN))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	lang, ok, err := s.Language(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, locale.EN, lang)
}
