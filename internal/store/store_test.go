package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/store"
)

func stores(t *testing.T) map[string]store.Store {
	t.Helper()

	badgerStore, err := store.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerStore.Close() })

	return map[string]store.Store{
		"badger": badgerStore,
		"memory": store.NewMemoryStore(),
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.History(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			want := []string{"#6366F1", "#000000"}
			require.NoError(t, s.SaveHistory(ctx, want))

			got, err := s.History(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			require.NoError(t, s.SaveHistory(ctx, nil))
			got, err = s.History(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestPreferencesDefaultsAndSave(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			prefs, err := s.Preferences(ctx)
			require.NoError(t, err)
			assert.Equal(t, store.DefaultPreferences(), prefs)

			update := store.Preferences{Theme: store.ThemeDark, CopyFormat: colour.FormatHSL}
			require.NoError(t, s.SavePreferences(ctx, update))

			prefs, err = s.Preferences(ctx)
			require.NoError(t, err)
			assert.Equal(t, update, prefs)
		})
	}
}

func TestSavePreferencesRejectsInvalid(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	err := s.SavePreferences(ctx, store.Preferences{Theme: "sepia", CopyFormat: colour.FormatHex})
	assert.Error(t, err)

	err = s.SavePreferences(ctx, store.Preferences{Theme: store.ThemeDark, CopyFormat: "cmyk"})
	assert.Error(t, err)

	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultPreferences(), prefs, "rejected save must not change state")
}

func TestCancelledContext(t *testing.T) {
	s := store.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.History(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.SaveHistory(ctx, []string{"#FFFFFF"}), context.Canceled)
}

func TestBadgerPersistsAcrossOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	s, err := store.Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.SaveHistory(ctx, []string{"#112233"}))
	require.NoError(t, s.SavePreferences(ctx, store.Preferences{Theme: store.ThemeDark, CopyFormat: colour.FormatRGB}))
	require.NoError(t, s.Close())

	reopened, err := store.Open(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	history, err := reopened.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#112233"}, history)

	prefs, err := reopened.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.ThemeDark, prefs.Theme)
	assert.Equal(t, colour.FormatRGB, prefs.CopyFormat)
}

func TestParseTheme(t *testing.T) {
	theme, err := store.ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, store.ThemeDark, theme)

	_, err = store.ParseTheme("Dark")
	assert.Error(t, err)
}

func TestDefaultPreferencesOption(t *testing.T) {
	ctx := context.Background()
	defaults := store.Preferences{Theme: store.ThemeDark, CopyFormat: colour.FormatRGB}
	s := store.NewMemoryStore(store.WithDefaultPreferences(defaults))

	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaults, prefs)

	require.NoError(t, s.SavePreferences(ctx, store.Preferences{Theme: store.ThemeLight, CopyFormat: colour.FormatHSL}))
	prefs, err = s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.ThemeLight, prefs.Theme)
	assert.Equal(t, colour.FormatHSL, prefs.CopyFormat)
}
