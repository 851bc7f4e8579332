package connection

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larre/services"
)

func newTestPreferences(t *testing.T) *PreferenceDB {
	t.Helper()
	db, err := OpenPreferences(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPreferencesGetPut(t *testing.T) {
	ctx := context.Background()
	db := newTestPreferences(t)

	_, ok, err := db.Get(ctx, "larre-theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Put(ctx, "larre-theme", []byte(`{"isDark":true}`)))
	require.NoError(t, db.Put(ctx, "larre-theme", []byte(`{"isDark":false}`)))

	value, ok, err := db.Get(ctx, "larre-theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"isDark":false}`, string(value))
}

func TestOpenPreferencesRequiresPath(t *testing.T) {
	_, err := OpenPreferences("")
	assert.Error(t, err)
}

func TestPreferencesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	db, err := OpenPreferences(path)
	require.NoError(t, err)
	settings, err := services.LoadSettings(ctx, db)
	require.NoError(t, err)
	_, err = settings.ToggleTheme(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenPreferences(path)
	require.NoError(t, err)
	defer db.Close()

	settings, err = services.LoadSettings(ctx, db)
	require.NoError(t, err)
	assert.True(t, settings.Current().Dark)
	assert.Equal(t, []string{"dark"}, settings.RootClasses())
}
