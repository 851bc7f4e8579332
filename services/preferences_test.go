package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larre/model"
)

type memPrefs struct {
	mu     sync.Mutex
	values map[string][]byte
	putErr error
	delay  time.Duration
}

func newMemPrefs() *memPrefs {
	return &memPrefs{values: map[string][]byte{}}
}

func (m *memPrefs) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memPrefs) Put(_ context.Context, key string, value []byte) error {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.values[key] = value
	return nil
}

func TestSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(context.Background(), newMemPrefs())
	require.NoError(t, err)

	assert.Equal(t, model.Preferences{}, s.Current())
	assert.Empty(t, s.RootClasses())
}

func TestSettingsThemeDoubleToggle(t *testing.T) {
	ctx := context.Background()
	store := newMemPrefs()
	s, err := LoadSettings(ctx, store)
	require.NoError(t, err)

	prefs, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.True(t, prefs.Dark)
	assert.Equal(t, []string{"dark"}, s.RootClasses())
	assert.JSONEq(t, `{"isDark":true}`, string(store.values[ThemeKey]))

	prefs, err = s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.False(t, prefs.Dark)
	assert.Empty(t, s.RootClasses())
	assert.JSONEq(t, `{"isDark":false}`, string(store.values[ThemeKey]))
}

func TestSettingsConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	store := newMemPrefs()
	store.delay = time.Millisecond
	s, err := LoadSettings(ctx, store)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.ToggleTheme(ctx)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.ToggleSidebar(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, model.Preferences{}, s.Current())
	assert.Empty(t, s.RootClasses())
	assert.JSONEq(t, `{"isDark":false}`, string(store.values[ThemeKey]))
	assert.JSONEq(t, `{"collapsed":false}`, string(store.values[SidebarKey]))
}

func TestSettingsRehydrate(t *testing.T) {
	ctx := context.Background()
	store := newMemPrefs()

	first, err := LoadSettings(ctx, store)
	require.NoError(t, err)
	_, err = first.SetDark(ctx, true)
	require.NoError(t, err)
	_, err = first.ToggleSidebar(ctx)
	require.NoError(t, err)

	second, err := LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.True(t, second.Current().Dark)
	assert.True(t, second.Current().SidebarCollapsed)
	assert.Equal(t, []string{"dark"}, second.RootClasses())
	assert.JSONEq(t, `{"collapsed":true}`, string(store.values[SidebarKey]))
}

func TestSettingsFailedSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	store := newMemPrefs()
	s, err := LoadSettings(ctx, store)
	require.NoError(t, err)

	store.putErr = errors.New("read-only")
	prefs, err := s.ToggleTheme(ctx)
	require.Error(t, err)
	assert.False(t, prefs.Dark)
	assert.False(t, s.Current().Dark)
	assert.Empty(t, s.RootClasses())
}

func TestSettingsOnChange(t *testing.T) {
	ctx := context.Background()
	s, err := LoadSettings(ctx, newMemPrefs())
	require.NoError(t, err)

	var seen []model.Preferences
	s.OnChange(func(p model.Preferences) { seen = append(seen, p) })

	_, _ = s.SetSidebarCollapsed(ctx, true)
	_, _ = s.SetDark(ctx, true)

	require.Len(t, seen, 2)
	assert.Equal(t, model.Preferences{SidebarCollapsed: true}, seen[0])
	assert.Equal(t, model.Preferences{Dark: true, SidebarCollapsed: true}, seen[1])
}

func TestSettingsCorruptValue(t *testing.T) {
	store := newMemPrefs()
	store.values[ThemeKey] = []byte("{not json")

	_, err := LoadSettings(context.Background(), store)
	assert.Error(t, err)
}
