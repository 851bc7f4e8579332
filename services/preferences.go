package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"larre/model"
)

const (
	ThemeKey   = "larre-theme"
	SidebarKey = "larre-sidebar"

	darkClass = "dark"
)

// PreferenceStore is a small durable key/value store for UI preferences.
type PreferenceStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

type themeState struct {
	IsDark bool `json:"isDark"`
}

type sidebarState struct {
	Collapsed bool `json:"collapsed"`
}

// Settings owns the theme and sidebar preferences. Every change is written
// through to the store before it becomes visible.
type Settings struct {
	mu        sync.Mutex
	store     PreferenceStore
	prefs     model.Preferences
	classes   map[string]bool
	listeners []func(model.Preferences)
}

// LoadSettings rehydrates the preferences from store. Missing keys keep the
// defaults: light theme, sidebar expanded.
func LoadSettings(ctx context.Context, store PreferenceStore) (*Settings, error) {
	s := &Settings{store: store, classes: map[string]bool{}}

	var theme themeState
	if _, err := s.read(ctx, ThemeKey, &theme); err != nil {
		return nil, err
	}
	var sidebar sidebarState
	if _, err := s.read(ctx, SidebarKey, &sidebar); err != nil {
		return nil, err
	}

	s.prefs = model.Preferences{Dark: theme.IsDark, SidebarCollapsed: sidebar.Collapsed}
	if s.prefs.Dark {
		s.classes[darkClass] = true
	}
	return s, nil
}

// OnChange registers fn to run after every successful change.
func (s *Settings) OnChange(fn func(model.Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Settings) Current() model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// RootClasses are the classes the client puts on its root element.
func (s *Settings) RootClasses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.classes[darkClass] {
		return []string{darkClass}
	}
	return []string{}
}

func (s *Settings) ToggleTheme(ctx context.Context) (model.Preferences, error) {
	return s.change(ctx, ThemeKey, func(p model.Preferences) (any, func(*model.Preferences)) {
		return s.setDark(!p.Dark)
	})
}

func (s *Settings) SetDark(ctx context.Context, dark bool) (model.Preferences, error) {
	return s.change(ctx, ThemeKey, func(model.Preferences) (any, func(*model.Preferences)) {
		return s.setDark(dark)
	})
}

func (s *Settings) setDark(dark bool) (any, func(*model.Preferences)) {
	return themeState{IsDark: dark}, func(p *model.Preferences) {
		p.Dark = dark
		s.classes[darkClass] = dark
	}
}

func (s *Settings) ToggleSidebar(ctx context.Context) (model.Preferences, error) {
	return s.change(ctx, SidebarKey, func(p model.Preferences) (any, func(*model.Preferences)) {
		return setCollapsed(!p.SidebarCollapsed)
	})
}

func (s *Settings) SetSidebarCollapsed(ctx context.Context, collapsed bool) (model.Preferences, error) {
	return s.change(ctx, SidebarKey, func(model.Preferences) (any, func(*model.Preferences)) {
		return setCollapsed(collapsed)
	})
}

func setCollapsed(collapsed bool) (any, func(*model.Preferences)) {
	return sidebarState{Collapsed: collapsed}, func(p *model.Preferences) {
		p.SidebarCollapsed = collapsed
	}
}

// change derives the next state from the current one, persists it and
// applies it, all under s.mu so concurrent toggles never read a stale value.
func (s *Settings) change(ctx context.Context, key string, next func(model.Preferences) (any, func(*model.Preferences))) (model.Preferences, error) {
	s.mu.Lock()
	state, apply := next(s.prefs)
	raw, err := json.Marshal(state)
	if err != nil {
		current := s.prefs
		s.mu.Unlock()
		return current, err
	}
	if err := s.store.Put(ctx, key, raw); err != nil {
		current := s.prefs
		s.mu.Unlock()
		return current, fmt.Errorf("save %s: %w", key, err)
	}
	apply(&s.prefs)
	prefs := s.prefs
	listeners := append([]func(model.Preferences){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(prefs)
	}
	return prefs, nil
}

func (s *Settings) read(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
