package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larre/dto"
	"larre/services"
)

type memPrefs struct {
	mu     sync.Mutex
	values map[string][]byte
	fail   bool
}

func (m *memPrefs) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memPrefs) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("database is locked")
	}
	m.values[key] = value
	return nil
}

func newRouter(t *testing.T) (*gin.Engine, *memPrefs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := &memPrefs{values: map[string][]byte{}}
	settings, err := services.LoadSettings(context.Background(), store)
	require.NoError(t, err)

	r := gin.New()
	SettingsController(r.Group("/api"), settings)
	return r, store
}

func call(t *testing.T, r http.Handler, method, path, body string) (int, dto.SettingsResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.SettingsResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestToggleTheme(t *testing.T) {
	r, store := newRouter(t)

	code, resp := call(t, r, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Dark)
	assert.Empty(t, resp.RootClasses)

	code, resp = call(t, r, http.MethodPost, "/api/settings/theme/toggle", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Dark)
	assert.Equal(t, []string{"dark"}, resp.RootClasses)
	assert.JSONEq(t, `{"isDark":true}`, string(store.values[services.ThemeKey]))
}

func TestToggleSidebar(t *testing.T) {
	r, store := newRouter(t)

	code, resp := call(t, r, http.MethodPost, "/api/settings/sidebar/toggle", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.SidebarCollapsed)
	assert.JSONEq(t, `{"collapsed":true}`, string(store.values[services.SidebarKey]))
}

func TestUpdateSettings(t *testing.T) {
	r, _ := newRouter(t)

	code, resp := call(t, r, http.MethodPut, "/api/settings", `{"isDark":true,"sidebarCollapsed":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Dark)
	assert.True(t, resp.SidebarCollapsed)

	// fields left out stay as they are
	code, resp = call(t, r, http.MethodPut, "/api/settings", `{"sidebarCollapsed":false}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Dark)
	assert.False(t, resp.SidebarCollapsed)

	code, _ = call(t, r, http.MethodPut, "/api/settings", `{"isDark":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestToggleFailsWhenStoreFails(t *testing.T) {
	r, store := newRouter(t)
	store.fail = true

	code, _ := call(t, r, http.MethodPost, "/api/settings/theme/toggle", "")
	assert.Equal(t, http.StatusInternalServerError, code)

	store.fail = false
	_, resp := call(t, r, http.MethodGet, "/api/settings", "")
	assert.False(t, resp.Dark)
}
