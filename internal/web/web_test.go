package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventnotify/internal/config"
	"eventnotify/internal/model"
)

type fakeEventSource struct {
	events  map[string][]model.IdentifiedEvent
	missing []string
}

func (f *fakeEventSource) LoadDay(date string, codes []string) ([]model.IdentifiedEvent, []string) {
	return f.events[date], f.missing
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.SiteDir = t.TempDir()
	}
	src := &fakeEventSource{
		events: map[string][]model.IdentifiedEvent{
			"2025-08-29": {
				{EventDraft: model.EventDraft{Date: "2025-08-29", Time: "10:30", Title: "公演A", Venue: "会場"}, Hash: "h1"},
			},
		},
		missing: []string{"b"},
	}
	return NewServer(cfg, src, []string{"a", "b"}, func() string { return "2025-08-29" })
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestEvents_DefaultsToToday(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)

	var payload struct {
		Date    string                  `json:"date"`
		Events  []model.IdentifiedEvent `json:"events"`
		Missing []string                `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))

	assert.Equal(t, "2025-08-29", payload.Date)
	require.Len(t, payload.Events, 1)
	assert.Equal(t, "公演A", payload.Events[0].Title)
	assert.Equal(t, []string{"b"}, payload.Missing)
}

func TestEvents_InvalidDate(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events?date=29-08-2025", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestEvents_EmptyDay(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events?date=2025-12-24", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), `"events":[]`)
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SiteDir = t.TempDir()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	s := newTestServer(t, cfg)

	// /health stays open.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	// API requires credentials.
	req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}
