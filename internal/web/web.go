package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventnotify/internal/config"
	appLog "eventnotify/internal/log"
	"eventnotify/internal/model"
)

// EventSource is the read side the API serves from. The pipeline's
// store satisfies it.
type EventSource interface {
	LoadDay(date string, codes []string) ([]model.IdentifiedEvent, []string)
}

var isoDatePat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Server exposes the status API: /health, /api/events, /metrics and the
// published static site.
type Server struct {
	cfg    *config.Config
	events EventSource
	codes  []string
	today  func() string
	mux    *http.ServeMux

	// In-memory cache for /api/events responses so a burst of clients
	// does not re-read every snapshot file.
	cacheMu sync.RWMutex
	cache   map[string]cachedDay
}

type cachedDay struct {
	payload  []byte
	cachedAt time.Time
}

const cacheTTL = time.Minute

// NewServer constructs a new Server. today resolves the default date for
// /api/events in the configured civil zone.
func NewServer(cfg *config.Config, events EventSource, codes []string, today func() string) *Server {
	s := &Server{
		cfg:    cfg,
		events: events,
		codes:  codes,
		today:  today,
		mux:    http.NewServeMux(),
		cache:  make(map[string]cachedDay),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.Handle("/", http.FileServer(http.Dir(s.cfg.SiteDir)))
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleEvents serves the merged event list for one date:
// GET /api/events?date=YYYY-MM-DD (date defaults to today).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.today()
	}
	if !isoDatePat.MatchString(date) {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	payload, err := s.dayPayload(date)
	if err != nil {
		appLog.Error("events payload failed", err, "date", date)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(payload)
}

func (s *Server) dayPayload(date string) ([]byte, error) {
	s.cacheMu.RLock()
	if c, ok := s.cache[date]; ok && time.Since(c.cachedAt) < cacheTTL {
		s.cacheMu.RUnlock()
		return c.payload, nil
	}
	s.cacheMu.RUnlock()

	events, missing := s.events.LoadDay(date, s.codes)
	if events == nil {
		events = []model.IdentifiedEvent{}
	}
	if missing == nil {
		missing = []string{}
	}

	payload, err := json.Marshal(struct {
		Date    string                  `json:"date"`
		Events  []model.IdentifiedEvent `json:"events"`
		Missing []string                `json:"missing"`
	}{Date: date, Events: events, Missing: missing})
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[date] = cachedDay{payload: payload, cachedAt: time.Now()}
	s.cacheMu.Unlock()

	return payload, nil
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="EventNotify", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
