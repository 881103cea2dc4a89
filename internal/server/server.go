// Package server provides the HTTP and websocket front end of the cued
// speech practice engine.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/gesture"
	"github.com/ayusman/cuedspeech/internal/hook"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/server/api"
	"github.com/ayusman/cuedspeech/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// Engine defaults to config.DefaultEngine when nil.
	Engine *config.Engine
	// Profile names the stability profile used by practice sessions that do
	// not pick one.
	Profile    string
	References *gesture.ReferenceMatcher
	Hooks      *hook.Manager
	Dispatcher *hook.Dispatcher
	// FrameRate overrides the profile sample rate of practice sessions.
	FrameRate float64
}

// Server represents the HTTP server.
type Server struct {
	config Config
	router *mux.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(cfg Config) *Server {
	if cfg.Engine == nil {
		cfg.Engine = config.DefaultEngine()
	}
	if cfg.References == nil {
		cfg.References = gesture.NewReferenceMatcher()
	}

	s := &Server{
		config: cfg,
		router: mux.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.Use(requestLogger)
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	v := api.NewValidator()
	api.NewStabilityHandler(s.config.Engine, v).Register(s.router)
	api.NewMatchHandler(s.config.Store, s.config.Engine, s.config.References, v).Register(s.router)

	if s.config.Store != nil {
		api.NewSyllableHandler(s.config.Store, v).Register(s.router)
		api.NewReferenceHandler(s.config.Store, s.config.References, v).Register(s.router)
		api.NewValidationHandler(s.config.Store).Register(s.router)
		api.NewHookHandler(s.config.Store, s.config.Hooks, v).Register(s.router)
	}

	s.router.Handle("/api/practice", NewPracticeHandler(PracticeConfig{
		Store:      s.config.Store,
		Engine:     s.config.Engine,
		Profile:    s.config.Profile,
		References: s.config.References,
		Dispatcher: s.config.Dispatcher,
		FrameRate:  s.config.FrameRate,
	}))

	if s.config.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	logging.Info(logging.Fields{"addr": addr}, "http server listening")
	return http.ListenAndServe(addr, s)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug(logging.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}, "request")
	})
}
