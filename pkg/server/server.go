// Package server exposes card ingestion and report building over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/report"
)

const maxCardBytes = 32 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithDefaults sets the threshold and bridge limit used when a request does not override them.
func WithDefaults(threshold, bridgeLimit int) Option {
	return func(s *Server) {
		s.threshold = threshold
		s.bridgeLimit = bridgeLimit
	}
}

// Server serves the HTTP API over a shared card store.
type Server struct {
	store       *card.Store
	logger      *slog.Logger
	threshold   int
	bridgeLimit int
}

// New creates a Server backed by store.
func New(store *card.Store, opts ...Option) *Server {
	s := &Server{
		store:       store,
		logger:      slog.Default(),
		threshold:   70,
		bridgeLimit: 15,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the chi router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)
	r.Get("/cards", s.listCards)
	r.Post("/cards", s.addCard)
	r.Delete("/cards", s.clearCards)
	r.Get("/report", s.buildReport)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"bytes", ww.BytesWritten(), "duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (*Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCards(w http.ResponseWriter, _ *http.Request) {
	cards := s.store.All()
	if cards == nil {
		cards = []card.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) addCard(w http.ResponseWriter, r *http.Request) {
	var c card.Card
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCardBytes))
	if err := dec.Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "malformed card: "+err.Error())
		return
	}

	if err := s.store.Add(c); err != nil {
		var ve *card.ValidationError
		if errors.As(err, &ve) {
			s.logger.Info("card rejected", "platform", c.Platform, "error", err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) clearCards(w http.ResponseWriter, _ *http.Request) {
	s.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) {
	threshold, ok := intParam(w, r, "threshold", s.threshold, 0, 100)
	if !ok {
		return
	}
	bridgeLimit, ok := intParam(w, r, "bridge_limit", s.bridgeLimit, 0, -1)
	if !ok {
		return
	}

	rep := report.New(s.store,
		report.WithThreshold(threshold),
		report.WithBridgeLimit(bridgeLimit),
		report.WithLogger(s.logger),
	).Build()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := report.WriteJSON(w, rep); err != nil {
		s.logger.Error("json encode failed", "error", err)
	}
}

// intParam parses an optional integer query parameter in [lo, hi]; hi < 0 means no upper bound.
func intParam(w http.ResponseWriter, r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi >= 0 && v > hi) {
		writeError(w, http.StatusBadRequest, "invalid "+name+": "+raw)
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
