// Package http exposes the engine over a JSON REST API: agent catalog
// CRUD, static linting, version diffing, and run execution, plus health
// and Prometheus metrics endpoints.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/spec"
)

// Server handles the REST API backed by an engine.
type Server struct {
	engine *lattice.Engine
	logger *slog.Logger
}

// NewHandler builds the routed HTTP handler.
func NewHandler(engine *lattice.Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/lint", s.postLint)

	r.Route("/agents", func(r chi.Router) {
		r.Put("/", s.putAgent)
		r.Route("/{agentID}", func(r chi.Router) {
			r.Get("/versions", s.getVersions)
			r.Get("/versions/{version}", s.getAgent)
			r.Get("/diff", s.getDiff)
			r.Post("/versions/{version}/runs", s.postRun)
		})
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.getRuns)
		r.Get("/{runID}", s.getRun)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "lattice-http",
		"version": lattice.Version,
	})
}

// postLint checks a manifest without importing or running it.
func (s *Server) postLint(w http.ResponseWriter, r *http.Request) {
	var m spec.Manifest
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid manifest body")
		return
	}
	s.writeJSON(w, http.StatusOK, spec.Lint(&m))
}

func (s *Server) putAgent(w http.ResponseWriter, r *http.Request) {
	store := s.engine.Manifests()
	if store == nil {
		s.writeError(w, http.StatusNotImplemented, "no manifest store configured")
		return
	}

	var m spec.Manifest
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid manifest body")
		return
	}

	// Reject documents that cannot run; warnings are allowed through.
	if report := spec.Lint(&m); report.HasErrors() {
		s.writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	if err := store.Save(r.Context(), &m); err != nil {
		s.logger.Error("agent save failed", "error", err, "agent", m.Metadata.ID)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{
		"id":      m.Metadata.ID,
		"version": m.Version.Version,
	})
}

func (s *Server) getVersions(w http.ResponseWriter, r *http.Request) {
	store := s.engine.Manifests()
	if store == nil {
		s.writeError(w, http.StatusNotImplemented, "no manifest store configured")
		return
	}
	versions, err := store.ListVersions(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		s.agentError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	store := s.engine.Manifests()
	if store == nil {
		s.writeError(w, http.StatusNotImplemented, "no manifest store configured")
		return
	}
	m, err := store.Load(r.Context(), chi.URLParam(r, "agentID"), chi.URLParam(r, "version"))
	if err != nil {
		s.agentError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// getDiff compares two stored versions: /agents/{id}/diff?from=1.0.0&to=1.1.0
func (s *Server) getDiff(w http.ResponseWriter, r *http.Request) {
	store := s.engine.Manifests()
	if store == nil {
		s.writeError(w, http.StatusNotImplemented, "no manifest store configured")
		return
	}
	agentID := chi.URLParam(r, "agentID")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		s.writeError(w, http.StatusBadRequest, "from and to query parameters are required")
		return
	}

	before, err := store.Load(r.Context(), agentID, from)
	if err != nil {
		s.agentError(w, err)
		return
	}
	after, err := store.Load(r.Context(), agentID, to)
	if err != nil {
		s.agentError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, spec.DiffManifests(before, after))
}

type runRequest struct {
	Initial map[string]any `json:"initial"`
}

func (s *Server) postRun(w http.ResponseWriter, r *http.Request) {
	var body runRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid run request body")
			return
		}
	}

	agentID := chi.URLParam(r, "agentID")
	version := chi.URLParam(r, "version")
	log, err := s.engine.RunAgent(r.Context(), agentID, version, body.Initial)
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			s.agentError(w, err)
			return
		}
		s.logger.Error("run failed", "error", err, "agent", agentID, "version", version)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, log)
}

func (s *Server) runLister(w http.ResponseWriter) ports.RunLister {
	lister, ok := s.engine.Runs().(ports.RunLister)
	if !ok {
		s.writeError(w, http.StatusNotImplemented, "run store does not support listing")
		return nil
	}
	return lister
}

func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	lister := s.runLister(w)
	if lister == nil {
		return
	}
	ids, err := lister.ListRuns(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	lister := s.runLister(w)
	if lister == nil {
		return
	}
	log, err := lister.LoadRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, log)
}

func (s *Server) agentError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrAgentNotFound) {
		s.writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}
