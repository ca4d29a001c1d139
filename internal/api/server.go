// Package api exposes the workflow over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/GuangzhiSu/Prospectus-AI/internal/common"
	"github.com/GuangzhiSu/Prospectus-AI/internal/workflow"
)

type Server struct {
	router   chi.Router
	workflow *workflow.Manager
}

func NewServer(manager *workflow.Manager) (*Server, error) {
	if manager == nil {
		return nil, errors.New("workflow manager required")
	}
	s := &Server{
		router:   chi.NewRouter(),
		workflow: manager,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/ingest", s.handleIngest)
	s.router.Post("/v1/generate", s.handleGenerate)
	s.router.Post("/v1/regenerate", s.handleRegenerate)
	s.router.Get("/v1/sections", s.handleSections)
	s.router.Get("/v1/composite", s.handleComposite)
	s.router.Get("/v1/manifest", s.handleManifest)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
