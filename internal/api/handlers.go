package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/GuangzhiSu/Prospectus-AI/internal/common"
)

type generateRequest struct {
	Sections []string `json:"sections"`
}

type generateResponse struct {
	Sections map[string]string `json:"sections"`
}

type regenerateRequest struct {
	Section     string `json:"section"`
	Instruction string `json:"instruction"`
}

type regenerateResponse struct {
	Section string `json:"section"`
	Text    string `json:"text"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	common.Logger().Info("api: ingest requested")
	result, err := s.workflow.Ingest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
	}
	common.Logger().Info("api: generation requested", "sections", len(req.Sections))
	results, err := s.workflow.GenerateSections(r.Context(), req.Sections)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Sections: results})
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Section) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("section required"))
		return
	}
	common.Logger().Info("api: regeneration requested", "section", req.Section)
	text, err := s.workflow.RegenerateSection(r.Context(), req.Section, req.Instruction)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, regenerateResponse{Section: req.Section, Text: text})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workflow.Drafts().Sections())
}

func (s *Server) handleComposite(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.workflow.Drafts().ComposeFull()))
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.workflow.Fragments().ReadManifest()
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("manifest unavailable: %w", err))
		return
	}
	payload := map[string]interface{}{"manifest": manifest}
	if cat := s.workflow.Catalog(); cat != nil {
		units, err := cat.SourceUnits(r.Context())
		if err != nil {
			common.Logger().Warn("api: catalog lookup failed", "error", err)
		} else {
			payload["source_units"] = units
		}
	}
	writeJSON(w, http.StatusOK, payload)
}
