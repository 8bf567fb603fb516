// Package api exposes the HTTP surface of the import pipeline.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/przemyslaw-muller/allworkouts/internal/auth"
	"github.com/przemyslaw-muller/allworkouts/internal/catalog"
	"github.com/przemyslaw-muller/allworkouts/internal/domain"
	"github.com/przemyslaw-muller/allworkouts/internal/extraction"
	"github.com/przemyslaw-muller/allworkouts/internal/importer"
	"github.com/przemyslaw-muller/allworkouts/internal/matching"
	"github.com/przemyslaw-muller/allworkouts/internal/observability"
)

// Handler handles HTTP interactions.
type Handler struct {
	assembler *importer.Assembler
	catalog   catalog.Provider
	subLimit  int
}

// NewHandler constructs Handler.
func NewHandler(assembler *importer.Assembler, provider catalog.Provider) *Handler {
	return &Handler{
		assembler: assembler,
		catalog:   provider,
		subLimit:  matching.DefaultSubstituteLimit,
	}
}

// RegisterRoutes sets up routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workout-plans/parse", h.parsePlan)
	mux.HandleFunc("/v1/exercises/", h.exerciseSubstitutes)
	mux.HandleFunc("/healthz", healthz)
}

// healthz returns an OK response for readiness probes.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ParsePlanRequest is the import entry point payload.
type ParsePlanRequest struct {
	Text string `json:"text"`
}

func (h *Handler) parsePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopePlansImport) {
		writeError(w, http.StatusForbidden, "forbidden", "scope plans:import required")
		return
	}

	var req ParsePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	result, err := h.assembler.Parse(r.Context(), claims.Subject, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrInputTooShort), errors.Is(err, importer.ErrInputTooLong):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, matching.ErrNoCatalog):
			writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", err.Error())
		case errors.Is(err, extraction.ErrExtractionFailed):
			writeError(w, http.StatusBadGateway, "extraction_failed", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *Handler) exerciseSubstitutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeExercisesRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope exercises:read required")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/exercises/")
	id, tail, found := strings.Cut(rest, "/")
	if !found || tail != "substitutes" || strings.TrimSpace(id) == "" {
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}

	exercises, err := h.catalog.Exercises(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if len(exercises) == 0 {
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", "exercise catalog is empty")
		return
	}

	ownedList, err := h.catalog.OwnedEquipment(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	subs, err := matching.Substitutes(exercises, id, domain.EquipmentSet(ownedList), h.subLimit)
	if err != nil {
		if errors.Is(err, matching.ErrExerciseNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	observability.RecordSubstitution()
	writeJSON(w, http.StatusOK, map[string]any{"items": subs})
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"type": code, "detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
