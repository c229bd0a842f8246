package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pickem-tracker/internal/board"
	"pickem-tracker/internal/database"
	apperrors "pickem-tracker/internal/errors"
	"pickem-tracker/internal/scoring"
	"pickem-tracker/internal/utils"
)

// StatusResponse réponse de GET /api/status
type StatusResponse struct {
	board.Status
	Clients int                     `json:"clients"`
	Reloads []database.ReloadRecord `json:"reloads,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"loaded": s.board.Current() != nil,
	})
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	ds, err := s.board.Dataset()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"names": scoring.SortedNames(ds)})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	snap := s.board.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, apperrors.ErrNoDataset)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ds, err := s.board.Dataset()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.BuildScoreboard(ds, r.URL.Query().Get("name")))
}

func (s *Server) handleParticipant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := utils.ValidateParticipantName(name); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ds, err := s.board.Dataset()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	view, err := scoring.BuildParticipantView(ds, name, s.styler)
	if errors.Is(err, scoring.ErrParticipantNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Status: s.board.Status()}
	if s.clients != nil {
		resp.Clients = s.clients()
	}

	reloads, err := s.board.History(r.Context(), 10)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Erreur lecture historique")
	}
	resp.Reloads = reloads

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	_, err := s.board.Reload(r.Context())
	switch {
	case err == nil, errors.Is(err, board.ErrStaleReload):
		writeJSON(w, http.StatusOK, s.board.Status())
	case errors.Is(err, apperrors.ErrSchema):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusBadGateway, err)
	}
}

func (s *Server) handleCategoriesCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(s.styler.Stylesheet()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
