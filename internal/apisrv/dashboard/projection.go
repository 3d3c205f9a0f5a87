package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (s *Server) CreateProjection(w http.ResponseWriter, r *http.Request) {
	session, err := s.proj.CreateSession(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) GetProjection(w http.ResponseWriter, r *http.Request) {
	session, err := s.proj.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

type setBaseMonthRequest struct {
	Index int `json:"index"`
}

func (s *Server) SetProjectionBaseMonth(w http.ResponseWriter, r *http.Request) {
	var req setBaseMonthRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	session, err := s.proj.SetBaseMonth(chi.URLParam(r, "id"), req.Index)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

type setMultiplierRequest struct {
	RowIndex   int             `json:"row_index"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

func (s *Server) SetProjectionMultiplier(w http.ResponseWriter, r *http.Request) {
	var req setMultiplierRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	session, err := s.proj.SetMultiplier(chi.URLParam(r, "id"), req.RowIndex, req.Multiplier)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) DeleteProjection(w http.ResponseWriter, r *http.Request) {
	s.proj.DeleteSession(chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
