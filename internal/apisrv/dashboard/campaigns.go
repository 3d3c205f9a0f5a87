package dashboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	campaigns, err := s.repo.Campaigns().GetCampaigns(r.Context(), days)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, campaigns)
}

func (s *Server) CampaignTimeSeries(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "spend"
	}

	ts, err := s.repo.Campaigns().GetCampaignTimeSeries(r.Context(), chi.URLParam(r, "id"), metric, days)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

func (s *Server) AllCampaignsTimeSeries(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "spend"
	}

	series, err := s.repo.Campaigns().GetAllCampaignsTimeSeries(r.Context(), metric, days)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}
