package dashboard

import (
	"net/http"
	"strconv"
	"time"
)

func (s *Server) MonthlySummaries(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	summaries, err := s.agg.SummarizeRange(r.Context(), months)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) MonthSummary(w http.ResponseWriter, r *http.Request) {
	month, err := time.Parse("2006-01", r.URL.Query().Get("month"))
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	summary, err := s.agg.SummarizeMonth(r.Context(), month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
