package dashboard

import (
	"fmt"
	"net/http"

	"github.com/borncamp/adboard-manager/internal/entity"
)

type pushOrdersRequest struct {
	Orders []entity.OrderUpsert `json:"orders"`
}

type pushResponse struct {
	Records int `json:"records"`
}

// PushOrders ingests orders from the external order sync. Upsert by external
// id, so re-pushing a day is harmless.
func (s *Server) PushOrders(w http.ResponseWriter, r *http.Request) {
	var req pushOrdersRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	for i := range req.Orders {
		if err := req.Orders[i].Validate(); err != nil {
			respondBadRequest(w, err)
			return
		}
	}

	n, err := s.repo.Orders().UpsertOrders(r.Context(), req.Orders)
	if err != nil {
		s.logSync(r, "orders", 0, err)
		respondError(w, r, err)
		return
	}
	s.logSync(r, "orders", n, nil)
	respondJSON(w, http.StatusOK, pushResponse{Records: n})
}

type pushAdMetricsRequest struct {
	Metrics   []entity.AdDailyMetric `json:"metrics"`
	Campaigns []entity.Campaign      `json:"campaigns"`
}

// PushAdMetrics ingests daily ad platform metrics, together with the
// campaign registry entries they reference.
func (s *Server) PushAdMetrics(w http.ResponseWriter, r *http.Request) {
	var req pushAdMetricsRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	source := ""
	for i := range req.Metrics {
		m := &req.Metrics[i]
		if err := m.Validate(); err != nil {
			respondBadRequest(w, err)
			return
		}
		if source == "" {
			source = string(m.Source)
		}
	}
	if source == "" {
		respondBadRequest(w, fmt.Errorf("metrics is required"))
		return
	}

	for i := range req.Campaigns {
		if err := s.repo.Campaigns().UpsertCampaign(r.Context(), &req.Campaigns[i]); err != nil {
			s.logSync(r, source, 0, err)
			respondError(w, r, err)
			return
		}
	}

	if err := s.repo.AdMetrics().UpsertAdDailyMetrics(r.Context(), req.Metrics); err != nil {
		s.logSync(r, source, 0, err)
		respondError(w, r, err)
		return
	}
	s.logSync(r, source, len(req.Metrics), nil)
	respondJSON(w, http.StatusOK, pushResponse{Records: len(req.Metrics)})
}

type pushShopifyMetricsRequest struct {
	Metrics []entity.ShopifyDailyMetric `json:"metrics"`
}

// PushShopifyMetrics ingests daily store outcome metrics keyed by date.
func (s *Server) PushShopifyMetrics(w http.ResponseWriter, r *http.Request) {
	var req pushShopifyMetricsRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	for i := range req.Metrics {
		if err := req.Metrics[i].Validate(); err != nil {
			respondBadRequest(w, err)
			return
		}
	}

	if err := s.repo.ShopifyMetrics().UpsertShopifyDailyMetrics(r.Context(), req.Metrics); err != nil {
		s.logSync(r, string(entity.MetricSourceShopify), 0, err)
		respondError(w, r, err)
		return
	}
	s.logSync(r, string(entity.MetricSourceShopify), len(req.Metrics), nil)
	respondJSON(w, http.StatusOK, pushResponse{Records: len(req.Metrics)})
}

func (s *Server) LastSync(w http.ResponseWriter, r *http.Request) {
	sl, err := s.repo.SyncLog().LastSync(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sl)
}

// logSync records a sync attempt. A failed log write never fails the push.
func (s *Server) logSync(r *http.Request, source string, records int, syncErr error) {
	status := "success"
	errMsg := ""
	if syncErr != nil {
		status = "error"
		errMsg = syncErr.Error()
	}
	_ = s.repo.SyncLog().LogSync(r.Context(), source, records, status, errMsg)
}
