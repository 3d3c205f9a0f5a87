package dashboard

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/borncamp/adboard-manager/internal/entity"
	"github.com/borncamp/adboard-manager/internal/shipping"
)

func (s *Server) ListProfiles(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	profiles, err := s.repo.ShippingProfiles().GetProfiles(r.Context(), activeOnly)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.ShippingProfiles().GetProfileByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) AddProfile(w http.ResponseWriter, r *http.Request) {
	var in entity.ShippingProfileInsert
	if err := decodeBody(r, &in); err != nil {
		respondBadRequest(w, err)
		return
	}
	if err := in.Validate(); err != nil {
		respondBadRequest(w, err)
		return
	}
	p, err := s.repo.ShippingProfiles().AddProfile(r.Context(), &in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in entity.ShippingProfileInsert
	if err := decodeBody(r, &in); err != nil {
		respondBadRequest(w, err)
		return
	}
	if err := in.Validate(); err != nil {
		respondBadRequest(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.repo.ShippingProfiles().UpdateProfile(r.Context(), id, &in); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := s.repo.ShippingProfiles().GetProfileByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.ShippingProfiles().DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type testProfileRequest struct {
	Profile entity.ShippingProfileInsert `json:"profile"`
	Items   []entity.LineItemInsert      `json:"line_items"`
}

type testProfileItemResult struct {
	ProductTitle string `json:"product_title"`
	Matched      bool   `json:"matched"`
}

type testProfileResponse struct {
	Items []testProfileItemResult `json:"items"`
}

// TestProfile dry-runs a profile's match condition against sample line items
// without persisting anything. Lets the rule editor preview matches before
// saving.
func (s *Server) TestProfile(w http.ResponseWriter, r *http.Request) {
	var req testProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	if err := req.Profile.Validate(); err != nil {
		respondBadRequest(w, err)
		return
	}

	resp := testProfileResponse{Items: make([]testProfileItemResult, 0, len(req.Items))}
	for _, in := range req.Items {
		li := entity.LineItem{
			ProductTitle: in.ProductTitle,
			VariantTitle: in.VariantTitle,
			Quantity:     in.Quantity,
			UnitPrice:    in.UnitPrice,
		}
		resp.Items = append(resp.Items, testProfileItemResult{
			ProductTitle: li.ProductTitle,
			Matched:      shipping.Matches(&req.Profile.Match, &li),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

type calculateRequest struct {
	OrderIDs []string `json:"order_ids"`
}

func (s *Server) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}
	if len(req.OrderIDs) == 0 {
		respondBadRequest(w, fmt.Errorf("order_ids is required"))
		return
	}

	res, err := s.shipping.RecomputeMany(r.Context(), req.OrderIDs)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) CalculateAll(w http.ResponseWriter, r *http.Request) {
	res, err := s.shipping.RecomputeAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) RuleUsage(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	usage, err := s.shipping.RuleUsage(r.Context(), days)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, usage)
}
