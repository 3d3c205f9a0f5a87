package shipping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

// Config holds configuration for the recompute service.
type Config struct {
	// Workers bounds the batch recompute concurrency.
	Workers int `mapstructure:"workers"`
}

// Service recomputes shipping cost estimates for orders. Each order is
// evaluated independently: line items are matched against the active rule
// set, matched items are grouped by rule, each group is costed once and the
// group costs are summed into the order estimate.
type Service struct {
	repo    dependency.Repository
	calc    *Calculator
	workers int
}

// New creates a recompute service.
func New(repo dependency.Repository, c *Config) (*Service, error) {
	calc, err := NewCalculator()
	if err != nil {
		return nil, err
	}
	workers := 4
	if c != nil && c.Workers > 0 {
		workers = c.Workers
	}
	return &Service{repo: repo, calc: calc, workers: workers}, nil
}

// GroupCost is the cost contribution of one rule within an order.
type GroupCost struct {
	RuleID   string          `json:"rule_id"`
	RuleName string          `json:"rule_name"`
	Items    []string        `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// RecomputeResult is the outcome of recomputing a single order.
type RecomputeResult struct {
	OrderID       string                 `json:"order_id"`
	State         entity.EstimationState `json:"state"`
	Estimate      decimal.NullDecimal    `json:"estimate"`
	MatchedRuleID sql.NullString         `json:"matched_rule_id"`
	Breakdown     []GroupCost            `json:"breakdown"`
	Unmatched     []string               `json:"unmatched_items,omitempty"`
}

// BatchFailure documents one order that could not be recomputed.
type BatchFailure struct {
	OrderID string                 `json:"order_id"`
	State   entity.EstimationState `json:"state"`
	Reason  string                 `json:"reason"`
}

// BatchRecomputeResult is the outcome of a bulk recompute. Failures are
// isolated per order; the batch never aborts on the first bad rule.
type BatchRecomputeResult struct {
	Succeeded []RecomputeResult `json:"succeeded"`
	Failed    []BatchFailure    `json:"failed"`
}

// RecomputeOne recomputes and persists the estimate for a single order.
// Unlike the batch call, errors propagate directly to the caller.
func (s *Service) RecomputeOne(ctx context.Context, externalID string) (*RecomputeResult, error) {
	profiles, err := s.repo.ShippingProfiles().GetProfiles(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	return s.recomputeOrder(ctx, externalID, profiles)
}

// RecomputeMany recomputes a batch of orders in parallel. Each order's
// update is independent and atomic, so a failure or interruption leaves
// already processed orders estimated and the rest untouched.
func (s *Service) RecomputeMany(ctx context.Context, externalIDs []string) (*BatchRecomputeResult, error) {
	profiles, err := s.repo.ShippingProfiles().GetProfiles(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}

	res := &BatchRecomputeResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range externalIDs {
		id := id
		g.Go(func() error {
			r, err := s.recomputeOrder(gctx, id, profiles)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed = append(res.Failed, toBatchFailure(id, err))
				return nil
			}
			res.Succeeded = append(res.Succeeded, *r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Default().InfoContext(ctx, "batch recompute finished",
		slog.Int("succeeded", len(res.Succeeded)),
		slog.Int("failed", len(res.Failed)),
	)
	return res, nil
}

// RecomputeAll recomputes every synced order.
func (s *Service) RecomputeAll(ctx context.Context) (*BatchRecomputeResult, error) {
	ids, err := s.repo.Orders().ListOrderExternalIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.RecomputeMany(ctx, ids)
}

// RuleUsage derives per-rule usage counts for the last days by re-scanning
// orders' matched_rule_id. Deriving at read time sidesteps concurrent
// counter updates entirely.
func (s *Service) RuleUsage(ctx context.Context, days int) ([]entity.RuleUsage, error) {
	if days <= 0 {
		days = 30
	}
	since := s.repo.Now().AddDate(0, 0, -days)
	return s.repo.Orders().RuleUsageSince(ctx, since)
}

func (s *Service) recomputeOrder(ctx context.Context, externalID string, profiles []entity.ShippingProfile) (*RecomputeResult, error) {
	of, err := s.repo.Orders().GetOrderByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	res, err := s.Compute(&of.Order, of.Items, profiles)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Orders().SetShippingEstimate(ctx, externalID, res.Estimate, res.MatchedRuleID); err != nil {
		return nil, fmt.Errorf("persist estimate: %w", err)
	}
	return res, nil
}

// Compute evaluates the rule set against one order without persisting
// anything. Pure over its inputs: repeated calls with an unchanged order
// and rule set produce the same estimate.
func (s *Service) Compute(order *entity.Order, items []entity.LineItem, profiles []entity.ShippingProfile) (*RecomputeResult, error) {
	sorted := SortProfiles(profiles)

	res := &RecomputeResult{OrderID: order.ExternalID}

	// group line items by matched rule, keeping first-match order
	type group struct {
		profile  *entity.ShippingProfile
		items    []entity.LineItem
		titles   []string
		subtotal decimal.Decimal
		quantity int
	}
	var groups []*group
	byRule := map[string]*group{}

	for i := range items {
		li := &items[i]
		p := MatchOrDefault(li, sorted)
		if p == nil {
			res.Unmatched = append(res.Unmatched, li.ProductTitle)
			continue
		}
		g, ok := byRule[p.ID]
		if !ok {
			g = &group{profile: p}
			byRule[p.ID] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, *li)
		g.titles = append(g.titles, li.ProductTitle)
		g.subtotal = g.subtotal.Add(li.Total())
		g.quantity += li.Quantity
	}

	if len(groups) == 0 {
		// no rule applied: the estimate stays null so the dashboard can
		// flag the order instead of guessing
		res.State = entity.EstimationStateNoRuleMatched
		return res, nil
	}

	total := decimal.Zero
	for _, g := range groups {
		in := CalcInput{
			OrderSubtotal:   order.Subtotal,
			GroupSubtotal:   g.subtotal,
			ItemCount:       len(g.items),
			Quantity:        g.quantity,
			ShippingCharged: order.ShippingCharged,
		}
		cost, err := s.calc.Calculate(g.profile, in)
		if err != nil {
			return nil, err
		}
		total = total.Add(cost)
		res.Breakdown = append(res.Breakdown, GroupCost{
			RuleID:   g.profile.ID,
			RuleName: g.profile.Name,
			Items:    g.titles,
			Subtotal: g.subtotal,
			Quantity: g.quantity,
			Cost:     cost,
		})
	}

	res.State = entity.EstimationStateEstimated
	res.Estimate = decimal.NullDecimal{Decimal: total.Round(2), Valid: true}
	// a single contributing rule is reported as the primary match; when
	// several distinct rules contributed the primary is left null
	if len(groups) == 1 {
		res.MatchedRuleID = sql.NullString{String: groups[0].profile.ID, Valid: true}
	}
	return res, nil
}

func toBatchFailure(orderID string, err error) BatchFailure {
	state := entity.EstimationStateNoRuleMatched
	switch {
	case derr.IsConfiguration(err):
		state = entity.EstimationStateMisconfigured
	case errors.Is(err, derr.ErrNotFound):
		state = ""
	}
	return BatchFailure{OrderID: orderID, State: state, Reason: err.Error()}
}
