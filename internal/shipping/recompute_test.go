package shipping

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

type fakeRepo struct {
	dependency.Repository
	profiles *fakeProfiles
	orders   *fakeOrders
}

func (f *fakeRepo) ShippingProfiles() dependency.ShippingProfiles { return f.profiles }
func (f *fakeRepo) Orders() dependency.Orders                     { return f.orders }
func (f *fakeRepo) Now() time.Time                                { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }

type fakeProfiles struct {
	dependency.ShippingProfiles
	profiles []entity.ShippingProfile
}

func (f *fakeProfiles) GetProfiles(ctx context.Context, activeOnly bool) ([]entity.ShippingProfile, error) {
	return f.profiles, nil
}

type fakeOrders struct {
	dependency.Orders
	mu        sync.Mutex
	orders    map[string]*entity.OrderFull
	estimates map[string]decimal.NullDecimal
}

func (f *fakeOrders) GetOrderByExternalID(ctx context.Context, externalID string) (*entity.OrderFull, error) {
	of, ok := f.orders[externalID]
	if !ok {
		return nil, derr.ErrNotFound
	}
	return of, nil
}

func (f *fakeOrders) ListOrderExternalIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.orders))
	for id := range f.orders {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeOrders) SetShippingEstimate(ctx context.Context, externalID string, estimate decimal.NullDecimal, ruleID sql.NullString) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.estimates == nil {
		f.estimates = map[string]decimal.NullDecimal{}
	}
	f.estimates[externalID] = estimate
	return nil
}

func fixedProfile(id string, priority int, seq int64, matchValue string, cost float64) entity.ShippingProfile {
	p := profile(id, priority, seq, true, entity.MatchCondition{
		Field:    entity.MatchFieldProductTitle,
		Operator: entity.MatchOperatorContains,
		Value:    matchValue,
	})
	p.Cost.BaseCost = decimalPtr(cost)
	return p
}

func orderOf(externalID string, items ...entity.LineItem) *entity.OrderFull {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].Total())
	}
	return &entity.OrderFull{
		Order: entity.Order{
			ExternalID:      externalID,
			Subtotal:        subtotal,
			ShippingCharged: decimal.NewFromInt(10),
		},
		Items: items,
	}
}

func TestCompute(t *testing.T) {
	svc, err := New(&fakeRepo{}, nil)
	require.NoError(t, err)

	profiles := []entity.ShippingProfile{
		fixedProfile("mats", 10, 1, "mat", 5),
		fixedProfile("bands", 20, 2, "band", 3),
	}

	t.Run("single rule reports matched rule id", func(t *testing.T) {
		of := orderOf("o-1", li("Yoga Mat", "", 2, 40))
		res, err := svc.Compute(&of.Order, of.Items, profiles)
		require.NoError(t, err)
		assert.Equal(t, entity.EstimationStateEstimated, res.State)
		require.True(t, res.Estimate.Valid)
		assert.True(t, res.Estimate.Decimal.Equal(decimal.NewFromInt(5)))
		require.True(t, res.MatchedRuleID.Valid)
		assert.Equal(t, "mats", res.MatchedRuleID.String)
		require.Len(t, res.Breakdown, 1)
		assert.Equal(t, 2, res.Breakdown[0].Quantity)
	})

	t.Run("groups summed, no single matched rule", func(t *testing.T) {
		of := orderOf("o-2",
			li("Yoga Mat", "", 1, 40),
			li("Resistance Band", "", 1, 15),
			li("Travel Mat", "", 1, 30),
		)
		res, err := svc.Compute(&of.Order, of.Items, profiles)
		require.NoError(t, err)
		assert.Equal(t, entity.EstimationStateEstimated, res.State)
		require.True(t, res.Estimate.Valid)
		assert.True(t, res.Estimate.Decimal.Equal(decimal.NewFromInt(8)), "got %s", res.Estimate.Decimal)
		assert.False(t, res.MatchedRuleID.Valid)
		require.Len(t, res.Breakdown, 2)
		// both mats costed once as one group
		assert.Equal(t, "mats", res.Breakdown[0].RuleID)
		assert.Len(t, res.Breakdown[0].Items, 2)
	})

	t.Run("no rule matched keeps estimate null", func(t *testing.T) {
		of := orderOf("o-3", li("Dumbbell", "", 1, 25))
		res, err := svc.Compute(&of.Order, of.Items, profiles)
		require.NoError(t, err)
		assert.Equal(t, entity.EstimationStateNoRuleMatched, res.State)
		assert.False(t, res.Estimate.Valid)
		assert.Equal(t, []string{"Dumbbell"}, res.Unmatched)
	})

	t.Run("unmatched item excluded from estimate", func(t *testing.T) {
		of := orderOf("o-4", li("Yoga Mat", "", 1, 40), li("Dumbbell", "", 1, 25))
		res, err := svc.Compute(&of.Order, of.Items, profiles)
		require.NoError(t, err)
		assert.Equal(t, entity.EstimationStateEstimated, res.State)
		assert.True(t, res.Estimate.Decimal.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, []string{"Dumbbell"}, res.Unmatched)
	})
}

func TestRecomputeManyPartialFailure(t *testing.T) {
	broken := profile("broken", 5, 1, true, entity.MatchCondition{
		Field:    entity.MatchFieldProductTitle,
		Operator: entity.MatchOperatorContains,
		Value:    "dumbbell",
	})
	broken.Cost = entity.CostRule{Type: entity.CostRuleFixed} // base_cost missing

	orders := map[string]*entity.OrderFull{
		"o-1": orderOf("o-1", li("Yoga Mat", "", 1, 40)),
		"o-2": orderOf("o-2", li("Travel Mat", "", 1, 30)),
		"o-3": orderOf("o-3", li("Gym Mat", "", 2, 60)),
		"o-4": orderOf("o-4", li("Pro Mat", "", 1, 80)),
		"o-5": orderOf("o-5", li("Dumbbell Set", "", 1, 90)),
	}
	repo := &fakeRepo{
		profiles: &fakeProfiles{profiles: []entity.ShippingProfile{
			fixedProfile("mats", 10, 2, "mat", 5),
			broken,
		}},
		orders: &fakeOrders{orders: orders},
	}

	svc, err := New(repo, &Config{Workers: 2})
	require.NoError(t, err)

	res, err := svc.RecomputeMany(context.Background(), []string{"o-1", "o-2", "o-3", "o-4", "o-5"})
	require.NoError(t, err)

	assert.Len(t, res.Succeeded, 4)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "o-5", res.Failed[0].OrderID)
	assert.Equal(t, entity.EstimationStateMisconfigured, res.Failed[0].State)

	// good orders are persisted even though one failed
	assert.Len(t, repo.orders.estimates, 4)
	_, persisted := repo.orders.estimates["o-5"]
	assert.False(t, persisted)
}

func TestRecomputeOneUnknownOrder(t *testing.T) {
	repo := &fakeRepo{
		profiles: &fakeProfiles{},
		orders:   &fakeOrders{orders: map[string]*entity.OrderFull{}},
	}
	svc, err := New(repo, nil)
	require.NoError(t, err)

	_, err = svc.RecomputeOne(context.Background(), "nope")
	assert.ErrorIs(t, err, derr.ErrNotFound)
}
