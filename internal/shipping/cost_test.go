package shipping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

func costProfile(cost entity.CostRule) *entity.ShippingProfile {
	return &entity.ShippingProfile{
		ID:   "rule-1",
		Name: "test rule",
		Cost: cost,
	}
}

func TestCalculateFixed(t *testing.T) {
	calc, err := NewCalculator()
	require.NoError(t, err)

	p := costProfile(entity.CostRule{Type: entity.CostRuleFixed, BaseCost: decimalPtr(5)})
	got, err := calc.Calculate(p, CalcInput{OrderSubtotal: decimal.NewFromInt(500)})
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}

func TestCalculatePerItem(t *testing.T) {
	calc, err := NewCalculator()
	require.NoError(t, err)

	p := costProfile(entity.CostRule{Type: entity.CostRulePerItem, PerItemCost: decimalPtr(2)})
	got, err := calc.Calculate(p, CalcInput{Quantity: 3})
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(6)), "got %s", got)
}

func TestCalculatePercentage(t *testing.T) {
	calc, err := NewCalculator()
	require.NoError(t, err)

	p := costProfile(entity.CostRule{Type: entity.CostRulePercentage, Percentage: decimalPtr(10)})
	got, err := calc.Calculate(p, CalcInput{OrderSubtotal: decimal.NewFromInt(50)})
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}

func TestCalculateShippingCharged(t *testing.T) {
	calc, err := NewCalculator()
	require.NoError(t, err)

	p := costProfile(entity.CostRule{Type: entity.CostRuleShippingCharged, Adjustment: decimalPtr(-5)})

	t.Run("adjustment applied", func(t *testing.T) {
		got, err := calc.Calculate(p, CalcInput{ShippingCharged: decimal.NewFromInt(12)})
		assert.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(7)), "got %s", got)
	})

	t.Run("floored at zero", func(t *testing.T) {
		got, err := calc.Calculate(p, CalcInput{ShippingCharged: decimal.NewFromInt(3)})
		assert.NoError(t, err)
		assert.True(t, got.IsZero(), "got %s", got)
	})
}

func TestCalculateConditional(t *testing.T) {
	calc, err := NewCalculator()
	require.NoError(t, err)

	p := costProfile(entity.CostRule{
		Type: entity.CostRuleConditional,
		Conditions: []entity.CostCondition{
			{If: "order_subtotal >= 100.0", Then: decimalPtr(0)},
			{If: "quantity > 2", Then: decimalPtr(4)},
		},
		ElseCost: decimalPtr(8),
	})

	t.Run("first true clause wins", func(t *testing.T) {
		got, err := calc.Calculate(p, CalcInput{OrderSubtotal: decimal.NewFromInt(150), Quantity: 5})
		assert.NoError(t, err)
		assert.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("second clause", func(t *testing.T) {
		got, err := calc.Calculate(p, CalcInput{OrderSubtotal: decimal.NewFromInt(50), Quantity: 3})
		assert.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(4)), "got %s", got)
	})

	t.Run("else fallback", func(t *testing.T) {
		got, err := calc.Calculate(p, CalcInput{OrderSubtotal: decimal.NewFromInt(50), Quantity: 1})
		assert.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(8)), "got %s", got)
	})

	t.Run("bad clause skipped", func(t *testing.T) {
		broken := costProfile(entity.CostRule{
			Type: entity.CostRuleConditional,
			Conditions: []entity.CostCondition{
				{If: "this is not CEL", Then: decimalPtr(99)},
				{If: "quantity > 0", Then: decimalPtr(3)},
			},
		})
		got, err := calc.Calculate(broken, CalcInput{Quantity: 1})
		assert.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(3)), "got %s", got)
	})

	t.Run("no conditions is misconfigured", func(t *testing.T) {
		empty := costProfile(entity.CostRule{Type: entity.CostRuleConditional})
		_, err := calc.Calculate(empty, CalcInput{})
		assert.Error(t, err)
		assert.True(t, derr.IsConfiguration(err))
	})

	t.Run("winning clause without then is misconfigured", func(t *testing.T) {
		noThen := costProfile(entity.CostRule{
			Type: entity.CostRuleConditional,
			Conditions: []entity.CostCondition{
				{If: "quantity > 0"},
			},
		})
		_, err := calc.Calculate(noThen, CalcInput{Quantity: 1})
		assert.Error(t, err)
		assert.True(t, derr.IsConfiguration(err))
	})
}

func TestCalculateMissingParams(t *testing.T) {
	calc, err := NewCalculator()
	require.NoError(t, err)

	tests := []struct {
		name string
		cost entity.CostRule
	}{
		{"fixed without base_cost", entity.CostRule{Type: entity.CostRuleFixed}},
		{"per_item without per_item_cost", entity.CostRule{Type: entity.CostRulePerItem}},
		{"percentage without percentage", entity.CostRule{Type: entity.CostRulePercentage}},
		{"shipping_charged without adjustment", entity.CostRule{Type: entity.CostRuleShippingCharged}},
		{"unknown type", entity.CostRule{Type: "teleport"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(costProfile(tt.cost), CalcInput{Quantity: 1})
			assert.Error(t, err)
			assert.True(t, derr.IsConfiguration(err))
		})
	}
}
