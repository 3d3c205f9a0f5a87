package shipping

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"

	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

// CalcInput carries the variables a cost rule may reference. GroupSubtotal,
// ItemCount and Quantity describe the group of line items that matched the
// rule; OrderSubtotal and ShippingCharged are order level.
type CalcInput struct {
	OrderSubtotal   decimal.Decimal
	GroupSubtotal   decimal.Decimal
	ItemCount       int
	Quantity        int
	ShippingCharged decimal.Decimal
}

// Calculator evaluates cost rules. Conditional rule expressions are compiled
// with CEL and cached per expression; the calculator is safe for concurrent
// use.
type Calculator struct {
	env      *cel.Env
	mu       sync.RWMutex
	prgCache map[string]cel.Program
}

// NewCalculator creates a calculator with the conditional rule environment.
func NewCalculator() (*Calculator, error) {
	env, err := cel.NewEnv(
		cel.Variable("order_subtotal", cel.DoubleType),
		cel.Variable("group_subtotal", cel.DoubleType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("quantity", cel.IntType),
		cel.Variable("shipping_charged", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Calculator{
		env:      env,
		prgCache: make(map[string]cel.Program),
	}, nil
}

// Calculate returns the shipping cost estimate for one matched rule. The
// strategy is selected by the rule's cost type; a missing required parameter
// is a ConfigurationError, never a silent default.
func (c *Calculator) Calculate(p *entity.ShippingProfile, in CalcInput) (decimal.Decimal, error) {
	switch p.Cost.Type {
	case entity.CostRuleFixed:
		if p.Cost.BaseCost == nil {
			return decimal.Zero, confErr(p, "fixed rule requires base_cost")
		}
		return p.Cost.BaseCost.Round(2), nil

	case entity.CostRulePerItem:
		if p.Cost.PerItemCost == nil {
			return decimal.Zero, confErr(p, "per_item rule requires per_item_cost")
		}
		return p.Cost.PerItemCost.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2), nil

	case entity.CostRulePercentage:
		if p.Cost.Percentage == nil {
			return decimal.Zero, confErr(p, "percentage rule requires percentage")
		}
		return in.OrderSubtotal.Mul(*p.Cost.Percentage).Div(decimal.NewFromInt(100)).Round(2), nil

	case entity.CostRuleShippingCharged:
		if p.Cost.Adjustment == nil {
			return decimal.Zero, confErr(p, "based_on_shipping_charged rule requires adjustment")
		}
		cost := in.ShippingCharged.Add(*p.Cost.Adjustment)
		// shipping cost cannot go negative
		if cost.IsNegative() {
			return decimal.Zero, nil
		}
		return cost.Round(2), nil

	case entity.CostRuleConditional:
		return c.calculateConditional(p, in)
	}

	return decimal.Zero, confErr(p, fmt.Sprintf("unknown cost rule type %q", p.Cost.Type))
}

func (c *Calculator) calculateConditional(p *entity.ShippingProfile, in CalcInput) (decimal.Decimal, error) {
	if len(p.Cost.Conditions) == 0 {
		return decimal.Zero, confErr(p, "conditional rule requires at least one condition")
	}

	vars := map[string]any{
		"order_subtotal":   in.OrderSubtotal.InexactFloat64(),
		"group_subtotal":   in.GroupSubtotal.InexactFloat64(),
		"item_count":       in.ItemCount,
		"quantity":         in.Quantity,
		"shipping_charged": in.ShippingCharged.InexactFloat64(),
	}

	for _, cond := range p.Cost.Conditions {
		ok, err := c.evalExpr(cond.If, vars)
		if err != nil {
			// a clause that fails to compile or evaluate is skipped,
			// the remaining clauses still apply
			continue
		}
		if ok {
			if cond.Then == nil {
				return decimal.Zero, confErr(p, fmt.Sprintf("condition %q has no then cost", cond.If))
			}
			return cond.Then.Round(2), nil
		}
	}

	if p.Cost.ElseCost != nil {
		return p.Cost.ElseCost.Round(2), nil
	}
	if p.Cost.BaseCost != nil {
		return p.Cost.BaseCost.Round(2), nil
	}
	return decimal.Zero, nil
}

func (c *Calculator) evalExpr(expr string, vars map[string]any) (bool, error) {
	c.mu.RLock()
	prg, hit := c.prgCache[expr]
	c.mu.RUnlock()

	if !hit {
		ast, iss := c.env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return false, fmt.Errorf("compile %q: %w", expr, iss.Err())
		}
		var err error
		prg, err = c.env.Program(ast)
		if err != nil {
			return false, fmt.Errorf("program %q: %w", expr, err)
		}
		c.mu.Lock()
		c.prgCache[expr] = prg
		c.mu.Unlock()
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q is not boolean", expr)
	}
	return b, nil
}

func confErr(p *entity.ShippingProfile, reason string) error {
	return &derr.ConfigurationError{RuleID: p.ID, RuleName: p.Name, Reason: reason}
}
