package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// MatchField names the line item attribute a rule condition is evaluated against.
type MatchField string

const (
	MatchFieldProductTitle MatchField = "product_title"
	MatchFieldVariantTitle MatchField = "variant_title"
)

var validMatchFields = map[MatchField]bool{
	MatchFieldProductTitle: true,
	MatchFieldVariantTitle: true,
}

// IsValidMatchField returns true if the field is a known match field.
func IsValidMatchField(f string) bool {
	return validMatchFields[MatchField(f)]
}

// MatchOperator is the string comparison applied by a rule condition.
type MatchOperator string

const (
	MatchOperatorContains   MatchOperator = "contains"
	MatchOperatorEquals     MatchOperator = "equals"
	MatchOperatorStartsWith MatchOperator = "starts_with"
	MatchOperatorEndsWith   MatchOperator = "ends_with"
	MatchOperatorRegex      MatchOperator = "regex"
)

var validMatchOperators = map[MatchOperator]bool{
	MatchOperatorContains:   true,
	MatchOperatorEquals:     true,
	MatchOperatorStartsWith: true,
	MatchOperatorEndsWith:   true,
	MatchOperatorRegex:      true,
}

// IsValidMatchOperator returns true if the operator is supported.
func IsValidMatchOperator(op string) bool {
	return validMatchOperators[MatchOperator(op)]
}

// CostRuleType selects the cost calculation strategy of a shipping profile.
type CostRuleType string

const (
	CostRuleFixed           CostRuleType = "fixed"
	CostRulePerItem         CostRuleType = "per_item"
	CostRulePercentage      CostRuleType = "percentage"
	CostRuleShippingCharged CostRuleType = "based_on_shipping_charged"
	CostRuleConditional     CostRuleType = "conditional"
)

var validCostRuleTypes = map[CostRuleType]bool{
	CostRuleFixed:           true,
	CostRulePerItem:         true,
	CostRulePercentage:      true,
	CostRuleShippingCharged: true,
	CostRuleConditional:     true,
}

// IsValidCostRuleType returns true if the type is supported.
func IsValidCostRuleType(t string) bool {
	return validCostRuleTypes[CostRuleType(t)]
}

// MatchCondition decides whether a rule applies to a line item.
type MatchCondition struct {
	Field         MatchField    `json:"field" valid:"required"`
	Operator      MatchOperator `json:"operator" valid:"required"`
	Value         string        `json:"value" valid:"required"`
	CaseSensitive bool          `json:"case_sensitive"`
}

// CostCondition is a single clause of a conditional cost rule. If is a CEL
// expression over the calculation variables; Then is the cost applied when
// the expression evaluates to true. A winning clause without a Then cost is
// a configuration error, not a zero.
type CostCondition struct {
	If   string           `json:"if"`
	Then *decimal.Decimal `json:"then,omitempty"`
}

// CostRule is a tagged variant: Type selects the strategy and exactly the
// parameters that strategy needs are populated. Missing required parameters
// are a configuration error surfaced at calculation time, not defaulted.
type CostRule struct {
	Type        CostRuleType     `json:"type" valid:"required"`
	BaseCost    *decimal.Decimal `json:"base_cost,omitempty"`
	PerItemCost *decimal.Decimal `json:"per_item_cost,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Adjustment  *decimal.Decimal `json:"adjustment,omitempty"`
	Conditions  []CostCondition  `json:"conditions,omitempty"`
	ElseCost    *decimal.Decimal `json:"else_cost,omitempty"`
}

// ShippingProfileInsert carries the user supplied fields of a new profile.
type ShippingProfileInsert struct {
	Name        string         `json:"name" valid:"required"`
	Description sql.NullString `json:"description"`
	Priority    int            `json:"priority"`
	IsActive    bool           `json:"is_active"`
	IsDefault   bool           `json:"is_default"`
	Match       MatchCondition `json:"match_conditions" valid:"required"`
	Cost        CostRule       `json:"cost_rules" valid:"required"`
}

// ShippingProfile is a persisted shipping cost rule. Seq is a monotonic
// creation sequence used to break priority ties deterministically across
// storage backends.
type ShippingProfile struct {
	ID          string         `json:"id"`
	Seq         int64          `json:"-"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description"`
	Priority    int            `json:"priority"`
	IsActive    bool           `json:"is_active"`
	IsDefault   bool           `json:"is_default"`
	Match       MatchCondition `json:"match_conditions"`
	Cost        CostRule       `json:"cost_rules"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RuleUsage reports how often a rule was applied within a lookback window.
type RuleUsage struct {
	RuleID    string          `db:"rule_id" json:"rule_id"`
	RuleName  string          `db:"rule_name" json:"rule_name"`
	Orders    int             `db:"orders" json:"orders"`
	TotalCost decimal.Decimal `db:"total_cost" json:"total_cost"`
}
