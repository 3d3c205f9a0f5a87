package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// EstimationState is the user visible shipping estimation outcome of an order.
// The dashboard renders these as three distinct states and must be able to
// tell them apart, so they are never collapsed into a generic failure.
type EstimationState string

const (
	EstimationStateEstimated     EstimationState = "estimated"
	EstimationStateNoRuleMatched EstimationState = "no_rule_matched"
	EstimationStateMisconfigured EstimationState = "misconfigured_rule"
)

// Order represents the customer_order table. Orders are written by the
// external order sync (upsert by external id) and never deleted; the
// shipping estimate columns are mutated only by the recompute service.
type Order struct {
	ID                    int                 `db:"id" json:"-"`
	ExternalID            string              `db:"external_id" json:"id"`
	OrderNumber           int                 `db:"order_number" json:"order_number"`
	OrderDate             time.Time           `db:"order_date" json:"order_date"`
	Subtotal              decimal.Decimal     `db:"subtotal" json:"subtotal"`
	TotalDiscounts        decimal.Decimal     `db:"total_discounts" json:"total_discounts"`
	ShippingCharged       decimal.Decimal     `db:"shipping_charged" json:"shipping_charged"`
	ShippingCostEstimated decimal.NullDecimal `db:"shipping_cost_estimated" json:"shipping_cost_estimated"`
	MatchedRuleID         sql.NullString      `db:"matched_rule_id" json:"matched_rule_id"`
	SyncedAt              time.Time           `db:"synced_at" json:"synced_at"`
}

// LineItem represents the order_item table. Line items belong to exactly one
// order and are immutable once synced; a re-sync replaces them wholesale.
type LineItem struct {
	ID           int             `db:"id" json:"-"`
	OrderID      int             `db:"order_id" json:"-"`
	ProductTitle string          `db:"product_title" json:"product_title"`
	VariantTitle string          `db:"variant_title" json:"variant_title"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// Total returns the line total (unit price times quantity).
func (li *LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))).Round(2)
}

// LineItemInsert is a line item as delivered by the order sync push.
type LineItemInsert struct {
	ProductTitle string          `json:"product_title" valid:"required"`
	VariantTitle string          `json:"variant_title"`
	Quantity     int             `json:"quantity" valid:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// OrderUpsert is one order as delivered by the order sync push, keyed by the
// platform's external order id.
type OrderUpsert struct {
	ExternalID      string           `json:"id" valid:"required"`
	OrderNumber     int              `json:"order_number"`
	OrderDate       time.Time        `json:"order_date"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	TotalDiscounts  decimal.Decimal  `json:"total_discounts"`
	ShippingCharged decimal.Decimal  `json:"shipping_charged"`
	Items           []LineItemInsert `json:"items"`
}

// OrderFull is an order with its line items.
type OrderFull struct {
	Order Order
	Items []LineItem
}
