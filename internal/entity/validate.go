package entity

import (
	"fmt"

	"github.com/asaskevich/govalidator"
)

// Validate checks the user supplied fields of a new or updated profile.
// Cross-field cost parameter presence is deliberately not checked here; the
// calculator reports that as a configuration error at calculation time.
func (p *ShippingProfileInsert) Validate() error {
	if _, err := govalidator.ValidateStruct(p); err != nil {
		return err
	}
	if !IsValidMatchField(string(p.Match.Field)) {
		return fmt.Errorf("unknown match field %q", p.Match.Field)
	}
	if !IsValidMatchOperator(string(p.Match.Operator)) {
		return fmt.Errorf("unknown match operator %q", p.Match.Operator)
	}
	if !IsValidCostRuleType(string(p.Cost.Type)) {
		return fmt.Errorf("unknown cost rule type %q", p.Cost.Type)
	}
	if p.Priority < 0 {
		return fmt.Errorf("priority must not be negative")
	}
	return nil
}

// Validate checks one pushed order.
func (o *OrderUpsert) Validate() error {
	if _, err := govalidator.ValidateStruct(o); err != nil {
		return err
	}
	if o.OrderDate.IsZero() {
		return fmt.Errorf("order %s: order_date is required", o.ExternalID)
	}
	for i := range o.Items {
		if _, err := govalidator.ValidateStruct(&o.Items[i]); err != nil {
			return fmt.Errorf("order %s item %d: %w", o.ExternalID, i, err)
		}
	}
	return nil
}

// Validate checks one pushed ad platform daily metric.
func (m *AdDailyMetric) Validate() error {
	if !IsValidMetricSource(string(m.Source)) {
		return fmt.Errorf("unknown metric source %q", m.Source)
	}
	if m.Source == MetricSourceShopify {
		return fmt.Errorf("shopify metrics belong on the shopify push endpoint")
	}
	if m.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// Validate checks one pushed store daily metric.
func (m *ShopifyDailyMetric) Validate() error {
	if m.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if m.OrderCount < 0 {
		return fmt.Errorf("order_count must not be negative")
	}
	return nil
}
