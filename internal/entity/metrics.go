package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricSource identifies which external platform a daily metric came from.
type MetricSource string

const (
	MetricSourceGoogleAds MetricSource = "google_ads"
	MetricSourceMetaAds   MetricSource = "meta_ads"
	MetricSourceShopify   MetricSource = "shopify"
)

var validMetricSources = map[MetricSource]bool{
	MetricSourceGoogleAds: true,
	MetricSourceMetaAds:   true,
	MetricSourceShopify:   true,
}

// IsValidMetricSource returns true if the source is known.
func IsValidMetricSource(s string) bool {
	return validMetricSources[MetricSource(s)]
}

// AdDailyMetric is one day of ad platform performance for one campaign.
// At most one row exists per (source, date, campaign); a re-sync of the
// same day overwrites rather than duplicates.
type AdDailyMetric struct {
	Source      MetricSource    `db:"source" json:"source"`
	Date        time.Time       `db:"date" json:"date"`
	CampaignID  string          `db:"campaign_id" json:"campaign_id"`
	Spend       decimal.Decimal `db:"spend" json:"spend"`
	Clicks      int64           `db:"clicks" json:"clicks"`
	Impressions int64           `db:"impressions" json:"impressions"`
	CTR         float64         `db:"ctr" json:"ctr"`
	Conversions float64         `db:"conversions" json:"conversions"`
}

// ShopifyDailyMetric is one day of aggregated store outcomes. At most one
// row exists per date.
type ShopifyDailyMetric struct {
	Date            time.Time       `db:"date" json:"date"`
	Revenue         decimal.Decimal `db:"revenue" json:"revenue"`
	ShippingRevenue decimal.Decimal `db:"shipping_revenue" json:"shipping_revenue"`
	ShippingCost    decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	OrderCount      int             `db:"order_count" json:"order_count"`
}

// MonthlySummary is one calendar month of merged cross-source metrics.
// Derived on demand, never persisted. Ratio fields are nil when their
// denominator is zero ("not available", not zero and not an error).
type MonthlySummary struct {
	Month           time.Time        `json:"month"`
	Revenue         decimal.Decimal  `json:"revenue"`
	ShippingRevenue decimal.Decimal  `json:"shipping_revenue"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	AdSpend         decimal.Decimal  `json:"ad_spend"`
	COGS            decimal.Decimal  `json:"cogs"`
	OrderCount      int              `json:"order_count"`
	Clicks          int64            `json:"clicks"`
	Impressions     int64            `json:"impressions"`
	Conversions     float64          `json:"conversions"`
	ROAS            *decimal.Decimal `json:"roas,omitempty"`
	POAS            *decimal.Decimal `json:"poas,omitempty"`
	Profit          decimal.Decimal  `json:"profit"`
	ProfitMargin    *decimal.Decimal `json:"profit_margin,omitempty"`
	HasAdData       bool             `json:"has_ad_data"`
	HasShopifyData  bool             `json:"has_shopify_data"`
	Gap             bool             `json:"gap"`
	Partial         bool             `json:"partial"`
}

// TotalRevenue is product revenue plus shipping collected from customers.
func (ms *MonthlySummary) TotalRevenue() decimal.Decimal {
	return ms.Revenue.Add(ms.ShippingRevenue)
}

// MonthLabel formats the month as YYYY-MM.
func (ms *MonthlySummary) MonthLabel() string {
	return ms.Month.Format("2006-01")
}

// Campaign represents the campaign table.
type Campaign struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	Platform  string    `db:"platform" json:"platform"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Metric is one named aggregate value for a campaign lookback window.
type Metric struct {
	Name  string  `db:"name" json:"name"`
	Value float64 `db:"value" json:"value"`
	Unit  string  `db:"unit" json:"unit"`
}

// CampaignWithMetrics is a campaign plus its windowed aggregates.
type CampaignWithMetrics struct {
	Campaign
	Metrics []Metric `json:"metrics"`
}

// DataPoint is one day of a time series.
type DataPoint struct {
	Date  string  `db:"date" json:"date"`
	Value float64 `db:"value" json:"value"`
}

// TimeSeries is a daily series of one metric for one campaign.
type TimeSeries struct {
	CampaignID   string      `json:"campaign_id"`
	CampaignName string      `json:"campaign_name"`
	MetricName   string      `json:"metric_name"`
	Unit         string      `json:"unit"`
	DataPoints   []DataPoint `json:"data_points"`
}

// SyncLog represents the sync_log table.
type SyncLog struct {
	ID           int       `db:"id" json:"id"`
	SyncedAt     time.Time `db:"synced_at" json:"synced_at"`
	Source       string    `db:"source" json:"source"`
	Records      int       `db:"records" json:"records"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
}
