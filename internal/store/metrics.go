package store

import (
	"context"
	"fmt"
	"time"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
)

type adMetricsStore struct {
	*MYSQLStore
}

// AdMetrics returns an object implementing AdMetrics interface
func (ms *MYSQLStore) AdMetrics() dependency.AdMetrics {
	return &adMetricsStore{
		MYSQLStore: ms,
	}
}

// UpsertAdDailyMetrics saves or updates daily ad platform metrics keyed by
// (source, date, campaign). A re-sync of the same day overwrites.
func (ms *MYSQLStore) UpsertAdDailyMetrics(ctx context.Context, metrics []entity.AdDailyMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	query := `
	INSERT INTO ad_daily_metric
		(source, date, campaign_id, spend, clicks, impressions, ctr, conversions)
	VALUES
		(:source, :date, :campaignId, :spend, :clicks, :impressions, :ctr, :conversions)
	ON DUPLICATE KEY UPDATE
		spend = VALUES(spend),
		clicks = VALUES(clicks),
		impressions = VALUES(impressions),
		ctr = VALUES(ctr),
		conversions = VALUES(conversions),
		updated_at = CURRENT_TIMESTAMP`

	for _, m := range metrics {
		params := map[string]any{
			"source":      m.Source,
			"date":        m.Date.Format("2006-01-02"),
			"campaignId":  m.CampaignID,
			"spend":       m.Spend,
			"clicks":      m.Clicks,
			"impressions": m.Impressions,
			"ctr":         m.CTR,
			"conversions": m.Conversions,
		}
		if err := ExecNamed(ctx, ms.DB(), query, params); err != nil {
			return fmt.Errorf("failed to save ad metrics for %s %s: %w",
				m.Source, m.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func (ms *MYSQLStore) GetAdDailyMetrics(ctx context.Context, from, to time.Time) ([]entity.AdDailyMetric, error) {
	metrics, err := QueryListNamed[entity.AdDailyMetric](ctx, ms.DB(), `
	SELECT source, date, campaign_id, spend, clicks, impressions, ctr, conversions
	FROM ad_daily_metric
	WHERE date >= :from AND date <= :to
	ORDER BY date ASC`,
		map[string]any{
			"from": from.Format("2006-01-02"),
			"to":   to.Format("2006-01-02"),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get ad metrics: %w", err)
	}
	return metrics, nil
}

type shopifyMetricsStore struct {
	*MYSQLStore
}

// ShopifyMetrics returns an object implementing ShopifyMetrics interface
func (ms *MYSQLStore) ShopifyMetrics() dependency.ShopifyMetrics {
	return &shopifyMetricsStore{
		MYSQLStore: ms,
	}
}

// UpsertShopifyDailyMetrics saves or updates daily store metrics keyed by date.
func (ms *MYSQLStore) UpsertShopifyDailyMetrics(ctx context.Context, metrics []entity.ShopifyDailyMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	query := `
	INSERT INTO shopify_daily_metric
		(date, revenue, shipping_revenue, shipping_cost, order_count)
	VALUES
		(:date, :revenue, :shippingRevenue, :shippingCost, :orderCount)
	ON DUPLICATE KEY UPDATE
		revenue = VALUES(revenue),
		shipping_revenue = VALUES(shipping_revenue),
		shipping_cost = VALUES(shipping_cost),
		order_count = VALUES(order_count),
		updated_at = CURRENT_TIMESTAMP`

	for _, m := range metrics {
		params := map[string]any{
			"date":            m.Date.Format("2006-01-02"),
			"revenue":         m.Revenue,
			"shippingRevenue": m.ShippingRevenue,
			"shippingCost":    m.ShippingCost,
			"orderCount":      m.OrderCount,
		}
		if err := ExecNamed(ctx, ms.DB(), query, params); err != nil {
			return fmt.Errorf("failed to save shopify metrics for %s: %w",
				m.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func (ms *MYSQLStore) GetShopifyDailyMetrics(ctx context.Context, from, to time.Time) ([]entity.ShopifyDailyMetric, error) {
	metrics, err := QueryListNamed[entity.ShopifyDailyMetric](ctx, ms.DB(), `
	SELECT date, revenue, shipping_revenue, shipping_cost, order_count
	FROM shopify_daily_metric
	WHERE date >= :from AND date <= :to
	ORDER BY date ASC`,
		map[string]any{
			"from": from.Format("2006-01-02"),
			"to":   to.Format("2006-01-02"),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get shopify metrics: %w", err)
	}
	return metrics, nil
}
