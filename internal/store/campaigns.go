package store

import (
	"context"
	"fmt"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
)

type campaignsStore struct {
	*MYSQLStore
}

// Campaigns returns an object implementing Campaigns interface
func (ms *MYSQLStore) Campaigns() dependency.Campaigns {
	return &campaignsStore{
		MYSQLStore: ms,
	}
}

// campaignMetricDef describes how one named campaign metric aggregates.
// CTR is a ratio so it averages over the window; everything else sums.
type campaignMetricDef struct {
	agg  string
	unit string
}

var campaignMetricDefs = map[string]campaignMetricDef{
	"spend":       {agg: "SUM(spend)", unit: "currency"},
	"clicks":      {agg: "SUM(clicks)", unit: "count"},
	"impressions": {agg: "SUM(impressions)", unit: "count"},
	"ctr":         {agg: "AVG(ctr)", unit: "percent"},
	"conversions": {agg: "SUM(conversions)", unit: "count"},
}

// campaignMetricOrder fixes the response ordering of campaign aggregates.
var campaignMetricOrder = []string{"spend", "clicks", "impressions", "ctr", "conversions"}

func (ms *MYSQLStore) UpsertCampaign(ctx context.Context, c *entity.Campaign) error {
	err := ExecNamed(ctx, ms.DB(), `
	INSERT INTO campaign (id, name, status, platform)
	VALUES (:id, :name, :status, :platform)
	ON DUPLICATE KEY UPDATE
		name = VALUES(name),
		status = VALUES(status),
		platform = VALUES(platform),
		updated_at = CURRENT_TIMESTAMP`,
		map[string]any{
			"id":       c.ID,
			"name":     c.Name,
			"status":   c.Status,
			"platform": c.Platform,
		})
	if err != nil {
		return fmt.Errorf("failed to upsert campaign %s: %w", c.ID, err)
	}
	return nil
}

type campaignAggRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Status      string  `db:"status"`
	Platform    string  `db:"platform"`
	Spend       float64 `db:"spend"`
	Clicks      float64 `db:"clicks"`
	Impressions float64 `db:"impressions"`
	CTR         float64 `db:"ctr"`
	Conversions float64 `db:"conversions"`
}

// GetCampaigns lists known campaigns with their aggregates over the last
// days. Campaigns without metric rows in the window still appear, zeroed.
func (ms *MYSQLStore) GetCampaigns(ctx context.Context, days int) ([]entity.CampaignWithMetrics, error) {
	if days <= 0 {
		days = 30
	}

	rows, err := QueryListNamed[campaignAggRow](ctx, ms.DB(), `
	SELECT
		c.id, c.name, c.status, c.platform,
		COALESCE(SUM(m.spend), 0) AS spend,
		COALESCE(SUM(m.clicks), 0) AS clicks,
		COALESCE(SUM(m.impressions), 0) AS impressions,
		COALESCE(AVG(m.ctr), 0) AS ctr,
		COALESCE(SUM(m.conversions), 0) AS conversions
	FROM campaign c
	LEFT JOIN ad_daily_metric m ON m.campaign_id = c.id
		AND m.date >= DATE_SUB(CURDATE(), INTERVAL :days DAY)
	GROUP BY c.id, c.name, c.status, c.platform
	ORDER BY spend DESC, c.name ASC`,
		map[string]any{"days": days})
	if err != nil {
		return nil, fmt.Errorf("failed to get campaigns: %w", err)
	}

	out := make([]entity.CampaignWithMetrics, 0, len(rows))
	for _, r := range rows {
		values := map[string]float64{
			"spend":       r.Spend,
			"clicks":      r.Clicks,
			"impressions": r.Impressions,
			"ctr":         r.CTR,
			"conversions": r.Conversions,
		}
		cm := entity.CampaignWithMetrics{
			Campaign: entity.Campaign{
				ID:       r.ID,
				Name:     r.Name,
				Status:   r.Status,
				Platform: r.Platform,
			},
		}
		for _, name := range campaignMetricOrder {
			cm.Metrics = append(cm.Metrics, entity.Metric{
				Name:  name,
				Value: values[name],
				Unit:  campaignMetricDefs[name].unit,
			})
		}
		out = append(out, cm)
	}
	return out, nil
}

func (ms *MYSQLStore) GetCampaignTimeSeries(ctx context.Context, campaignID, metric string, days int) (*entity.TimeSeries, error) {
	def, ok := campaignMetricDefs[metric]
	if !ok {
		return nil, fmt.Errorf("unknown campaign metric %q", metric)
	}
	if days <= 0 {
		days = 30
	}

	var name string
	if err := ms.DB().GetContext(ctx, &name,
		`SELECT name FROM campaign WHERE id = ?`, campaignID); err != nil {
		name = campaignID
	}

	// the aggregate expression is taken from a fixed whitelist, never from
	// the request
	points, err := QueryListNamed[entity.DataPoint](ctx, ms.DB(), `
	SELECT DATE_FORMAT(date, '%Y-%m-%d') AS date, `+def.agg+` AS value
	FROM ad_daily_metric
	WHERE campaign_id = :campaignId
		AND date >= DATE_SUB(CURDATE(), INTERVAL :days DAY)
	GROUP BY date
	ORDER BY date ASC`,
		map[string]any{"campaignId": campaignID, "days": days})
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign time series: %w", err)
	}

	return &entity.TimeSeries{
		CampaignID:   campaignID,
		CampaignName: name,
		MetricName:   metric,
		Unit:         def.unit,
		DataPoints:   points,
	}, nil
}

func (ms *MYSQLStore) GetAllCampaignsTimeSeries(ctx context.Context, metric string, days int) ([]entity.TimeSeries, error) {
	if _, ok := campaignMetricDefs[metric]; !ok {
		return nil, fmt.Errorf("unknown campaign metric %q", metric)
	}
	if days <= 0 {
		days = 30
	}

	rows, err := ms.DB().QueryxContext(ctx, `
	SELECT DISTINCT campaign_id FROM ad_daily_metric
	WHERE campaign_id <> '' AND date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
	ORDER BY campaign_id`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns with data: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan campaign id: %w", err)
		}
		ids = append(ids, id)
	}

	out := make([]entity.TimeSeries, 0, len(ids))
	for _, id := range ids {
		ts, err := ms.GetCampaignTimeSeries(ctx, id, metric, days)
		if err != nil {
			return nil, err
		}
		out = append(out, *ts)
	}
	return out, nil
}
