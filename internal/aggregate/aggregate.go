package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
)

// Config holds aggregator configuration.
type Config struct {
	// COGSRate is the cost of goods fraction of product revenue, expressed
	// as a percentage. None of the synced sources reports COGS directly.
	COGSRate float64 `mapstructure:"cogsRate"`
}

// Service merges ad platform and store daily metrics into calendar month
// summaries. Summaries are derived on every read; nothing is cached or
// persisted, so a re-sync of any day is reflected immediately.
type Service struct {
	repo     dependency.Repository
	cogsRate decimal.Decimal
}

func New(repo dependency.Repository, c *Config) *Service {
	rate := decimal.Zero
	if c != nil && c.COGSRate > 0 {
		rate = decimal.NewFromFloat(c.COGSRate)
	}
	return &Service{repo: repo, cogsRate: rate}
}

// SummarizeRange returns one summary per calendar month for the last months,
// oldest first, ending at the current month. Months with no data at all are
// still present, zero valued and flagged as gaps, so chart axes stay
// continuous.
func (s *Service) SummarizeRange(ctx context.Context, months int) ([]entity.MonthlySummary, error) {
	if months <= 0 {
		months = 12
	}
	now := s.repo.Now().UTC()
	cur := monthStart(now)
	from := cur.AddDate(0, -(months - 1), 0)
	to := cur.AddDate(0, 1, 0).Add(-time.Nanosecond)

	ad, err := s.repo.AdMetrics().GetAdDailyMetrics(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get ad metrics: %w", err)
	}
	shop, err := s.repo.ShopifyMetrics().GetShopifyDailyMetrics(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get shopify metrics: %w", err)
	}

	byMonth := make(map[time.Time]*entity.MonthlySummary, months)
	var order []time.Time
	for m := from; !m.After(cur); m = m.AddDate(0, 1, 0) {
		byMonth[m] = &entity.MonthlySummary{Month: m}
		order = append(order, m)
	}

	for i := range ad {
		if ms, ok := byMonth[monthStart(ad[i].Date.UTC())]; ok {
			addAd(ms, &ad[i])
		}
	}
	for i := range shop {
		if ms, ok := byMonth[monthStart(shop[i].Date.UTC())]; ok {
			addShopify(ms, &shop[i])
		}
	}

	out := make([]entity.MonthlySummary, 0, len(order))
	for _, m := range order {
		ms := byMonth[m]
		s.finalize(ms)
		ms.Partial = m.Equal(cur)
		out = append(out, *ms)
	}
	markGaps(out)
	return out, nil
}

// SummarizeMonth returns the summary for the month containing date.
func (s *Service) SummarizeMonth(ctx context.Context, date time.Time) (*entity.MonthlySummary, error) {
	m := monthStart(date.UTC())
	from := m
	to := m.AddDate(0, 1, 0).Add(-time.Nanosecond)

	ad, err := s.repo.AdMetrics().GetAdDailyMetrics(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get ad metrics: %w", err)
	}
	shop, err := s.repo.ShopifyMetrics().GetShopifyDailyMetrics(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get shopify metrics: %w", err)
	}

	ms := &entity.MonthlySummary{Month: m}
	for i := range ad {
		addAd(ms, &ad[i])
	}
	for i := range shop {
		addShopify(ms, &shop[i])
	}
	s.finalize(ms)
	ms.Partial = m.Equal(monthStart(s.repo.Now().UTC()))
	return ms, nil
}

func addAd(ms *entity.MonthlySummary, m *entity.AdDailyMetric) {
	ms.HasAdData = true
	ms.AdSpend = ms.AdSpend.Add(m.Spend)
	ms.Clicks += m.Clicks
	ms.Impressions += m.Impressions
	ms.Conversions += m.Conversions
}

func addShopify(ms *entity.MonthlySummary, m *entity.ShopifyDailyMetric) {
	ms.HasShopifyData = true
	ms.Revenue = ms.Revenue.Add(m.Revenue)
	ms.ShippingRevenue = ms.ShippingRevenue.Add(m.ShippingRevenue)
	ms.ShippingCost = ms.ShippingCost.Add(m.ShippingCost)
	ms.OrderCount += m.OrderCount
}

// finalize fills the derived fields. Ratio fields stay nil when their
// denominator is zero: "no spend yet" is not a ROAS of zero.
func (s *Service) finalize(ms *entity.MonthlySummary) {
	ms.COGS = ms.Revenue.Mul(s.cogsRate).Div(decimal.NewFromInt(100)).Round(2)

	totalRevenue := ms.TotalRevenue()
	ms.Profit = totalRevenue.Sub(ms.AdSpend).Sub(ms.COGS).Sub(ms.ShippingCost).Round(2)

	if ms.AdSpend.IsPositive() {
		roas := totalRevenue.Div(ms.AdSpend).Round(2)
		ms.ROAS = &roas
		poas := totalRevenue.Sub(ms.ShippingCost).Div(ms.AdSpend).Round(2)
		ms.POAS = &poas
	}
	if totalRevenue.IsPositive() {
		margin := ms.Profit.Div(totalRevenue).Mul(decimal.NewFromInt(100)).Round(2)
		ms.ProfitMargin = &margin
	}
}

// markGaps flags months that sit between months with data but lack data from
// a source themselves. Leading months before the first sync and the current
// partial month are not gaps.
func markGaps(out []entity.MonthlySummary) {
	markSourceGaps(out,
		func(ms *entity.MonthlySummary) bool { return ms.HasAdData },
	)
	markSourceGaps(out,
		func(ms *entity.MonthlySummary) bool { return ms.HasShopifyData },
	)
}

func markSourceGaps(out []entity.MonthlySummary, has func(*entity.MonthlySummary) bool) {
	first, last := -1, -1
	for i := range out {
		if has(&out[i]) {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return
	}
	for i := first; i < last; i++ {
		if !has(&out[i]) {
			out[i].Gap = true
		}
	}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
