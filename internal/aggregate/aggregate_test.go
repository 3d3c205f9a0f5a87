package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
)

type fakeRepo struct {
	dependency.Repository
	now  time.Time
	ad   []entity.AdDailyMetric
	shop []entity.ShopifyDailyMetric
}

func (f *fakeRepo) Now() time.Time { return f.now }

func (f *fakeRepo) AdMetrics() dependency.AdMetrics {
	return &fakeAdMetrics{ad: f.ad}
}

func (f *fakeRepo) ShopifyMetrics() dependency.ShopifyMetrics {
	return &fakeShopifyMetrics{shop: f.shop}
}

type fakeAdMetrics struct {
	dependency.AdMetrics
	ad []entity.AdDailyMetric
}

func (f *fakeAdMetrics) GetAdDailyMetrics(ctx context.Context, from, to time.Time) ([]entity.AdDailyMetric, error) {
	var out []entity.AdDailyMetric
	for _, m := range f.ad {
		if !m.Date.Before(from) && !m.Date.After(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeShopifyMetrics struct {
	dependency.ShopifyMetrics
	shop []entity.ShopifyDailyMetric
}

func (f *fakeShopifyMetrics) GetShopifyDailyMetrics(ctx context.Context, from, to time.Time) ([]entity.ShopifyDailyMetric, error) {
	var out []entity.ShopifyDailyMetric
	for _, m := range f.shop {
		if !m.Date.Before(from) && !m.Date.After(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ad(date time.Time, spend float64, clicks int64) entity.AdDailyMetric {
	return entity.AdDailyMetric{
		Source:     entity.MetricSourceGoogleAds,
		Date:       date,
		CampaignID: "c-1",
		Spend:      decimal.NewFromFloat(spend),
		Clicks:     clicks,
	}
}

func shop(date time.Time, revenue, shippingRev, shippingCost float64, orders int) entity.ShopifyDailyMetric {
	return entity.ShopifyDailyMetric{
		Date:            date,
		Revenue:         decimal.NewFromFloat(revenue),
		ShippingRevenue: decimal.NewFromFloat(shippingRev),
		ShippingCost:    decimal.NewFromFloat(shippingCost),
		OrderCount:      orders,
	}
}

func TestSummarizeMonth(t *testing.T) {
	repo := &fakeRepo{
		now: day(2026, time.April, 10),
		ad: []entity.AdDailyMetric{
			ad(day(2026, time.March, 1), 100, 50),
			ad(day(2026, time.March, 2), 150, 70),
		},
		shop: []entity.ShopifyDailyMetric{
			shop(day(2026, time.March, 1), 900, 100, 60, 12),
			shop(day(2026, time.March, 2), 600, 50, 40, 8),
		},
	}
	// 20% cost of goods on product revenue
	svc := New(repo, &Config{COGSRate: 20})

	ms, err := svc.SummarizeMonth(context.Background(), day(2026, time.March, 15))
	require.NoError(t, err)

	assert.True(t, ms.Revenue.Equal(decimal.NewFromInt(1500)))
	assert.True(t, ms.ShippingRevenue.Equal(decimal.NewFromInt(150)))
	assert.True(t, ms.AdSpend.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, int64(120), ms.Clicks)
	assert.Equal(t, 20, ms.OrderCount)
	assert.False(t, ms.Partial)

	// cogs = 1500 * 20% = 300; total revenue = 1650
	assert.True(t, ms.COGS.Equal(decimal.NewFromInt(300)))
	// profit = 1650 - 250 - 300 - 100 = 1000
	assert.True(t, ms.Profit.Equal(decimal.NewFromInt(1000)), "got %s", ms.Profit)

	require.NotNil(t, ms.ROAS)
	assert.True(t, ms.ROAS.Equal(decimal.NewFromFloat(6.6)), "got %s", ms.ROAS)
	require.NotNil(t, ms.POAS)
	// (1650 - 100) / 250 = 6.2
	assert.True(t, ms.POAS.Equal(decimal.NewFromFloat(6.2)), "got %s", ms.POAS)
	require.NotNil(t, ms.ProfitMargin)
	// 1000 / 1650 * 100 = 60.61
	assert.True(t, ms.ProfitMargin.Equal(decimal.NewFromFloat(60.61)), "got %s", ms.ProfitMargin)
}

func TestSummarizeMonthNoSpend(t *testing.T) {
	repo := &fakeRepo{
		now:  day(2026, time.April, 10),
		shop: []entity.ShopifyDailyMetric{shop(day(2026, time.March, 5), 500, 0, 20, 4)},
	}
	svc := New(repo, nil)

	ms, err := svc.SummarizeMonth(context.Background(), day(2026, time.March, 1))
	require.NoError(t, err)

	// no spend means ratios are unavailable, not zero
	assert.Nil(t, ms.ROAS)
	assert.Nil(t, ms.POAS)
	assert.True(t, ms.COGS.IsZero())
	assert.True(t, ms.Profit.Equal(decimal.NewFromInt(480)))
}

func TestSummarizeRange(t *testing.T) {
	repo := &fakeRepo{
		now: day(2026, time.April, 10),
		ad: []entity.AdDailyMetric{
			ad(day(2026, time.January, 15), 100, 10),
			// February has no ad data at all
			ad(day(2026, time.March, 15), 200, 20),
			ad(day(2026, time.April, 2), 50, 5),
		},
		shop: []entity.ShopifyDailyMetric{
			shop(day(2026, time.January, 20), 400, 0, 10, 3),
			shop(day(2026, time.February, 20), 500, 0, 10, 4),
			shop(day(2026, time.March, 20), 600, 0, 10, 5),
			shop(day(2026, time.April, 3), 100, 0, 5, 1),
		},
	}
	svc := New(repo, nil)

	out, err := svc.SummarizeRange(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, out, 6)

	assert.Equal(t, "2025-11", out[0].MonthLabel())
	assert.Equal(t, "2026-04", out[5].MonthLabel())

	// leading empty months are not gaps
	assert.False(t, out[0].Gap)
	assert.False(t, out[1].Gap)

	jan, feb, mar, apr := out[2], out[3], out[4], out[5]
	assert.True(t, jan.HasAdData)
	assert.True(t, jan.HasShopifyData)
	assert.False(t, jan.Gap)

	// February sits between months with ad data but has none itself
	assert.False(t, feb.HasAdData)
	assert.True(t, feb.HasShopifyData)
	assert.True(t, feb.Gap)

	assert.False(t, mar.Gap)
	assert.False(t, mar.Partial)

	assert.True(t, apr.Partial)
	assert.True(t, apr.AdSpend.Equal(decimal.NewFromInt(50)))
}

func TestSummarizeRangeEmpty(t *testing.T) {
	repo := &fakeRepo{now: day(2026, time.April, 10)}
	svc := New(repo, nil)

	out, err := svc.SummarizeRange(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, ms := range out {
		assert.True(t, ms.Revenue.IsZero())
		assert.Nil(t, ms.ROAS)
		assert.False(t, ms.Gap)
	}
}
