package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borncamp/adboard-manager/internal/entity"
)

func TestUpsertAdDailyMetrics(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO ad_daily_metric").
		WithArgs("google_ads", "2026-03-01", "c-1", "12.5", int64(10), int64(100), 0.1, 2.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ms.UpsertAdDailyMetrics(context.Background(), []entity.AdDailyMetric{
		{
			Source:      entity.MetricSourceGoogleAds,
			Date:        time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			CampaignID:  "c-1",
			Spend:       decimal.NewFromFloat(12.5),
			Clicks:      10,
			Impressions: 100,
			CTR:         0.1,
			Conversions: 2,
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAdDailyMetricsEmpty(t *testing.T) {
	ms, mock := newMockStore(t)

	// nothing to write, nothing hits the database
	require.NoError(t, ms.UpsertAdDailyMetrics(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertShopifyDailyMetrics(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO shopify_daily_metric").
		WithArgs("2026-03-01", "900", "100", "60", 12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ms.UpsertShopifyDailyMetrics(context.Background(), []entity.ShopifyDailyMetric{
		{
			Date:            time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			Revenue:         decimal.NewFromInt(900),
			ShippingRevenue: decimal.NewFromInt(100),
			ShippingCost:    decimal.NewFromInt(60),
			OrderCount:      12,
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShopifyDailyMetrics(t *testing.T) {
	ms, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"date", "revenue", "shipping_revenue", "shipping_cost", "order_count"}).
		AddRow(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), "900", "100", "60", 12).
		AddRow(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), "600", "50", "40", 8)
	mock.ExpectQuery("FROM shopify_daily_metric").
		WithArgs("2026-03-01", "2026-03-31").
		WillReturnRows(rows)

	got, err := ms.GetShopifyDailyMetrics(context.Background(),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Revenue.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, 8, got[1].OrderCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
