package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derr "github.com/borncamp/adboard-manager/internal/errors"
)

func TestSetShippingEstimate(t *testing.T) {
	ms, mock := newMockStore(t)

	// decimal's driver value drops trailing zeros, so 7.50 goes over as "7.5"
	mock.ExpectExec("UPDATE customer_order SET").
		WithArgs("7.5", "rule-1", "ord-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ms.SetShippingEstimate(context.Background(), "ord-1",
		decimal.NullDecimal{Decimal: decimal.NewFromFloat(7.5), Valid: true},
		sql.NullString{String: "rule-1", Valid: true},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetShippingEstimateNull(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectExec("UPDATE customer_order SET").
		WithArgs(nil, nil, "ord-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ms.SetShippingEstimate(context.Background(), "ord-1",
		decimal.NullDecimal{}, sql.NullString{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByExternalIDNotFound(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("FROM customer_order WHERE external_id =").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := ms.GetOrderByExternalID(context.Background(), "missing")
	assert.ErrorIs(t, err, derr.ErrNotFound)
}

func TestListOrderExternalIDs(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("SELECT external_id FROM customer_order").
		WillReturnRows(sqlmock.NewRows([]string{"external_id"}).
			AddRow("ord-1").AddRow("ord-2"))

	ids, err := ms.ListOrderExternalIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1", "ord-2"}, ids)
}

func TestRuleUsageSince(t *testing.T) {
	ms, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"rule_id", "rule_name", "orders", "total_cost"}).
		AddRow("rule-1", "mats", 14, "70.00").
		AddRow("rule-2", "", 3, "9.00")
	mock.ExpectQuery("LEFT JOIN shipping_profile").
		WithArgs("2026-02-13").
		WillReturnRows(rows)

	usage, err := ms.RuleUsageSince(context.Background(),
		time.Date(2026, time.February, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "rule-1", usage[0].RuleID)
	assert.Equal(t, 14, usage[0].Orders)
	assert.True(t, usage[0].TotalCost.Equal(decimal.NewFromInt(70)))
	// the rule row may be gone; the usage row survives with an empty name
	assert.Equal(t, "", usage[1].RuleName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastSyncEmpty(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("FROM sync_log").
		WillReturnRows(sqlmock.NewRows([]string{"id", "synced_at", "source", "records", "status", "error_message"}))

	_, err := ms.LastSync(context.Background())
	assert.ErrorIs(t, err, derr.ErrNotFound)
}

func TestLastSync(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("FROM sync_log").
		WillReturnRows(sqlmock.NewRows([]string{"id", "synced_at", "source", "records", "status", "error_message"}).
			AddRow(7, time.Now(), "orders", 42, "success", ""))

	sl, err := ms.LastSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "orders", sl.Source)
	assert.Equal(t, 42, sl.Records)
}
