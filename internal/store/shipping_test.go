package store

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

func newMockStore(t *testing.T) (*MYSQLStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &MYSQLStore{db: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

var profileColumns = []string{
	"id", "seq", "name", "description", "priority", "is_active", "is_default",
	"match_conditions", "cost_rules", "created_at", "updated_at",
}

func profileRowValues(id string, seq int64, priority int) []driver.Value {
	return []driver.Value{
		id, seq, "profile " + id, nil, priority, true, false,
		[]byte(`{"field":"product_title","operator":"contains","value":"mat","case_sensitive":false}`),
		[]byte(`{"type":"fixed","base_cost":"5"}`),
		time.Now(), time.Now(),
	}
}

func TestGetProfiles(t *testing.T) {
	ms, mock := newMockStore(t)

	rows := sqlmock.NewRows(profileColumns).
		AddRow(profileRowValues("a", 1, 10)...).
		AddRow(profileRowValues("b", 2, 20)...)
	mock.ExpectQuery("FROM shipping_profile").WillReturnRows(rows)

	profiles, err := ms.GetProfiles(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	p := profiles[0]
	assert.Equal(t, "a", p.ID)
	assert.Equal(t, entity.MatchFieldProductTitle, p.Match.Field)
	assert.Equal(t, entity.MatchOperatorContains, p.Match.Operator)
	assert.Equal(t, entity.CostRuleFixed, p.Cost.Type)
	require.NotNil(t, p.Cost.BaseCost)
	assert.Equal(t, "5", p.Cost.BaseCost.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfilesActiveOnly(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("FROM shipping_profile WHERE is_active = TRUE").
		WillReturnRows(sqlmock.NewRows(profileColumns))

	profiles, err := ms.GetProfiles(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileByIDNotFound(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("FROM shipping_profile WHERE id =").
		WillReturnRows(sqlmock.NewRows(profileColumns))

	_, err := ms.GetProfileByID(context.Background(), "missing")
	assert.ErrorIs(t, err, derr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfilesBadJSON(t *testing.T) {
	ms, mock := newMockStore(t)

	vals := profileRowValues("a", 1, 10)
	vals[7] = []byte(`not json`)
	mock.ExpectQuery("FROM shipping_profile").
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow(vals...))

	_, err := ms.GetProfiles(context.Background(), false)
	assert.Error(t, err)
}

func TestDeleteProfile(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("FROM shipping_profile WHERE id =").
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow(profileRowValues("a", 1, 10)...))
	mock.ExpectExec("DELETE FROM shipping_profile").
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ms.DeleteProfile(context.Background(), "a")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProfileUnknown(t *testing.T) {
	ms, mock := newMockStore(t)

	mock.ExpectQuery("FROM shipping_profile WHERE id =").
		WillReturnRows(sqlmock.NewRows(profileColumns))

	err := ms.DeleteProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, derr.ErrNotFound)
}
