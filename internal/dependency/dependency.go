package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/borncamp/adboard-manager/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}

	ShippingProfiles interface {
		// AddProfile inserts a new profile and returns it with its assigned
		// id and creation sequence.
		AddProfile(ctx context.Context, p *entity.ShippingProfileInsert) (*entity.ShippingProfile, error)
		// UpdateProfile replaces the user supplied fields of an existing profile.
		UpdateProfile(ctx context.Context, id string, p *entity.ShippingProfileInsert) error
		// DeleteProfile removes a profile. Historical estimates keep their
		// matched_rule_id until the next recompute.
		DeleteProfile(ctx context.Context, id string) error
		// GetProfiles returns profiles ordered by (priority ASC, seq ASC).
		GetProfiles(ctx context.Context, activeOnly bool) ([]entity.ShippingProfile, error)
		// GetProfileByID returns a single profile.
		GetProfileByID(ctx context.Context, id string) (*entity.ShippingProfile, error)
	}

	Orders interface {
		// UpsertOrders writes orders by external id, replacing line items on conflict.
		UpsertOrders(ctx context.Context, orders []entity.OrderUpsert) (int, error)
		// GetOrderByExternalID returns an order with its line items.
		GetOrderByExternalID(ctx context.Context, externalID string) (*entity.OrderFull, error)
		// GetOrdersPaged lists orders newest first.
		GetOrdersPaged(ctx context.Context, limit, offset int) ([]entity.Order, int, error)
		// ListOrderExternalIDs returns all known external order ids.
		ListOrderExternalIDs(ctx context.Context) ([]string, error)
		// SetShippingEstimate persists the recompute outcome for one order.
		SetShippingEstimate(ctx context.Context, externalID string, estimate decimal.NullDecimal, ruleID sql.NullString) error
		// RuleUsageSince derives per-rule usage counts by scanning orders
		// whose order_date falls on or after since.
		RuleUsageSince(ctx context.Context, since time.Time) ([]entity.RuleUsage, error)
	}

	AdMetrics interface {
		// UpsertAdDailyMetrics writes rows keyed by (source, date, campaign);
		// re-syncing a day overwrites it.
		UpsertAdDailyMetrics(ctx context.Context, metrics []entity.AdDailyMetric) error
		// GetAdDailyMetrics returns rows with date in [from, to], ascending.
		GetAdDailyMetrics(ctx context.Context, from, to time.Time) ([]entity.AdDailyMetric, error)
	}

	ShopifyMetrics interface {
		// UpsertShopifyDailyMetrics writes rows keyed by date.
		UpsertShopifyDailyMetrics(ctx context.Context, metrics []entity.ShopifyDailyMetric) error
		// GetShopifyDailyMetrics returns rows with date in [from, to], ascending.
		GetShopifyDailyMetrics(ctx context.Context, from, to time.Time) ([]entity.ShopifyDailyMetric, error)
	}

	Campaigns interface {
		UpsertCampaign(ctx context.Context, c *entity.Campaign) error
		// GetCampaigns lists campaigns with their aggregates over the last
		// days: ctr averaged, every other metric summed.
		GetCampaigns(ctx context.Context, days int) ([]entity.CampaignWithMetrics, error)
		// GetCampaignTimeSeries returns one metric's daily series for one campaign.
		GetCampaignTimeSeries(ctx context.Context, campaignID, metric string, days int) (*entity.TimeSeries, error)
		// GetAllCampaignsTimeSeries returns one metric's daily series for
		// every campaign that has data in the window.
		GetAllCampaignsTimeSeries(ctx context.Context, metric string, days int) ([]entity.TimeSeries, error)
	}

	SyncLog interface {
		LogSync(ctx context.Context, source string, records int, status, errMsg string) error
		LastSync(ctx context.Context) (*entity.SyncLog, error)
	}

	Admin interface {
		AddAdmin(ctx context.Context, un, pwHash string) error
		DeleteAdmin(ctx context.Context, username string) error
		ChangePassword(ctx context.Context, un, newHash string) error
		PasswordHashByUsername(ctx context.Context, un string) (string, error)
	}

	Repository interface {
		ShippingProfiles() ShippingProfiles
		Orders() Orders
		AdMetrics() AdMetrics
		ShopifyMetrics() ShopifyMetrics
		Campaigns() Campaigns
		SyncLog() SyncLog
		Admin() Admin
		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Close()
		Ping(ctx context.Context) error
		DB() DB
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
		PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}
)
