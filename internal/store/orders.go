package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

type ordersStore struct {
	*MYSQLStore
}

// Orders returns an object implementing Orders interface
func (ms *MYSQLStore) Orders() dependency.Orders {
	return &ordersStore{
		MYSQLStore: ms,
	}
}

// UpsertOrders writes synced orders keyed by external id. An existing order
// keeps its shipping estimate columns; its line items are replaced wholesale
// so a re-sync never duplicates them.
func (ms *MYSQLStore) UpsertOrders(ctx context.Context, orders []entity.OrderUpsert) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	count := 0
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		for i := range orders {
			o := &orders[i]
			if err := upsertOrder(ctx, rep.DB(), o); err != nil {
				return fmt.Errorf("upsert order %s: %w", o.ExternalID, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func upsertOrder(ctx context.Context, db dependency.DB, o *entity.OrderUpsert) error {
	err := ExecNamed(ctx, db, `
	INSERT INTO customer_order
		(external_id, order_number, order_date, subtotal, total_discounts, shipping_charged)
	VALUES
		(:externalId, :orderNumber, :orderDate, :subtotal, :totalDiscounts, :shippingCharged)
	ON DUPLICATE KEY UPDATE
		order_number = VALUES(order_number),
		order_date = VALUES(order_date),
		subtotal = VALUES(subtotal),
		total_discounts = VALUES(total_discounts),
		shipping_charged = VALUES(shipping_charged),
		synced_at = CURRENT_TIMESTAMP`,
		map[string]any{
			"externalId":      o.ExternalID,
			"orderNumber":     o.OrderNumber,
			"orderDate":       o.OrderDate.Format("2006-01-02"),
			"subtotal":        o.Subtotal,
			"totalDiscounts":  o.TotalDiscounts,
			"shippingCharged": o.ShippingCharged,
		})
	if err != nil {
		return err
	}

	var orderID int
	if err := db.GetContext(ctx, &orderID,
		`SELECT id FROM customer_order WHERE external_id = ?`, o.ExternalID); err != nil {
		return fmt.Errorf("resolve order id: %w", err)
	}

	err = ExecNamed(ctx, db, `DELETE FROM order_item WHERE order_id = :orderId`, map[string]any{
		"orderId": orderID,
	})
	if err != nil {
		return fmt.Errorf("delete stale line items: %w", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(o.Items))
	for _, li := range o.Items {
		rows = append(rows, map[string]any{
			"order_id":      orderID,
			"product_title": li.ProductTitle,
			"variant_title": li.VariantTitle,
			"quantity":      li.Quantity,
			"unit_price":    li.UnitPrice,
		})
	}
	return BulkInsert(ctx, db, "order_item", rows)
}

func (ms *MYSQLStore) GetOrderByExternalID(ctx context.Context, externalID string) (*entity.OrderFull, error) {
	order, err := QueryNamedOne[entity.Order](ctx, ms.DB(), `
	SELECT id, external_id, order_number, order_date, subtotal, total_discounts,
		shipping_charged, shipping_cost_estimated, matched_rule_id, synced_at
	FROM customer_order WHERE external_id = :externalId`,
		map[string]any{"externalId": externalID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", externalID, derr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := QueryListNamed[entity.LineItem](ctx, ms.DB(), `
	SELECT id, order_id, product_title, variant_title, quantity, unit_price
	FROM order_item WHERE order_id = :orderId ORDER BY id ASC`,
		map[string]any{"orderId": order.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	return &entity.OrderFull{Order: order, Items: items}, nil
}

func (ms *MYSQLStore) GetOrdersPaged(ctx context.Context, limit, offset int) ([]entity.Order, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	count, err := QueryCountNamed(ctx, ms.DB(),
		`SELECT COUNT(*) FROM customer_order`, map[string]any{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders, err := QueryListNamed[entity.Order](ctx, ms.DB(), `
	SELECT id, external_id, order_number, order_date, subtotal, total_discounts,
		shipping_charged, shipping_cost_estimated, matched_rule_id, synced_at
	FROM customer_order
	ORDER BY order_date DESC, id DESC
	LIMIT :limit OFFSET :offset`,
		map[string]any{"limit": limit, "offset": offset})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}

	return orders, int(count), nil
}

func (ms *MYSQLStore) ListOrderExternalIDs(ctx context.Context) ([]string, error) {
	rows, err := ms.DB().QueryxContext(ctx,
		`SELECT external_id FROM customer_order ORDER BY order_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list order ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (ms *MYSQLStore) SetShippingEstimate(ctx context.Context, externalID string, estimate decimal.NullDecimal, ruleID sql.NullString) error {
	err := ExecNamed(ctx, ms.DB(), `
	UPDATE customer_order SET
		shipping_cost_estimated = :estimate,
		matched_rule_id = :ruleId
	WHERE external_id = :externalId`,
		map[string]any{
			"externalId": externalID,
			"estimate":   estimate,
			"ruleId":     ruleID,
		})
	if err != nil {
		return fmt.Errorf("failed to set shipping estimate: %w", err)
	}
	return nil
}

// RuleUsageSince derives per-rule usage by scanning matched_rule_id over the
// window instead of keeping running counters.
func (ms *MYSQLStore) RuleUsageSince(ctx context.Context, since time.Time) ([]entity.RuleUsage, error) {
	usage, err := QueryListNamed[entity.RuleUsage](ctx, ms.DB(), `
	SELECT
		co.matched_rule_id AS rule_id,
		COALESCE(sp.name, '') AS rule_name,
		COUNT(*) AS orders,
		COALESCE(SUM(co.shipping_cost_estimated), 0) AS total_cost
	FROM customer_order co
	LEFT JOIN shipping_profile sp ON sp.id = co.matched_rule_id
	WHERE co.matched_rule_id IS NOT NULL
		AND co.order_date >= :since
	GROUP BY co.matched_rule_id, sp.name
	ORDER BY orders DESC`,
		map[string]any{"since": since.Format("2006-01-02")})
	if err != nil {
		return nil, fmt.Errorf("failed to get rule usage: %w", err)
	}
	return usage, nil
}
