package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

type shippingProfilesStore struct {
	*MYSQLStore
}

// ShippingProfiles returns an object implementing ShippingProfiles interface
func (ms *MYSQLStore) ShippingProfiles() dependency.ShippingProfiles {
	return &shippingProfilesStore{
		MYSQLStore: ms,
	}
}

// shippingProfileRow mirrors the shipping_profile table; the match and cost
// payloads are stored as JSON columns.
type shippingProfileRow struct {
	ID          string         `db:"id"`
	Seq         int64          `db:"seq"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Priority    int            `db:"priority"`
	IsActive    bool           `db:"is_active"`
	IsDefault   bool           `db:"is_default"`
	Match       []byte         `db:"match_conditions"`
	Cost        []byte         `db:"cost_rules"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *shippingProfileRow) toEntity() (*entity.ShippingProfile, error) {
	p := &entity.ShippingProfile{
		ID:          r.ID,
		Seq:         r.Seq,
		Name:        r.Name,
		Description: r.Description,
		Priority:    r.Priority,
		IsActive:    r.IsActive,
		IsDefault:   r.IsDefault,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := json.Unmarshal(r.Match, &p.Match); err != nil {
		return nil, fmt.Errorf("unmarshal match conditions of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(r.Cost, &p.Cost); err != nil {
		return nil, fmt.Errorf("unmarshal cost rules of %s: %w", r.ID, err)
	}
	return p, nil
}

func (ms *MYSQLStore) AddProfile(ctx context.Context, p *entity.ShippingProfileInsert) (*entity.ShippingProfile, error) {
	matchJSON, err := json.Marshal(p.Match)
	if err != nil {
		return nil, fmt.Errorf("marshal match conditions: %w", err)
	}
	costJSON, err := json.Marshal(p.Cost)
	if err != nil {
		return nil, fmt.Errorf("marshal cost rules: %w", err)
	}

	id := uuid.New().String()
	err = ExecNamed(ctx, ms.DB(), `
	INSERT INTO shipping_profile
		(id, name, description, priority, is_active, is_default, match_conditions, cost_rules)
	VALUES
		(:id, :name, :description, :priority, :isActive, :isDefault, :matchConditions, :costRules)`,
		map[string]any{
			"id":              id,
			"name":            p.Name,
			"description":     p.Description,
			"priority":        p.Priority,
			"isActive":        p.IsActive,
			"isDefault":       p.IsDefault,
			"matchConditions": matchJSON,
			"costRules":       costJSON,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to add shipping profile: %w", err)
	}

	return ms.GetProfileByID(ctx, id)
}

func (ms *MYSQLStore) UpdateProfile(ctx context.Context, id string, p *entity.ShippingProfileInsert) error {
	matchJSON, err := json.Marshal(p.Match)
	if err != nil {
		return fmt.Errorf("marshal match conditions: %w", err)
	}
	costJSON, err := json.Marshal(p.Cost)
	if err != nil {
		return fmt.Errorf("marshal cost rules: %w", err)
	}

	if _, err := ms.GetProfileByID(ctx, id); err != nil {
		return err
	}

	err = ExecNamed(ctx, ms.DB(), `
	UPDATE shipping_profile SET
		name = :name,
		description = :description,
		priority = :priority,
		is_active = :isActive,
		is_default = :isDefault,
		match_conditions = :matchConditions,
		cost_rules = :costRules
	WHERE id = :id`,
		map[string]any{
			"id":              id,
			"name":            p.Name,
			"description":     p.Description,
			"priority":        p.Priority,
			"isActive":        p.IsActive,
			"isDefault":       p.IsDefault,
			"matchConditions": matchJSON,
			"costRules":       costJSON,
		})
	if err != nil {
		return fmt.Errorf("failed to update shipping profile: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) DeleteProfile(ctx context.Context, id string) error {
	if _, err := ms.GetProfileByID(ctx, id); err != nil {
		return err
	}
	err := ExecNamed(ctx, ms.DB(), `DELETE FROM shipping_profile WHERE id = :id`, map[string]any{
		"id": id,
	})
	if err != nil {
		return fmt.Errorf("failed to delete shipping profile: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) GetProfiles(ctx context.Context, activeOnly bool) ([]entity.ShippingProfile, error) {
	query := `
	SELECT id, seq, name, description, priority, is_active, is_default,
		match_conditions, cost_rules, created_at, updated_at
	FROM shipping_profile`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY priority ASC, seq ASC`

	rows, err := QueryListNamed[shippingProfileRow](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping profiles: %w", err)
	}

	profiles := make([]entity.ShippingProfile, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func (ms *MYSQLStore) GetProfileByID(ctx context.Context, id string) (*entity.ShippingProfile, error) {
	row, err := QueryNamedOne[shippingProfileRow](ctx, ms.DB(), `
	SELECT id, seq, name, description, priority, is_active, is_default,
		match_conditions, cost_rules, created_at, updated_at
	FROM shipping_profile WHERE id = :id`,
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("shipping profile %s: %w", id, derr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shipping profile: %w", err)
	}
	return row.toEntity()
}
