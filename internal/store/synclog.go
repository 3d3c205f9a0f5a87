package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/borncamp/adboard-manager/internal/dependency"
	"github.com/borncamp/adboard-manager/internal/entity"
	derr "github.com/borncamp/adboard-manager/internal/errors"
)

type syncLogStore struct {
	*MYSQLStore
}

// SyncLog returns an object implementing SyncLog interface
func (ms *MYSQLStore) SyncLog() dependency.SyncLog {
	return &syncLogStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) LogSync(ctx context.Context, source string, records int, status, errMsg string) error {
	err := ExecNamed(ctx, ms.DB(), `
	INSERT INTO sync_log (source, records, status, error_message)
	VALUES (:source, :records, :status, :errorMessage)`,
		map[string]any{
			"source":       source,
			"records":      records,
			"status":       status,
			"errorMessage": errMsg,
		})
	if err != nil {
		return fmt.Errorf("failed to log sync: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) LastSync(ctx context.Context) (*entity.SyncLog, error) {
	sl, err := QueryNamedOne[entity.SyncLog](ctx, ms.DB(), `
	SELECT id, synced_at, source, records, status, COALESCE(error_message, '') AS error_message
	FROM sync_log
	ORDER BY synced_at DESC, id DESC
	LIMIT 1`, map[string]any{})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, derr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get last sync: %w", err)
	}
	return &sl, nil
}
