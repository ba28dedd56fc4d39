package store

import (
	"context"
	"fmt"

	"github.com/threadmind/engram/internal/model"
)

// ExportAll returns every engram, including soft-deleted ones, oldest
// first. Soft-deleted rows are part of the audit trail and metrics history,
// so exports keep them. An empty threadID exports the whole database.
func (s *SQLiteStore) ExportAll(ctx context.Context, threadID string) ([]model.Engram, error) {
	query := fmt.Sprintf(`SELECT %s FROM engrams`, engramColumns)
	var args []interface{}
	if threadID != "" {
		query += ` WHERE thread_id = ?`
		args = append(args, threadID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEngrams(rows)
}
