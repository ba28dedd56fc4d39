package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string        `json:"db_path"`
	DBSizeBytes   int64         `json:"db_size_bytes"`
	TotalEngrams  int           `json:"total_engrams"`
	ActiveEngrams int           `json:"active_engrams"`
	Threads       []ThreadStats `json:"threads"`
}

// ThreadStats holds per-thread aggregates.
type ThreadStats struct {
	ThreadID     string  `json:"thread_id"`
	Count        int     `json:"count"`
	AvgRelevance float64 `json:"avg_relevance"`
	AvgSurprise  float64 `json:"avg_surprise"`
	TotalTokens  int     `json:"total_tokens"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM engrams`).Scan(&st.TotalEngrams)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM engrams WHERE deleted_at IS NULL`).Scan(&st.ActiveEngrams)

	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, COUNT(*) AS cnt,
		       AVG(base_relevance), AVG(surprise_score), SUM(token_count)
		FROM engrams WHERE deleted_at IS NULL
		GROUP BY thread_id ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts ThreadStats
		rows.Scan(&ts.ThreadID, &ts.Count, &ts.AvgRelevance, &ts.AvgSurprise, &ts.TotalTokens)
		st.Threads = append(st.Threads, ts)
	}

	return st, rows.Err()
}
