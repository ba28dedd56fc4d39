package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/threadmind/engram/internal/model"
)

// timeFormat is RFC 3339 with fixed nanosecond width. Variable-width
// fractions do not sort lexicographically, and both the created_at ordering
// and the lock expiry comparison happen on the stored text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS engrams (
		id               TEXT PRIMARY KEY,
		thread_id        TEXT NOT NULL,
		content          TEXT NOT NULL,
		first_message_id TEXT NOT NULL,
		last_message_id  TEXT NOT NULL,
		message_count    INTEGER NOT NULL,
		token_count      INTEGER NOT NULL,
		base_relevance   REAL NOT NULL DEFAULT 1.0,
		surprise_score   REAL NOT NULL DEFAULT 0,
		access_count     INTEGER NOT NULL DEFAULT 0,
		topics           TEXT,
		message_types    TEXT,
		trigger_type     TEXT NOT NULL,
		has_code         INTEGER NOT NULL DEFAULT 0,
		has_error        INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		last_accessed_at TEXT NOT NULL,
		deleted_at       TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_engrams_thread ON engrams(thread_id, deleted_at);
	CREATE INDEX IF NOT EXISTS idx_engrams_created ON engrams(created_at DESC);

	CREATE TABLE IF NOT EXISTS consolidation_locks (
		thread_id   TEXT PRIMARY KEY,
		owner       TEXT NOT NULL,
		acquired_at TEXT NOT NULL,
		expires_at  TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Insert persists a new engram, assigning its id and timestamps when unset.
// Timestamps already set by the caller are preserved so that tests and
// imports can backdate records.
func (s *SQLiteStore) Insert(ctx context.Context, e *model.Engram) error {
	if e.ID == "" {
		e.ID = s.newID()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.LastAccessedAt.IsZero() {
		e.LastAccessedAt = e.CreatedAt
	}

	var topicsJSON *string
	if len(e.Topics) > 0 {
		b, _ := json.Marshal(e.Topics)
		v := string(b)
		topicsJSON = &v
	}
	var typesJSON *string
	if len(e.MessageTypes) > 0 {
		b, _ := json.Marshal(e.MessageTypes)
		v := string(b)
		typesJSON = &v
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO engrams (id, thread_id, content, first_message_id, last_message_id,
		                      message_count, token_count, base_relevance, surprise_score,
		                      access_count, topics, message_types, trigger_type, has_code,
		                      has_error, created_at, last_accessed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ThreadID, e.Content, e.SourceRange.FirstMessageID, e.SourceRange.LastMessageID,
		e.SourceRange.Count, e.TokenCount, e.BaseRelevance, e.SurpriseScore,
		e.AccessCount, topicsJSON, typesJSON, string(e.Trigger), boolInt(e.HasCode),
		boolInt(e.HasError), e.CreatedAt.UTC().Format(timeFormat), e.LastAccessedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert engram: %w", err)
	}
	return nil
}

const engramColumns = `id, thread_id, content, first_message_id, last_message_id,
	message_count, token_count, base_relevance, surprise_score, access_count,
	topics, message_types, trigger_type, has_code, has_error, created_at,
	last_accessed_at, deleted_at`

// ListActive returns all non-deleted engrams for a thread, newest first.
func (s *SQLiteStore) ListActive(ctx context.Context, threadID string) ([]model.Engram, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM engrams
		 WHERE thread_id = ? AND deleted_at IS NULL
		 ORDER BY created_at DESC, id DESC`, engramColumns), threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEngrams(rows)
}

// ListOlderThan returns all non-deleted engrams created before cutoff.
func (s *SQLiteStore) ListOlderThan(ctx context.Context, cutoff time.Time) ([]model.Engram, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM engrams
		 WHERE deleted_at IS NULL AND created_at < ?
		 ORDER BY created_at ASC, id ASC`, engramColumns),
		cutoff.UTC().Format(timeFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEngrams(rows)
}

// RecordAccess increments the access counter and stores the reinforced base
// relevance. The increment happens in SQL so concurrent retrievals never
// lose counts.
func (s *SQLiteStore) RecordAccess(ctx context.Context, id string, baseRelevance float64, accessedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE engrams
		 SET access_count = access_count + 1, base_relevance = ?, last_accessed_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		baseRelevance, accessedAt.UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("engram not found: %s", id)
	}
	return nil
}

// SoftDelete marks the given engrams deleted. Already-deleted rows are left
// untouched, which keeps the sweeper idempotent.
func (s *SQLiteStore) SoftDelete(ctx context.Context, ids []string, deletedAt time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, deletedAt.UTC().Format(timeFormat))
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE engrams SET deleted_at = ?
		 WHERE id IN (%s) AND deleted_at IS NULL`, placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("soft delete: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEngrams(rows *sql.Rows) ([]model.Engram, error) {
	var engrams []model.Engram
	for rows.Next() {
		e, err := scanEngram(rows)
		if err != nil {
			return nil, err
		}
		engrams = append(engrams, e)
	}
	return engrams, rows.Err()
}

func scanEngram(row scanner) (model.Engram, error) {
	var e model.Engram
	var topicsJSON, typesJSON, deletedAt sql.NullString
	var trigger, createdAt, lastAccessed string
	var hasCode, hasError int

	err := row.Scan(
		&e.ID, &e.ThreadID, &e.Content,
		&e.SourceRange.FirstMessageID, &e.SourceRange.LastMessageID, &e.SourceRange.Count,
		&e.TokenCount, &e.BaseRelevance, &e.SurpriseScore, &e.AccessCount,
		&topicsJSON, &typesJSON, &trigger, &hasCode, &hasError,
		&createdAt, &lastAccessed, &deletedAt,
	)
	if err != nil {
		return e, err
	}

	e.Trigger = model.Trigger(trigger)
	e.HasCode = hasCode != 0
	e.HasError = hasError != 0
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.LastAccessedAt, _ = time.Parse(time.RFC3339Nano, lastAccessed)
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		e.DeletedAt = &t
	}
	if topicsJSON.Valid {
		json.Unmarshal([]byte(topicsJSON.String), &e.Topics)
	}
	if typesJSON.Valid {
		json.Unmarshal([]byte(typesJSON.String), &e.MessageTypes)
	}

	return e, nil
}
