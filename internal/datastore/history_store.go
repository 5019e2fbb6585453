package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/webwatch/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// CheckEntry is one row of the check journal.
type CheckEntry struct {
	ID           int64
	SiteID       string
	Kind         models.EventKind
	Status       int
	Size         int
	Hash         string
	Changed      bool
	Excerpt      string
	Error        string
	LinesAdded   int
	LinesDeleted int
	CheckedAt    time.Time
}

// HistoryStore journals check cycles and keeps the last extracted fragment
// of each site in SQLite.
type HistoryStore struct {
	db              *sql.DB
	logger          zerolog.Logger
	maxContentBytes int
}

// NewHistoryStore opens (creating if needed) the database at path.
// maxContentBytes caps stored fragments; zero keeps them whole.
func NewHistoryStore(path string, maxContentBytes int, logger zerolog.Logger) (*HistoryStore, error) {
	logger = logger.With().Str("component", "HistoryStore").Logger()
	logger.Info().Str("db_path", path).Msg("Initializing history database")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	store := &HistoryStore{
		db:              db,
		logger:          logger,
		maxContentBytes: maxContentBytes,
	}
	if err := store.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (h *HistoryStore) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// InitSchema creates the tables if they don't already exist.
func (h *HistoryStore) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS check_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		status INTEGER NOT NULL,
		size INTEGER NOT NULL,
		hash TEXT NOT NULL DEFAULT '',
		changed INTEGER NOT NULL DEFAULT 0,
		excerpt TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		lines_added INTEGER NOT NULL DEFAULT 0,
		lines_deleted INTEGER NOT NULL DEFAULT 0,
		checked_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_check_history_site ON check_history (site_id, checked_at);
	CREATE TABLE IF NOT EXISTS site_content (
		site_id TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		content TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := h.db.Exec(query); err != nil {
		h.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// Record appends one journal row.
func (h *HistoryStore) Record(ctx context.Context, entry CheckEntry) (int64, error) {
	query := `INSERT INTO check_history
		(site_id, kind, status, size, hash, changed, excerpt, error, lines_added, lines_deleted, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.db.ExecContext(ctx, query,
		entry.SiteID, string(entry.Kind), entry.Status, entry.Size, entry.Hash, entry.Changed,
		entry.Excerpt, entry.Error, entry.LinesAdded, entry.LinesDeleted, entry.CheckedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert check record for %s: %w", entry.SiteID, err)
	}
	return result.LastInsertId()
}

// Entries returns journal rows oldest first. An empty siteID selects every
// site; limit <= 0 means no limit.
func (h *HistoryStore) Entries(ctx context.Context, siteID string, limit int) ([]CheckEntry, error) {
	query := `SELECT id, site_id, kind, status, size, hash, changed, excerpt, error, lines_added, lines_deleted, checked_at
		FROM check_history WHERE (? = '' OR site_id = ?) ORDER BY checked_at, id`
	args := []any{siteID, siteID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check history: %w", err)
	}
	defer rows.Close()

	var entries []CheckEntry
	for rows.Next() {
		var (
			e         CheckEntry
			kind      string
			checkedAt int64
		)
		if err := rows.Scan(&e.ID, &e.SiteID, &kind, &e.Status, &e.Size, &e.Hash, &e.Changed,
			&e.Excerpt, &e.Error, &e.LinesAdded, &e.LinesDeleted, &checkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check history row: %w", err)
		}
		e.Kind = models.EventKind(kind)
		e.CheckedAt = time.UnixMilli(checkedAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastContent returns the last stored fragment for a site.
func (h *HistoryStore) LastContent(ctx context.Context, siteID string) (string, bool, error) {
	var content string
	err := h.db.QueryRowContext(ctx, `SELECT content FROM site_content WHERE site_id = ?`, siteID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query content for %s: %w", siteID, err)
	}
	return content, true, nil
}

// SaveContent stores the current fragment of a site, replacing the previous one.
func (h *HistoryStore) SaveContent(ctx context.Context, siteID, hash, content string, at time.Time) error {
	if h.maxContentBytes > 0 && len(content) > h.maxContentBytes {
		content = content[:h.maxContentBytes]
	}
	query := `INSERT INTO site_content (site_id, hash, content, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(site_id) DO UPDATE SET hash = excluded.hash, content = excluded.content, updated_at = excluded.updated_at`
	if _, err := h.db.ExecContext(ctx, query, siteID, hash, content, at.UnixMilli()); err != nil {
		return fmt.Errorf("failed to store content for %s: %w", siteID, err)
	}
	return nil
}

// ForgetSite drops the stored fragment of a deleted site. Journal rows are kept.
func (h *HistoryStore) ForgetSite(ctx context.Context, siteID string) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM site_content WHERE site_id = ?`, siteID); err != nil {
		return fmt.Errorf("failed to delete content for %s: %w", siteID, err)
	}
	return nil
}

// Prune deletes journal rows older than cutoff and reports how many were removed.
func (h *HistoryStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := h.db.ExecContext(ctx, `DELETE FROM check_history WHERE checked_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune check history: %w", err)
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		h.logger.Info().Int64("rows", n).Time("cutoff", cutoff).Msg("Pruned check history")
	}
	return n, nil
}
