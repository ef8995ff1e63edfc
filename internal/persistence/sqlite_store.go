package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MimeLyc/artwork-curator/internal/jobs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const candidateCacheDefaultTTL = 15 * time.Minute

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.ArtworkJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, item_path, nfo_path, force_refresh, status, error, created_at, updated_at
		 FROM jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.ArtworkJob, 0)
	for rows.Next() {
		var item jobs.ArtworkJob
		var status string
		var force int
		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.DedupeKey,
			&item.Payload.ItemPath,
			&item.Payload.NFOPath,
			&force,
			&status,
			&item.Error,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = jobs.Status(status)
		item.Payload.Force = force == 1
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.ArtworkJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
			id, source, dedupe_key, item_path, nfo_path, force_refresh, status, error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			item_path=excluded.item_path,
			nfo_path=excluded.nfo_path,
			force_refresh=excluded.force_refresh,
			status=excluded.status,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		job.ID,
		job.Source,
		job.DedupeKey,
		job.Payload.ItemPath,
		job.Payload.NFOPath,
		boolToInt(job.Payload.Force),
		string(job.Status),
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

func (s *SQLiteStore) PutCandidateCache(ctx context.Context, entry CandidateCacheEntry) error {
	payload, err := json.Marshal(entry.Images)
	if err != nil {
		return err
	}
	updatedAt := entry.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	expiresAt := entry.ExpiresAt.UTC()
	if expiresAt.IsZero() {
		expiresAt = updatedAt.Add(candidateCacheDefaultTTL)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO candidate_cache (item_path, payload_json, expires_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(item_path) DO UPDATE SET
			payload_json=excluded.payload_json,
			expires_at=excluded.expires_at,
			updated_at=excluded.updated_at`,
		entry.ItemPath,
		string(payload),
		expiresAt,
		updatedAt,
	)
	return err
}

func (s *SQLiteStore) GetCandidateCache(ctx context.Context, itemPath string, now time.Time) (CandidateCacheEntry, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT item_path, payload_json, expires_at, updated_at
		 FROM candidate_cache
		 WHERE item_path = ? AND expires_at > ?`,
		itemPath,
		now.UTC(),
	)

	var ret CandidateCacheEntry
	var payloadJSON string
	if err := row.Scan(&ret.ItemPath, &payloadJSON, &ret.ExpiresAt, &ret.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return CandidateCacheEntry{}, false, nil
		}
		return CandidateCacheEntry{}, false, err
	}
	if err := json.Unmarshal([]byte(payloadJSON), &ret.Images); err != nil {
		return CandidateCacheEntry{}, false, err
	}
	return ret, true, nil
}

// DeleteExpiredCandidateCache removes candidate_cache rows whose expires_at is before now.
func (s *SQLiteStore) DeleteExpiredCandidateCache(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidate_cache WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RecordSelection appends one winning image to the selection history and
// returns the generated record id. Only the newest record per
// (item_path, image_type) pair is kept.
func (s *SQLiteStore) RecordSelection(ctx context.Context, record SelectionRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	selectedAt := record.SelectedAt.UTC()
	if selectedAt.IsZero() {
		selectedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(
		ctx,
		`DELETE FROM selections WHERE item_path = ? AND image_type = ?`,
		record.ItemPath,
		record.ImageType,
	); err != nil {
		return "", err
	}
	if _, err = tx.ExecContext(
		ctx,
		`INSERT INTO selections (
			id, item_path, image_type, language, url, provider, vote_count, width, height, file_path, selected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ItemPath,
		record.ImageType,
		record.Language,
		record.URL,
		record.Provider,
		record.VoteCount,
		record.Width,
		record.Height,
		record.FilePath,
		selectedAt,
	); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *SQLiteStore) ListSelections(ctx context.Context, itemPath string) ([]SelectionRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, item_path, image_type, language, url, provider, vote_count, width, height, file_path, selected_at
		 FROM selections
		 WHERE item_path = ?
		 ORDER BY image_type ASC`,
		itemPath,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]SelectionRecord, 0)
	for rows.Next() {
		var item SelectionRecord
		if err := rows.Scan(
			&item.ID,
			&item.ItemPath,
			&item.ImageType,
			&item.Language,
			&item.URL,
			&item.Provider,
			&item.VoteCount,
			&item.Width,
			&item.Height,
			&item.FilePath,
			&item.SelectedAt,
		); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

var _ jobs.Store = (*SQLiteStore)(nil)
