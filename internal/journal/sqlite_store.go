// Package journal records one row per check run in SQLite.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
)

// Store is the run journal. Credentials and user lists are never written.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	isMemory bool
}

// Open opens (creating if needed) the journal at dbPath. ":memory:" keeps it in process.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	var connStr string
	isMemory := dbPath == ":memory:"

	if isMemory {
		connStr = "file::memory:?_pragma=busy_timeout(5000)"
	} else {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
		connStr = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; also keeps an in-memory database alive on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, logger: logger, isMemory: isMemory}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("run journal initialized", "path", dbPath, "in_memory", isMemory)
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		outcome TEXT NOT NULL,
		login_state TEXT NOT NULL DEFAULT '',
		following_count INTEGER NOT NULL DEFAULT 0,
		followers_count INTEGER NOT NULL DEFAULT 0,
		not_following_back_count INTEGER NOT NULL DEFAULT 0,
		following_stop_reason TEXT NOT NULL DEFAULT '',
		followers_stop_reason TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts run. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, run models.RunRecord) error {
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO runs (id, target, outcome, login_state, following_count, followers_count,
		not_following_back_count, following_stop_reason, followers_stop_reason, duration_ms, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Target,
		run.Outcome,
		run.LoginState,
		run.FollowingCount,
		run.FollowersCount,
		run.NotFollowingBackCount,
		string(run.FollowingStopReason),
		string(run.FollowersStopReason),
		run.DurationMS,
		run.Error,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("run recorded", "id", run.ID, "outcome", run.Outcome)
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, target, outcome, login_state, following_count, followers_count,
		not_following_back_count, following_stop_reason, followers_stop_reason, duration_ms, error, created_at
	FROM runs
	ORDER BY created_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RunRecord{}
	for rows.Next() {
		var (
			run                          models.RunRecord
			followingStop, followersStop string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Target,
			&run.Outcome,
			&run.LoginState,
			&run.FollowingCount,
			&run.FollowersCount,
			&run.NotFollowingBackCount,
			&followingStop,
			&followersStop,
			&run.DurationMS,
			&run.Error,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.FollowingStopReason = models.StopReason(followingStop)
		run.FollowersStopReason = models.StopReason(followersStop)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CleanupOlderThan deletes runs created before threshold and vacuums when rows went.
func (s *Store) CleanupOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", threshold.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup runs: %w", err)
	}

	count, _ := result.RowsAffected()
	if count > 0 {
		s.logger.Info("cleaned up old runs", "count", count)
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			s.logger.Warn("failed to vacuum after cleanup", "error", err)
		}
	}
	return count, nil
}

// Close checkpoints the WAL (file databases only) and closes the connection.
func (s *Store) Close() error {
	if !s.isMemory {
		if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			s.logger.Warn("failed to checkpoint WAL before close", "error", err)
		}
	}
	return s.db.Close()
}
