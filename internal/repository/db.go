package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver
)

// Config mirrors common.DatabaseConfig without importing it, so the package
// stays usable from tests with literal values.
type Config struct {
	Driver          string // "sqlite" (default) or "postgres"
	Path            string // sqlite data directory
	DSN             string // postgres DSN
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// Open connects to the artifact database and runs pending migrations.
// SQLite is opened in WAL mode with a busy timeout so concurrent invocations
// for different jobs do not trip over each other.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		dataDir := cfg.Path
		if dataDir == "" {
			dataDir = "./data"
		}
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dbPath := filepath.Join(dataDir, "pipeline.db")
		db, err = sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		logger.Info("artifact store opened", "driver", "sqlite", "path", dbPath)
	case "postgres":
		db, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres database: %w", err)
		}
		if cfg.MaxConns > 0 {
			db.SetMaxOpenConns(int(cfg.MaxConns))
		}
		if cfg.MaxConnLifetime > 0 {
			db.SetConnMaxLifetime(cfg.MaxConnLifetime)
		}
		logger.Info("artifact store opened", "driver", "postgres")
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// HealthCheck pings the database, failing fast on DSN issues.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_records (
		job_id       TEXT NOT NULL,
		filename     TEXT NOT NULL,
		fields       TEXT NOT NULL,
		extracted_at TIMESTAMP NOT NULL,
		PRIMARY KEY (job_id, filename)
	)`,
	`CREATE TABLE IF NOT EXISTS artifacts (
		job_id     TEXT NOT NULL,
		stage      TEXT NOT NULL,
		payload    TEXT NOT NULL,
		written_at TIMESTAMP NOT NULL,
		PRIMARY KEY (job_id, stage)
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}
