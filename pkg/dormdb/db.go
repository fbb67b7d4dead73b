// Package dormdb manages the MySQL connection and schema for dormstats.
package dormdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/mkorolev/dormstats/internal/config"
	"github.com/mkorolev/dormstats/pkg/logging"
)

// formatDSN builds a driver DSN from the config. When withDatabase is false
// the connection selects no database, which is what the bootstrap step needs.
func formatDSN(cfg config.MySQL, withDatabase bool) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Timeout = cfg.ConnectTimeout
	mc.ParseTime = true
	if withDatabase {
		mc.DBName = cfg.Database
	}
	return mc.FormatDSN()
}

// EnsureDatabaseExists creates the configured database if it is absent.
// Database names compare case-insensitively on the server, and the statement
// is atomic server-side, so concurrent bootstrap attempts cannot fail each
// other; a racing duplicate-create is treated as success.
func EnsureDatabaseExists(ctx context.Context, cfg config.MySQL) error {
	admin, err := sql.Open("mysql", formatDSN(cfg, false))
	if err != nil {
		return fmt.Errorf("%w: open admin connection: %w", ErrConnectivity, err)
	}
	defer admin.Close()

	if err := admin.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping %s:%d: %w", ErrConnectivity, cfg.Host, cfg.Port, err)
	}

	stmt := fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci",
		cfg.Database,
	)
	if _, err := admin.ExecContext(ctx, stmt); err != nil {
		if isDatabaseExists(err) {
			return nil
		}
		return fmt.Errorf("create database %q: %w", cfg.Database, err)
	}
	return nil
}

// Connect ensures the database exists and returns a handle bound to it.
// The pool is pinned to a single connection: the whole run (schema work,
// ingestion, reports) shares one session, which makes session-scoped
// statements like the FOREIGN_KEY_CHECKS toggle in ResetData well-defined.
// The caller owns the handle and must Close it on every exit path.
func Connect(ctx context.Context, cfg config.MySQL) (*sql.DB, error) {
	log := logging.WithPhase("connect")

	if err := EnsureDatabaseExists(ctx, cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", formatDSN(cfg, true))
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrConnectivity, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database %q: %w", ErrConnectivity, cfg.Database, err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to mysql")

	return db, nil
}
