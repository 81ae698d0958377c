package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go-blog-app/internal/config"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// NewDB creates a new database connection pool for the configured driver.
func NewDB(cfg config.DBConfig) (*sqlx.DB, error) {
	dsn, err := connectDSN(cfg)
	if err != nil {
		return nil, err
	}
	// sqlx.Connect opens a connection and pings it to verify it's alive.
	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Driver == "sqlite3" {
		// Every connection to an in-memory database sees its own empty database.
		if strings.Contains(dsn, ":memory:") {
			db.SetMaxOpenConns(1)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// connectDSN makes sure MySQL connections scan DATETIME columns into time.Time.
func connectDSN(cfg config.DBConfig) (string, error) {
	switch cfg.Driver {
	case "mysql":
		mc, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case "sqlite3":
		return cfg.DSN, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// ApplyMigrations runs all up migrations embedded for the configured driver.
func ApplyMigrations(cfg config.DBConfig) error {
	source, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", cfg.Driver, err)
	}

	var databaseURL string
	switch cfg.Driver {
	case "mysql":
		mc, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return fmt.Errorf("invalid mysql dsn: %w", err)
		}
		// The schema file holds several statements.
		mc.MultiStatements = true
		databaseURL = "mysql://" + mc.FormatDSN()
	case "sqlite3":
		databaseURL = "sqlite3://" + cfg.DSN
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Schema returns the initial up migration for driver, for tests that build an
// in-memory database directly.
func Schema(driver string) (string, error) {
	b, err := fs.ReadFile(migrationsFS, "migrations/"+driver+"/000001_init.up.sql")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// wrapGet maps sql.ErrNoRows to ErrNotFound for single-row lookups.
func wrapGet(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
