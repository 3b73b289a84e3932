// Package db owns the lifetime of the document store connection: opening it,
// applying the embedded schema migrations, and tracking its availability.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Handle is the process-wide handle to the document store. A handle without
// a database is the "unavailable" sentinel: every gateway operation on it
// fails before reaching the store.
type Handle struct {
	// DB is the connection pool, nil for the unavailable sentinel.
	DB *sql.DB
	// Driver names the SQL driver behind DB.
	Driver string

	available atomic.Bool
}

// NewHandle wraps an open database. The handle starts out available.
func NewHandle(db *sql.DB, driver string) *Handle {
	h := &Handle{DB: db, Driver: driver}
	h.available.Store(db != nil)
	return h
}

// Unavailable returns the sentinel handle used when the store could not be opened.
func Unavailable(driver string) *Handle {
	return &Handle{Driver: driver}
}

// Available reports whether the store is initialized and answered its last probe.
func (h *Handle) Available() bool {
	return h != nil && h.DB != nil && h.available.Load()
}

// setAvailable records the probe result and returns the previous state.
func (h *Handle) setAvailable(ok bool) bool {
	return h.available.Swap(ok)
}

// Close releases the connection pool.
func (h *Handle) Close() error {
	if h == nil || h.DB == nil {
		return nil
	}
	h.available.Store(false)
	return h.DB.Close()
}

// Open connects to the store, verifies the connection and applies migrations.
func Open(ctx context.Context, driver, dsn string) (*Handle, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps in-memory databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := migrateUp(db, driver, dsn); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}

	return NewHandle(db, driver), nil
}

// migrateUp applies the embedded migrations of driver.
func migrateUp(db *sql.DB, driver, dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	switch driver {
	case DriverPostgres:
		// The postgres driver pins a connection and closes its instance on
		// Close, so it gets a pool of its own.
		mdb, err := sql.Open(driver, dsn)
		if err != nil {
			return fmt.Errorf("open migration connection: %w", err)
		}
		target, err := migratepg.WithInstance(mdb, &migratepg.Config{})
		if err != nil {
			_ = mdb.Close()
			return fmt.Errorf("migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, driver, target)
		if err != nil {
			_ = mdb.Close()
			return fmt.Errorf("init migrations: %w", err)
		}
		defer m.Close()
		return up(m)

	default:
		target, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, driver, target)
		if err != nil {
			return fmt.Errorf("init migrations: %w", err)
		}
		// m.Close would close the shared pool; only the source is released.
		defer src.Close()
		return up(m)
	}
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
