// Package sqlite implements the blob store driver on SQLite. It is the
// zero-dependency development backend; production deployments use the
// postgres or s3 drivers.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/genesiss-tech/genesiss/store"
)

type DB struct {
	db *sql.DB
}

// NewDB opens the SQLite database at the given DSN and ensures the blob
// table exists.
//
// Note: with the `modernc.org/sqlite` driver each pragma must be
// prefixed with `_pragma=`. WAL journal mode avoids locking issues for
// the single-writer access pattern this store assumes.
func NewDB(dsn string) (store.Driver, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}

	sqliteDB, err := sql.Open("sqlite", dsn+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", dsn)
	}

	// A single connection is optimal for SQLite with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)

	driver := &DB{db: sqliteDB}
	if err := driver.migrate(context.Background()); err != nil {
		_ = sqliteDB.Close()
		return nil, err
	}
	return driver, nil
}

func (d *DB) migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS blob (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_ts BIGINT NOT NULL
		)
	`)
	return errors.Wrap(err, "failed to create blob table")
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.db.QueryRowContext(ctx, "SELECT value FROM blob WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get blob %s", key)
	}
	return value, nil
}

func (d *DB) Put(ctx context.Context, key string, data []byte) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO blob (key, value, updated_ts) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_ts = excluded.updated_ts
	`, key, data, time.Now().Unix())
	return errors.Wrapf(err, "failed to put blob %s", key)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}
