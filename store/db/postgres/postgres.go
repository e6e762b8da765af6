// Package postgres implements the blob store driver on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/store"
)

type DB struct {
	db *sql.DB
}

// NewDB opens a PostgreSQL connection with the given DSN and ensures the
// blob table exists.
func NewDB(dsn string) (store.Driver, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", dsn)
	}

	pgDB.SetMaxOpenConns(10)
	pgDB.SetMaxIdleConns(5)
	pgDB.SetConnMaxLifetime(30 * time.Minute)

	driver := &DB{db: pgDB}
	if err := driver.migrate(context.Background()); err != nil {
		_ = pgDB.Close()
		return nil, err
	}
	return driver, nil
}

func (d *DB) migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS blob (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_ts BIGINT NOT NULL
		)
	`)
	return errors.Wrap(err, "failed to create blob table")
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.db.QueryRowContext(ctx, "SELECT value FROM blob WHERE key = $1", key).Scan(&value)
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
		INSERT INTO blob (key, value, updated_ts) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_ts = EXCLUDED.updated_ts
	`, key, data, time.Now().Unix())
	return errors.Wrapf(err, "failed to put blob %s", key)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}
