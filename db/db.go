package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type IdentityDB struct {
	DB     *sql.DB
	Driver string
	Log    *zerolog.Logger

	txOpts *sql.TxOptions
}

// NewIdentityDB opens the database described by driver and source and
// checks that it is reachable.
func NewIdentityDB(driver, source string, log *zerolog.Logger) (*IdentityDB, error) {
	if source == "" {
		log.Error().Msg("database source is not set")
		return nil, fmt.Errorf("database source is not set")
	}

	var txOpts *sql.TxOptions
	switch driver {
	case DriverPostgres:
		// Uniqueness checks and the writes that follow them must not race
		txOpts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	case DriverSQLite:
		// SQLite transactions are already serializable
		txOpts = &sql.TxOptions{}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// Open the database connection
	db, err := sql.Open(driver, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	if driver == DriverSQLite {
		// An in-memory database lives and dies with its connection
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &IdentityDB{
		DB:     db,
		Driver: driver,
		Log:    log,
		txOpts: txOpts,
	}, nil
}

func (d *IdentityDB) Close() error {
	if err := d.DB.Close(); err != nil {
		return err
	}
	d.Log.Info().Msg("database connection closed")
	return nil
}

// WithTx runs fn inside a single transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (d *IdentityDB) WithTx(ctx context.Context, fn func(q Queries) error) error {
	if d.DB == nil {
		return fmt.Errorf("database connection is not established")
	}

	tx, err := d.DB.BeginTx(ctx, d.txOpts)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err := fn(&Tx{tx: tx, log: d.Log}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.Log.Error().Err(rbErr).Msg("error rolling back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// Tx implements Queries on top of an open transaction.
type Tx struct {
	tx  *sql.Tx
	log *zerolog.Logger
}

func (t *Tx) execQuery(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// nullString stores blank strings as NULL so optional unique columns do not
// collide.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
