// Package repository loads instrument metadata and market data from
// PostgreSQL or from a YAML catalog file.
package repository

import (
	"context"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var (
	ErrInstrumentNotFound = errors.New("instrument not found in datasource")
	ErrNoSnapshots        = errors.New("no snapshots found in datasource")
)

type instrumentsRepository interface {
	GetInstrument(ctx context.Context, orderBookID string) (instrumentRow, error)
	ListInstruments(ctx context.Context) ([]instrumentRow, error)
}

type barsRepository interface {
	GetBars(ctx context.Context, arg getBarsParams) ([]barRow, error)
}

// Database holds the connection pool and the queries run against it.
type Database struct {
	instruments instrumentsRepository
	bars        barsRepository
	conn        *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	// numeric columns scan into decimal.Decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping")
	}

	q := newQueries(conn)
	return &Database{
		instruments: q,
		bars:        q,
		conn:        conn,
	}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
