package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// dbtx is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

const instrumentColumns = `order_book_id, symbol, type, round_lot,
	COALESCE(contract_multiplier, 1) AS contract_multiplier, listed_date, de_listed_date`

type instrumentRow struct {
	OrderBookID        string          `db:"order_book_id"`
	Symbol             string          `db:"symbol"`
	Type               string          `db:"type"`
	RoundLot           int64           `db:"round_lot"`
	ContractMultiplier decimal.Decimal `db:"contract_multiplier"`
	ListedDate         *time.Time      `db:"listed_date"`
	DeListedDate       *time.Time      `db:"de_listed_date"`
}

const getInstrument = `SELECT ` + instrumentColumns + `
FROM instruments
WHERE order_book_id = $1`

func (q *queries) GetInstrument(ctx context.Context, orderBookID string) (instrumentRow, error) {
	rows, err := q.db.Query(ctx, getInstrument, orderBookID)
	if err != nil {
		return instrumentRow{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[instrumentRow])
}

const listInstruments = `SELECT ` + instrumentColumns + `
FROM instruments
ORDER BY order_book_id`

func (q *queries) ListInstruments(ctx context.Context) ([]instrumentRow, error) {
	rows, err := q.db.Query(ctx, listInstruments)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[instrumentRow])
}

type getBarsParams struct {
	OrderBookID string
	Starttime   time.Time
	Endtime     time.Time
}

// barRow mirrors a row of the bars table. Price columns are nullable; a null
// price reads as NaN.
type barRow struct {
	OrderBookID    string    `db:"order_book_id"`
	Datetime       time.Time `db:"datetime"`
	Open           *float64  `db:"open"`
	High           *float64  `db:"high"`
	Low            *float64  `db:"low"`
	Last           *float64  `db:"last"`
	PrevClose      *float64  `db:"prev_close"`
	PrevSettlement *float64  `db:"prev_settlement"`
	Volume         int64     `db:"volume"`
	TotalTurnover  int64     `db:"total_turnover"`
	OpenInterest   int64     `db:"open_interest"`
}

const getBars = `SELECT order_book_id, datetime, open, high, low, last, prev_close, prev_settlement,
	COALESCE(volume, 0) AS volume,
	COALESCE(total_turnover, 0) AS total_turnover,
	COALESCE(open_interest, 0) AS open_interest
FROM bars
WHERE order_book_id = $1 AND datetime >= $2 AND datetime <= $3
ORDER BY datetime`

func (q *queries) GetBars(ctx context.Context, arg getBarsParams) ([]barRow, error) {
	rows, err := q.db.Query(ctx, getBars, arg.OrderBookID, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[barRow])
}
