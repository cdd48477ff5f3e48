package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/types"
)

type mockInstrumentsRepository struct {
	sqlError error
	rows     []instrumentRow
}

func (m mockInstrumentsRepository) GetInstrument(_ context.Context, orderBookID string) (instrumentRow, error) {
	if m.sqlError != nil {
		return instrumentRow{}, m.sqlError
	}
	for _, row := range m.rows {
		if row.OrderBookID == orderBookID {
			return row, nil
		}
	}
	return instrumentRow{}, pgx.ErrNoRows
}

func (m mockInstrumentsRepository) ListInstruments(_ context.Context) ([]instrumentRow, error) {
	return m.rows, m.sqlError
}

var delisted = time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)

func mockInstrumentRows() []instrumentRow {
	listed := time.Date(1991, 4, 3, 0, 0, 0, 0, time.UTC)
	return []instrumentRow{
		{OrderBookID: "000001.XSHE", Symbol: "PAB", Type: "CS", RoundLot: 100, ContractMultiplier: decimal.NewFromInt(1), ListedDate: &listed},
		{OrderBookID: "600001.XSHG", Symbol: "HDGT", Type: "CS", RoundLot: 100, ContractMultiplier: decimal.NewFromInt(1), ListedDate: &listed, DeListedDate: &delisted},
	}
}

func TestDatabase_GetInstrument(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name         string
		orderBookID  string
		sqlErr       error
		wantErr      error
		wantDelisted bool
	}{
		{"should throw ErrInstrumentNotFound", "AAPL", nil, ErrInstrumentNotFound, false},
		{"should pass through driver errors", "000001.XSHE", boom, boom, false},
		{"should return listed instrument", "000001.XSHE", nil, nil, false},
		{"should return delisted instrument", "600001.XSHG", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &Database{instruments: mockInstrumentsRepository{sqlError: tt.sqlErr, rows: mockInstrumentRows()}}
			got, err := db.GetInstrument(context.Background(), tt.orderBookID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.orderBookID, got.OrderBookID)
			assert.Equal(t, types.InstrumentTypeStock, got.Type)
			assert.Equal(t, tt.wantDelisted, got.HasDeListedDate())
		})
	}
}

func TestDatabase_LoadCatalog(t *testing.T) {
	db := &Database{instruments: mockInstrumentsRepository{rows: mockInstrumentRows()}}
	catalog, err := db.LoadCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	inst, ok := catalog.Instrument("600001.XSHG")
	require.True(t, ok)
	assert.Equal(t, delisted, inst.DeListedDate)

	_, ok = catalog.Instrument("AAPL")
	assert.False(t, ok)

	failing := &Database{instruments: mockInstrumentsRepository{sqlError: errors.New("timeout")}}
	_, err = failing.LoadCatalog(context.Background())
	assert.Error(t, err)
}
