package position

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/types"
)

func tradedPosition(t *testing.T) *Position {
	t.Helper()
	delisted := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(testID, catalog{testID: {OrderBookID: testID, DeListedDate: delisted}})

	require.NoError(t, p.OnOrderPending(types.NewOrder(testID, types.SideTypeBuy, 300, decimal.NewFromInt(10), testDay)))
	tr := buy(200, "9.8")
	tr.Commission = decimal.RequireFromString("5")
	require.NoError(t, p.OnTrade(tr))
	p.ResetTodayHolding()
	require.NoError(t, p.OnTrade(buy(50, "10.4")))
	require.NoError(t, p.OnOrderPending(types.NewOrder(testID, types.SideTypeSell, 80, decimal.NewFromInt(11), testDay)))
	require.NoError(t, p.OnTrade(sell(20, "11")))
	p.UpdateLastPrice(decimal.RequireFromString("10.9"))
	return p
}

func TestRecord_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pos  *Position
	}{
		{"empty", New(testID, nil)},
		{"traded", tradedPosition(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.pos.ToRecord()
			assert.Equal(t, rec, FromRecord(rec).ToRecord())

			m := rec.ToMap()
			assert.Len(t, m, len(RecordKeys))
			for _, k := range RecordKeys {
				assert.Contains(t, m, k)
			}

			back, err := RecordFromMap(m)
			require.NoError(t, err)
			assert.Equal(t, rec, back)
			assert.Equal(t, rec, FromRecord(back).ToRecord())
		})
	}
}

func TestRecord_RestoredReadsMatch(t *testing.T) {
	p := tradedPosition(t)
	restored := FromRecord(p.ToRecord())

	assert.Equal(t, p.Quantity(), restored.Quantity())
	assert.Equal(t, p.Sellable(), restored.Sellable())
	assert.True(t, p.AvgPrice().Equal(restored.AvgPrice()))
	assert.True(t, p.MarketValue().Equal(restored.MarketValue()))
	assert.Equal(t, p.TotalOrders(), restored.TotalOrders())
}

func TestRecordFromMap_MissingAccumulator(t *testing.T) {
	for _, key := range RecordKeys {
		t.Run(key, func(t *testing.T) {
			m := tradedPosition(t).ToRecord().ToMap()
			delete(m, key)

			_, err := RecordFromMap(m)
			assert.ErrorIs(t, err, ErrMissingAccumulator)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestRecordFromMap_Coercions(t *testing.T) {
	m := New(testID, nil).ToRecord().ToMap()
	m[KeyAvgPrice] = "11.5"
	m[KeyTotalTrades] = 3
	m[KeyLastPrice] = 10.25

	r, err := RecordFromMap(m)
	require.NoError(t, err)
	assert.True(t, r.AvgPrice.Equal(decimal.RequireFromString("11.5")))
	assert.Equal(t, int64(3), r.TotalTrades)
	assert.True(t, r.LastPrice.Equal(decimal.RequireFromString("10.25")))
	assert.True(t, r.DeListedDate.IsZero())

	m[KeyIsTraded] = "yes"
	_, err = RecordFromMap(m)
	assert.ErrorIs(t, err, ErrInvalidAccumulator)

	m[KeyIsTraded] = true
	m[KeyAvgPrice] = "abc"
	_, err = RecordFromMap(m)
	assert.ErrorIs(t, err, ErrInvalidAccumulator)
}
