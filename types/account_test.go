package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		in     string
		want   AccountType
		wantOk bool
	}{
		{"STOCK", AccountTypeStock, true},
		{"stock", AccountTypeStock, true},
		{"Future", AccountTypeFuture, true},
		{"benchmark", AccountTypeBenchmark, true},
		{"margin", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAccountType(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "UNKNOWN", AccountType(0).String())
}

func TestInstrument(t *testing.T) {
	stock := Instrument{OrderBookID: "000001.XSHE", Type: InstrumentTypeStock}
	assert.False(t, stock.IsDerivative())
	assert.False(t, stock.HasDeListedDate())

	future := Instrument{OrderBookID: "IF1601", Type: InstrumentTypeFuture, DeListedDate: time.Date(2016, 1, 15, 0, 0, 0, 0, time.UTC)}
	assert.True(t, future.IsDerivative())
	assert.True(t, future.HasDeListedDate())
}

func TestTradeValue(t *testing.T) {
	trade := NewTrade("000001.XSHE", SideTypeBuy, 300, decimal.RequireFromString("10.5"), decimal.Zero,
		decimal.NewFromInt(5), decimal.RequireFromString("3.15"), time.Time{})
	assert.True(t, trade.Value().Equal(decimal.RequireFromString("3150")))
	assert.True(t, trade.TransactionCost().Equal(decimal.RequireFromString("8.15")))

	order := NewOrder("000001.XSHE", SideTypeSell, 200, decimal.NewFromInt(11), time.Time{})
	assert.True(t, order.Value().Equal(decimal.NewFromInt(2200)))
	assert.True(t, order.Side.IsValid())
	assert.False(t, Side("HOLD").IsValid())
}

func TestTradeFrozenValue(t *testing.T) {
	tests := []struct {
		name        string
		frozenPrice decimal.Decimal
		want        decimal.Decimal
	}{
		{"frozen price", decimal.NewFromInt(11), decimal.NewFromInt(1100)},
		{"no frozen price falls back to fill value", decimal.Zero, decimal.NewFromInt(1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trade := NewTrade("000001.XSHE", SideTypeBuy, 100, decimal.NewFromInt(10), tt.frozenPrice, decimal.Zero, decimal.Zero, time.Time{})
			assert.True(t, trade.FrozenValue().Equal(tt.want))
		})
	}
}
