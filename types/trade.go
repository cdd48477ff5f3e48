package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a single fill reported by the matching side of the engine.
type Trade struct {
	OrderBookID string
	Side        Side
	Quantity    int64
	Price       decimal.Decimal
	// FrozenPrice is the price cash was frozen at when the order was placed.
	FrozenPrice decimal.Decimal
	Commission  decimal.Decimal
	Tax         decimal.Decimal
	Datetime    time.Time
}

func NewTrade(orderBookID string, side Side, quantity int64, price, frozenPrice, commission, tax decimal.Decimal, datetime time.Time) Trade {
	return Trade{
		OrderBookID: orderBookID,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		FrozenPrice: frozenPrice,
		Commission:  commission,
		Tax:         tax,
		Datetime:    datetime,
	}
}

func (t Trade) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

func (t Trade) TransactionCost() decimal.Decimal {
	return t.Commission.Add(t.Tax)
}

// FrozenValue is the order notional released by the fill: the frozen price
// times quantity, or the fill value when no frozen price was recorded.
func (t Trade) FrozenValue() decimal.Decimal {
	if t.FrozenPrice.IsZero() {
		return t.Value()
	}
	return t.FrozenPrice.Mul(decimal.NewFromInt(t.Quantity))
}
