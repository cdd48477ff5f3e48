package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an order accepted by the matching side of the engine.
type Order struct {
	OrderBookID string
	Side        Side
	Quantity    int64
	Price       decimal.Decimal
	CreatedAt   time.Time
}

func NewOrder(orderBookID string, side Side, quantity int64, price decimal.Decimal, createdAt time.Time) Order {
	return Order{
		OrderBookID: orderBookID,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		CreatedAt:   createdAt,
	}
}

// Value is the notional of the order at its limit price.
func (o Order) Value() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}
