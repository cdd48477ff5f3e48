// Package position keeps the per-instrument trading ledger of a stock account.
package position

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"ledger/types"
)

var (
	ErrShortSellNotAllowed = errors.New("short sell not allowed, sell fill exceeds held quantity")
	ErrOrderBookMismatch   = errors.New("event belongs to another instrument")
	ErrUnknownSide         = errors.New("unknown side")
)

// InstrumentLookup resolves instrument metadata by order book id.
type InstrumentLookup interface {
	Instrument(orderBookID string) (types.Instrument, bool)
}

// Position is the mutable ledger of one instrument. Quantities are in shares.
//
// Shares bought on the current trading day are held in buyTodayHoldingQuantity
// and are not sellable until ResetTodayHolding runs on the next day.
type Position struct {
	orderBookID string
	lastPrice   decimal.Decimal
	marketValue decimal.Decimal

	buyTradeValue     decimal.Decimal
	sellTradeValue    decimal.Decimal
	buyOrderValue     decimal.Decimal
	sellOrderValue    decimal.Decimal
	buyOrderQuantity  int64
	sellOrderQuantity int64
	buyTradeQuantity  int64
	sellTradeQuantity int64

	totalOrders int64
	totalTrades int64
	isTraded    bool

	buyTodayHoldingQuantity int64
	avgPrice                decimal.Decimal
	deListedDate            time.Time
	transactionCost         decimal.Decimal
}

// New creates an empty position. The delisting date is resolved once here;
// a nil lookup or an unknown instrument leaves it unset.
func New(orderBookID string, instruments InstrumentLookup) *Position {
	p := &Position{orderBookID: orderBookID}
	if instruments != nil {
		if inst, ok := instruments.Instrument(orderBookID); ok {
			p.deListedDate = inst.DeListedDate
		}
	}
	return p
}

func (p *Position) OrderBookID() string              { return p.orderBookID }
func (p *Position) LastPrice() decimal.Decimal       { return p.lastPrice }
func (p *Position) MarketValue() decimal.Decimal     { return p.marketValue }
func (p *Position) BoughtQuantity() int64            { return p.buyTradeQuantity }
func (p *Position) SoldQuantity() int64              { return p.sellTradeQuantity }
func (p *Position) BoughtValue() decimal.Decimal     { return p.buyTradeValue }
func (p *Position) SoldValue() decimal.Decimal       { return p.sellTradeValue }
func (p *Position) BuyOrderQuantity() int64          { return p.buyOrderQuantity }
func (p *Position) SellOrderQuantity() int64         { return p.sellOrderQuantity }
func (p *Position) BuyOrderValue() decimal.Decimal   { return p.buyOrderValue }
func (p *Position) SellOrderValue() decimal.Decimal  { return p.sellOrderValue }
func (p *Position) TotalOrders() int64               { return p.totalOrders }
func (p *Position) TotalTrades() int64               { return p.totalTrades }
func (p *Position) IsTraded() bool                   { return p.isTraded }
func (p *Position) BuyTodayHoldingQuantity() int64   { return p.buyTodayHoldingQuantity }
func (p *Position) TransactionCost() decimal.Decimal { return p.transactionCost }
func (p *Position) AvgPrice() decimal.Decimal        { return p.avgPrice }
func (p *Position) AverageCost() decimal.Decimal     { return p.avgPrice }
func (p *Position) DeListedDate() (time.Time, bool)  { return p.deListedDate, !p.deListedDate.IsZero() }
func (p *Position) Quantity() int64                  { return p.buyTradeQuantity - p.sellTradeQuantity }

// Sellable is the quantity available to a new sell order under T+1: today's
// buys and shares committed to open sell orders are excluded.
func (p *Position) Sellable() int64 {
	return p.Quantity() - p.buyTodayHoldingQuantity - p.sellOrderQuantity
}

// ValuePercent is the share of the stock account's portfolio value held in
// this position. It is 0 when the stock account is not active, which also
// covers positions held for a benchmark, or when the account is worth nothing.
func (p *Position) ValuePercent(accounts types.Accounts) decimal.Decimal {
	account, ok := accounts[types.AccountTypeStock]
	if !ok || account == nil {
		return decimal.Zero
	}
	total := account.PortfolioValue()
	if total.IsZero() {
		return decimal.Zero
	}
	return p.marketValue.Div(total)
}

// CloseTodayAmount is the part of a fill that closes today's holding. Stock
// positions never close same-day; instruments that do override this.
func (p *Position) CloseTodayAmount(tradeAmount int64, side types.Side) int64 {
	return 0
}

// IsDeListed reports whether the instrument is delisted as of date.
func (p *Position) IsDeListed(date time.Time) bool {
	return !p.deListedDate.IsZero() && !p.deListedDate.After(date)
}

// OnOrderPending books a newly accepted order.
func (p *Position) OnOrderPending(order types.Order) error {
	if err := p.check(order.OrderBookID, order.Side); err != nil {
		return err
	}
	p.totalOrders++
	switch order.Side {
	case types.SideTypeBuy:
		p.buyOrderQuantity += order.Quantity
		p.buyOrderValue = p.buyOrderValue.Add(order.Value())
	case types.SideTypeSell:
		p.sellOrderQuantity += order.Quantity
		p.sellOrderValue = p.sellOrderValue.Add(order.Value())
	}
	return nil
}

// OnOrderCancel releases the unfilled part of a cancelled or rejected order.
func (p *Position) OnOrderCancel(order types.Order, unfilled int64) error {
	if err := p.check(order.OrderBookID, order.Side); err != nil {
		return err
	}
	value := order.Price.Mul(decimal.NewFromInt(unfilled))
	switch order.Side {
	case types.SideTypeBuy:
		p.buyOrderQuantity, p.buyOrderValue = release(p.buyOrderQuantity, p.buyOrderValue, unfilled, value)
	case types.SideTypeSell:
		p.sellOrderQuantity, p.sellOrderValue = release(p.sellOrderQuantity, p.sellOrderValue, unfilled, value)
	}
	return nil
}

// OnTrade applies a fill. Only buy fills move the average price.
func (p *Position) OnTrade(trade types.Trade) error {
	if err := p.check(trade.OrderBookID, trade.Side); err != nil {
		return err
	}
	if trade.Side == types.SideTypeSell && trade.Quantity > p.Quantity() {
		return errors.Wrapf(ErrShortSellNotAllowed, "%s: sell %d, hold %d", p.orderBookID, trade.Quantity, p.Quantity())
	}

	value := trade.Value()
	orderValue := trade.FrozenValue()

	p.totalTrades++
	p.isTraded = true
	p.transactionCost = p.transactionCost.Add(trade.TransactionCost())

	switch trade.Side {
	case types.SideTypeBuy:
		p.avgPrice = weightedAvg(p.avgPrice, p.Quantity(), trade.Price, trade.Quantity)
		p.buyTradeQuantity += trade.Quantity
		p.buyTradeValue = p.buyTradeValue.Add(value)
		p.buyTodayHoldingQuantity += trade.Quantity
		p.buyOrderQuantity, p.buyOrderValue = release(p.buyOrderQuantity, p.buyOrderValue, trade.Quantity, orderValue)
	case types.SideTypeSell:
		p.sellTradeQuantity += trade.Quantity
		p.sellTradeValue = p.sellTradeValue.Add(value)
		p.sellOrderQuantity, p.sellOrderValue = release(p.sellOrderQuantity, p.sellOrderValue, trade.Quantity, orderValue)
	}

	p.UpdateLastPrice(trade.Price)
	return nil
}

// UpdateLastPrice marks the position to market.
func (p *Position) UpdateLastPrice(price decimal.Decimal) {
	p.lastPrice = price
	p.marketValue = price.Mul(decimal.NewFromInt(p.Quantity()))
}

// ResetTodayHolding settles today's buys. The owner calls it exactly once per
// trading-day transition.
func (p *Position) ResetTodayHolding() {
	p.buyTodayHoldingQuantity = 0
}

func (p *Position) check(orderBookID string, side types.Side) error {
	if orderBookID != p.orderBookID {
		return errors.Wrapf(ErrOrderBookMismatch, "%s != %s", orderBookID, p.orderBookID)
	}
	if !side.IsValid() {
		return errors.Wrapf(ErrUnknownSide, "%q", side)
	}
	return nil
}

func release(quantity int64, value decimal.Decimal, byQuantity int64, byValue decimal.Decimal) (int64, decimal.Decimal) {
	quantity -= byQuantity
	value = value.Sub(byValue)
	if quantity <= 0 {
		return 0, decimal.Zero
	}
	if value.IsNegative() {
		value = decimal.Zero
	}
	return quantity, value
}

func weightedAvg(existingAvgPrice decimal.Decimal, existingQty int64, newPrice decimal.Decimal, newQty int64) decimal.Decimal {
	if existingQty <= 0 {
		return newPrice
	}
	if newQty <= 0 {
		return existingAvgPrice
	}
	oldQ := decimal.NewFromInt(existingQty)
	newQ := decimal.NewFromInt(newQty)
	return existingAvgPrice.Mul(oldQ).
		Add(newPrice.Mul(newQ)).
		Div(oldQ.Add(newQ))
}
