package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioView is a read-only copy of an account's metrics at the close of a day.
type PortfolioView struct {
	Time              time.Time
	AccountType       AccountType
	Cash              decimal.Decimal
	FrozenCash        decimal.Decimal
	MarketValue       decimal.Decimal
	PortfolioValue    decimal.Decimal
	Pnl               decimal.Decimal
	DailyPnl          decimal.Decimal
	DailyReturns      decimal.Decimal
	TotalReturns      decimal.Decimal
	AnnualizedReturns decimal.Decimal
	TransactionCost   decimal.Decimal
	Positions         map[string]PositionView
}

type PositionView struct {
	OrderBookID  string
	Quantity     int64
	Sellable     int64
	AvgPrice     decimal.Decimal
	LastPrice    decimal.Decimal
	MarketValue  decimal.Decimal
	ValuePercent decimal.Decimal
}
