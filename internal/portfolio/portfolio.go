// Package portfolio aggregates position ledgers into account level metrics.
package portfolio

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"ledger/internal/position"
	"ledger/types"
)

// DaysPerYear is the calendar-day convention used for annualization.
const DaysPerYear = 365

var (
	ErrAbstractMethod  = errors.New("ledger read called without an implementation")
	ErrNegativeCash    = errors.New("starting cash must not be negative")
	ErrDateNotAdvanced = errors.New("trading date must move forward")
	ErrNegativeCost    = errors.New("transaction cost must not be negative")
)

// Ledger is the capability an account must provide to be aggregated.
type Ledger interface {
	// Cash is the spendable cash, total cash minus frozen cash.
	Cash() decimal.Decimal
	PortfolioValue() decimal.Decimal
	Positions() map[string]*position.Position
	DailyPnL() decimal.Decimal
}

// UnimplementedLedger panics with ErrAbstractMethod on every read. Embed it in
// partial ledgers; an Aggregate built without a ledger uses it as well.
type UnimplementedLedger struct{}

func (UnimplementedLedger) Cash() decimal.Decimal {
	panic(errors.Wrap(ErrAbstractMethod, "cash"))
}

func (UnimplementedLedger) PortfolioValue() decimal.Decimal {
	panic(errors.Wrap(ErrAbstractMethod, "portfolio value"))
}

func (UnimplementedLedger) Positions() map[string]*position.Position {
	panic(errors.Wrap(ErrAbstractMethod, "positions"))
}

func (UnimplementedLedger) DailyPnL() decimal.Decimal {
	panic(errors.Wrap(ErrAbstractMethod, "daily pnl"))
}

// Base is the state shared by every account kind.
type Base struct {
	accountType             types.AccountType
	startingCash            decimal.Decimal
	startDate               time.Time
	currentDate             time.Time
	yesterdayPortfolioValue decimal.Decimal
	frozenCash              decimal.Decimal
	totalCommission         decimal.Decimal
	totalTax                decimal.Decimal
	dividendReceivable      decimal.Decimal
}

func NewBase(startingCash decimal.Decimal, startDate time.Time, accountType types.AccountType) (*Base, error) {
	if startingCash.IsNegative() {
		return nil, errors.Wrapf(ErrNegativeCash, "got %s", startingCash)
	}
	day := dateOf(startDate)
	return &Base{
		accountType:             accountType,
		startingCash:            startingCash,
		startDate:               day,
		currentDate:             day,
		yesterdayPortfolioValue: startingCash,
	}, nil
}

func (b *Base) AccountType() types.AccountType           { return b.accountType }
func (b *Base) StartingCash() decimal.Decimal            { return b.startingCash }
func (b *Base) StartDate() time.Time                     { return b.startDate }
func (b *Base) CurrentDate() time.Time                   { return b.currentDate }
func (b *Base) YesterdayPortfolioValue() decimal.Decimal { return b.yesterdayPortfolioValue }
func (b *Base) FrozenCash() decimal.Decimal              { return b.frozenCash }
func (b *Base) TotalCommission() decimal.Decimal         { return b.totalCommission }
func (b *Base) TotalTax() decimal.Decimal                { return b.totalTax }
func (b *Base) DividendReceivable() decimal.Decimal      { return b.dividendReceivable }
func (b *Base) TransactionCost() decimal.Decimal         { return b.totalCommission.Add(b.totalTax) }

// ElapsedDays counts calendar days from the start date through the current
// date, both inclusive, so it is never zero.
func (b *Base) ElapsedDays() int {
	return int(b.currentDate.Sub(b.startDate).Hours()/24) + 1
}

// AddTransactionCost accumulates fees. The accumulators never decrease.
func (b *Base) AddTransactionCost(commission, tax decimal.Decimal) error {
	if commission.IsNegative() || tax.IsNegative() {
		return errors.Wrapf(ErrNegativeCost, "commission %s, tax %s", commission, tax)
	}
	b.totalCommission = b.totalCommission.Add(commission)
	b.totalTax = b.totalTax.Add(tax)
	return nil
}

func (b *Base) FreezeCash(amount decimal.Decimal) {
	b.frozenCash = b.frozenCash.Add(amount)
}

// UnfreezeCash releases frozen cash, never below zero.
func (b *Base) UnfreezeCash(amount decimal.Decimal) {
	b.frozenCash = b.frozenCash.Sub(amount)
	if b.frozenCash.IsNegative() {
		b.frozenCash = decimal.Zero
	}
}

// AdvanceDate closes the current day at closingValue and moves to next.
func (b *Base) AdvanceDate(next time.Time, closingValue decimal.Decimal) error {
	day := dateOf(next)
	if !day.After(b.currentDate) {
		return errors.Wrapf(ErrDateNotAdvanced, "%s -> %s",
			b.currentDate.Format(time.DateOnly), day.Format(time.DateOnly))
	}
	b.yesterdayPortfolioValue = closingValue
	b.currentDate = day
	return nil
}

// Aggregate derives account metrics from the shared state and a Ledger.
// Every read is side-effect free.
type Aggregate struct {
	*Base
	Ledger
}

func NewAggregate(base *Base, ledger Ledger) *Aggregate {
	if ledger == nil {
		ledger = UnimplementedLedger{}
	}
	return &Aggregate{Base: base, Ledger: ledger}
}

// MarketValue is the sum of position market values.
func (a *Aggregate) MarketValue() decimal.Decimal {
	return marketValue(a.Positions())
}

func (a *Aggregate) Pnl() decimal.Decimal {
	return a.PortfolioValue().Sub(a.StartingCash())
}

func (a *Aggregate) TotalReturns() decimal.Decimal {
	if a.StartingCash().IsZero() {
		return decimal.Zero
	}
	return a.Pnl().Div(a.StartingCash())
}

// AnnualizedReturns compounds the total return over the elapsed calendar days:
// (1 + total_returns) ^ (DaysPerYear / elapsed_days) - 1.
// A total loss yields -1; a result beyond float64 range saturates.
func (a *Aggregate) AnnualizedReturns() decimal.Decimal {
	growth := decimal.NewFromInt(1).Add(a.TotalReturns()).InexactFloat64()
	if growth <= 0 {
		return decimal.NewFromInt(-1)
	}
	r := math.Pow(growth, DaysPerYear/float64(a.ElapsedDays())) - 1
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return decimal.NewFromFloat(math.MaxFloat64)
	}
	return decimal.NewFromFloat(r)
}

func (a *Aggregate) DailyReturns() decimal.Decimal {
	if a.YesterdayPortfolioValue().IsZero() {
		return decimal.Zero
	}
	return a.DailyPnL().Div(a.YesterdayPortfolioValue())
}

// Accounts builds the active-account registry of a session.
func Accounts(aggregates ...*Aggregate) types.Accounts {
	accounts := make(types.Accounts, len(aggregates))
	for _, a := range aggregates {
		accounts[a.AccountType()] = a
	}
	return accounts
}

func marketValue(positions map[string]*position.Position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.MarketValue())
	}
	return total
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
