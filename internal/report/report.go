// Package report turns account state into read-only views and summarizes the
// daily history of a replay.
package report

import (
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"ledger/internal/portfolio"
	"ledger/types"
)

// TradingDaysPerYear annualizes daily volatility and Sharpe ratio.
const TradingDaysPerYear = 252

// Build copies the metrics of an account as of its current date.
func Build(agg *portfolio.Aggregate, accounts types.Accounts) types.PortfolioView {
	positions := agg.Positions()
	view := types.PortfolioView{
		Time:              agg.CurrentDate(),
		AccountType:       agg.AccountType(),
		Cash:              agg.Cash(),
		FrozenCash:        agg.FrozenCash(),
		MarketValue:       agg.MarketValue(),
		PortfolioValue:    agg.PortfolioValue(),
		Pnl:               agg.Pnl(),
		DailyPnl:          agg.DailyPnL(),
		DailyReturns:      agg.DailyReturns(),
		TotalReturns:      agg.TotalReturns(),
		AnnualizedReturns: agg.AnnualizedReturns(),
		TransactionCost:   agg.TransactionCost(),
		Positions:         make(map[string]types.PositionView, len(positions)),
	}
	for id, p := range positions {
		if p.Quantity() == 0 {
			continue
		}
		view.Positions[id] = types.PositionView{
			OrderBookID:  id,
			Quantity:     p.Quantity(),
			Sellable:     p.Sellable(),
			AvgPrice:     p.AvgPrice(),
			LastPrice:    p.LastPrice(),
			MarketValue:  p.MarketValue(),
			ValuePercent: p.ValuePercent(accounts),
		}
	}
	return view
}

type Summary struct {
	StartDate   time.Time
	EndDate     time.Time
	TradingDays int

	PortfolioValue    decimal.Decimal
	Pnl               decimal.Decimal
	TotalReturns      decimal.Decimal
	AnnualizedReturns decimal.Decimal

	MaxDrawdown        decimal.Decimal
	MaxDrawdownPercent decimal.Decimal
	MaxDrawdownDays    time.Duration

	Volatility  decimal.Decimal
	SharpeRatio decimal.Decimal

	TransactionCost decimal.Decimal
}

// Summarize derives the summary of a chronological daily history. The last
// view supplies the account level figures.
func Summarize(history []types.PortfolioView, annualRiskFree decimal.Decimal) Summary {
	if len(history) == 0 {
		return Summary{}
	}
	first, last := history[0], history[len(history)-1]
	s := Summary{
		StartDate:         first.Time,
		EndDate:           last.Time,
		TradingDays:       len(history),
		PortfolioValue:    last.PortfolioValue,
		Pnl:               last.Pnl,
		TotalReturns:      last.TotalReturns,
		AnnualizedReturns: last.AnnualizedReturns,
		TransactionCost:   last.TransactionCost,
	}

	returns := dailyReturns(history)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		s.MaxDrawdown, s.MaxDrawdownPercent, s.MaxDrawdownDays = calcDrawdownMetrics(history, &wg)
	}()
	go func() {
		s.Volatility = calcVolatility(returns, &wg)
	}()
	go func() {
		s.SharpeRatio = calcSharpeRatio(returns, annualRiskFree, &wg)
	}()
	wg.Wait()
	return s
}

func dailyReturns(history []types.PortfolioView) []float64 {
	returns := make([]float64, 0, len(history))
	for _, v := range history {
		returns = append(returns, v.DailyReturns.InexactFloat64())
	}
	return returns
}

func calcDrawdownMetrics(history []types.PortfolioView, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, time.Duration) {
	defer wg.Done()

	peak := decimal.Zero
	var peakTime time.Time

	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	var maxDDDuration time.Duration

	for i, v := range history {
		equity := v.PortfolioValue
		if i == 0 || equity.GreaterThan(peak) || peak.IsZero() {
			peak = equity
			peakTime = v.Time
		}
		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(equity)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
				maxDDPct = dd.Div(peak)
				maxDDDuration = v.Time.Sub(peakTime)
			}
		}
	}
	return maxDD, maxDDPct, maxDDDuration
}

func calcVolatility(returns []float64, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(returns) < 2 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear))
}

func calcSharpeRatio(returns []float64, annualRiskFree decimal.Decimal, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(returns) < 2 {
		return decimal.Zero
	}

	// rf_daily = (1 + rf_annual)^(1/252) - 1
	rfDaily := math.Pow(1+annualRiskFree.InexactFloat64(), 1.0/TradingDaysPerYear) - 1
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - rfDaily
	}

	mean, std := stat.MeanStdDev(excess, nil)
	if std == 0 || math.IsNaN(std) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(mean / std * math.Sqrt(TradingDaysPerYear))
}
