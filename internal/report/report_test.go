package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/portfolio"
	"ledger/types"
)

var day0 = time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func tradedAccount(t *testing.T) *portfolio.Stock {
	t.Helper()
	s, err := portfolio.NewStock(dec("100000"), day0, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.OnTrade(types.NewTrade("000001.XSHE", types.SideTypeBuy, 1000, dec("10"), decimal.Zero, dec("5"), decimal.Zero, day0)))
	require.NoError(t, s.OnTrade(types.NewTrade("600000.XSHG", types.SideTypeBuy, 100, dec("20"), decimal.Zero, dec("5"), decimal.Zero, day0)))
	require.NoError(t, s.OnTrade(types.NewTrade("600000.XSHG", types.SideTypeSell, 100, dec("21"), decimal.Zero, dec("5"), dec("2.1"), day0)))
	return s
}

func TestBuild(t *testing.T) {
	s := tradedAccount(t)
	agg := s.Aggregate()
	view := Build(agg, portfolio.Accounts(agg))

	assert.Equal(t, day0, view.Time)
	assert.Equal(t, types.AccountTypeStock, view.AccountType)
	assert.True(t, view.Cash.Equal(dec("90082.9")))
	assert.True(t, view.MarketValue.Equal(dec("10000")))
	assert.True(t, view.PortfolioValue.Equal(dec("100082.9")))
	assert.True(t, view.Pnl.Equal(dec("82.9")))
	assert.True(t, view.TransactionCost.Equal(dec("17.1")))

	require.Len(t, view.Positions, 1, "closed positions are left out")
	p := view.Positions["000001.XSHE"]
	assert.Equal(t, int64(1000), p.Quantity)
	assert.Equal(t, int64(0), p.Sellable)
	assert.True(t, p.ValuePercent.Equal(dec("10000").Div(dec("100082.9"))))
}

func history(values ...string) []types.PortfolioView {
	views := make([]types.PortfolioView, len(values))
	prev := dec(values[0])
	for i, v := range values {
		pv := dec(v)
		views[i] = types.PortfolioView{
			Time:           day0.AddDate(0, 0, i),
			PortfolioValue: pv,
			DailyReturns:   pv.Sub(prev).Div(prev),
		}
		prev = pv
	}
	return views
}

func TestSummarize(t *testing.T) {
	h := history("100", "110", "99", "105")
	h[len(h)-1].TotalReturns = dec("0.05")
	h[len(h)-1].TransactionCost = dec("3")

	s := Summarize(h, decimal.Zero)
	assert.Equal(t, day0, s.StartDate)
	assert.Equal(t, day0.AddDate(0, 0, 3), s.EndDate)
	assert.Equal(t, 4, s.TradingDays)
	assert.True(t, s.PortfolioValue.Equal(dec("105")))
	assert.True(t, s.TotalReturns.Equal(dec("0.05")))
	assert.True(t, s.TransactionCost.Equal(dec("3")))

	assert.True(t, s.MaxDrawdown.Equal(dec("11")))
	assert.True(t, s.MaxDrawdownPercent.Equal(dec("0.1")))
	assert.Equal(t, 24*time.Hour, s.MaxDrawdownDays)

	returns := []float64{0, 0.1, -0.1, 6.0 / 99}
	mean, std := 0.0, 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	for _, r := range returns {
		std += (r - mean) * (r - mean)
	}
	std = math.Sqrt(std / float64(len(returns)-1))

	assert.InDelta(t, std*math.Sqrt(TradingDaysPerYear), s.Volatility.InexactFloat64(), 1e-9)
	assert.InDelta(t, mean/std*math.Sqrt(TradingDaysPerYear), s.SharpeRatio.InexactFloat64(), 1e-9)
}

func TestSummarize_Degenerate(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil, decimal.Zero))

	single := Summarize(history("100"), decimal.Zero)
	assert.Equal(t, 1, single.TradingDays)
	assert.True(t, single.Volatility.IsZero())
	assert.True(t, single.SharpeRatio.IsZero())
	assert.True(t, single.MaxDrawdown.IsZero())

	flat := Summarize(history("100", "100", "100"), dec("0.03"))
	assert.True(t, flat.SharpeRatio.IsZero())
	assert.True(t, flat.Volatility.IsZero())
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, Summarize(history("100", "110", "99"), decimal.Zero))

	out := buf.String()
	assert.Contains(t, out, "Start Date:            2016-01-04\n")
	assert.Contains(t, out, "Trading Days:          3\n")
	assert.Contains(t, out, "Max Drawdown:          11.00\n")
	assert.Contains(t, out, "Max Drawdown Days:     1\n")
}

func TestWritePositionsCSV(t *testing.T) {
	s := tradedAccount(t)
	require.NoError(t, s.OnTrade(types.NewTrade("000002.XSHE", types.SideTypeBuy, 200, dec("5"), decimal.Zero, decimal.Zero, decimal.Zero, day0)))
	agg := s.Aggregate()
	view := Build(agg, types.Accounts{})

	var buf bytes.Buffer
	require.NoError(t, WritePositionsCSV(&buf, view))

	want := "date,order_book_id,quantity,sellable,avg_price,last_price,market_value,value_percent\n" +
		"2016-01-04,000001.XSHE,1000,0,10,10,10000,0.000000\n" +
		"2016-01-04,000002.XSHE,200,0,5,5,1000,0.000000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteHistoryCSV(t *testing.T) {
	h := history("100", "110")
	h[0].Cash = dec("100")
	h[1].Cash = dec("10")
	h[1].MarketValue = dec("100")

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, h))

	want := "date,cash,market_value,portfolio_value,daily_pnl,daily_returns,total_returns,annualized_returns\n" +
		"2016-01-04,100,0,100,0,0.000000,0.000000,0.000000\n" +
		"2016-01-05,10,100,110,0,0.100000,0.000000,0.000000\n"
	assert.Equal(t, want, buf.String())
}
