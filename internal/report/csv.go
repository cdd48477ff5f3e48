package report

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"ledger/types"
)

// WritePositionsCSVFile writes the positions of a view to a CSV file at path.
func WritePositionsCSVFile(path string, view types.PortfolioView) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create positions file")
	}
	defer f.Close()

	return WritePositionsCSV(f, view)
}

// WritePositionsCSV writes one row per position, ordered by order book id.
func WritePositionsCSV(w io.Writer, view types.PortfolioView) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date",
		"order_book_id",
		"quantity",
		"sellable",
		"avg_price",
		"last_price",
		"market_value",
		"value_percent",
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	ids := make([]string, 0, len(view.Positions))
	for id := range view.Positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	date := view.Time.Format(time.DateOnly)
	for _, id := range ids {
		p := view.Positions[id]
		record := []string{
			date,
			p.OrderBookID,
			strconv.FormatInt(p.Quantity, 10),
			strconv.FormatInt(p.Sellable, 10),
			p.AvgPrice.String(),
			p.LastPrice.String(),
			p.MarketValue.String(),
			p.ValuePercent.StringFixed(6),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write position %s", id)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	return nil
}

// WriteHistoryCSVFile writes the daily history to a CSV file at path.
func WriteHistoryCSVFile(path string, history []types.PortfolioView) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create history file")
	}
	defer f.Close()

	return WriteHistoryCSV(f, history)
}

// WriteHistoryCSV writes one row per daily view.
func WriteHistoryCSV(w io.Writer, history []types.PortfolioView) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date",
		"cash",
		"market_value",
		"portfolio_value",
		"daily_pnl",
		"daily_returns",
		"total_returns",
		"annualized_returns",
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, v := range history {
		record := []string{
			v.Time.Format(time.DateOnly),
			v.Cash.String(),
			v.MarketValue.String(),
			v.PortfolioValue.String(),
			v.DailyPnl.String(),
			v.DailyReturns.StringFixed(6),
			v.TotalReturns.StringFixed(6),
			v.AnnualizedReturns.StringFixed(6),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "write history row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	return nil
}
