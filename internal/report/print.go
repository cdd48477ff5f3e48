package report

import (
	"fmt"
	"io"
	"time"
)

func Print(w io.Writer, s Summary) {
	fmt.Fprintln(w, "===== Portfolio Report =====")
	fmt.Fprintf(w, "Start Date:            %s\n", s.StartDate.Format(time.DateOnly))
	fmt.Fprintf(w, "End Date:              %s\n", s.EndDate.Format(time.DateOnly))
	fmt.Fprintf(w, "Trading Days:          %d\n", s.TradingDays)

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Portfolio Value:       %s\n", s.PortfolioValue.StringFixed(2))
	fmt.Fprintf(w, "Pnl:                   %s\n", s.Pnl.StringFixed(2))
	fmt.Fprintf(w, "Total Returns:         %s\n", s.TotalReturns.StringFixed(6))
	fmt.Fprintf(w, "Annualized Returns:    %s\n", s.AnnualizedReturns.StringFixed(6))

	fmt.Fprintln(w, "\n-- Drawdown Metrics --")
	fmt.Fprintf(w, "Max Drawdown:          %s\n", s.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown %%:        %s\n", s.MaxDrawdownPercent.StringFixed(6))
	fmt.Fprintf(w, "Max Drawdown Days:     %d\n", s.MaxDrawdownDays/(24*time.Hour))

	fmt.Fprintln(w, "\n-- Risk-Adjusted Metrics --")
	fmt.Fprintf(w, "Volatility:            %s\n", s.Volatility.StringFixed(6))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", s.SharpeRatio.StringFixed(6))

	fmt.Fprintln(w, "\n-- Costs --")
	fmt.Fprintf(w, "Transaction Cost:      %s\n", s.TransactionCost.StringFixed(2))

	fmt.Fprintln(w, "============================")
}
