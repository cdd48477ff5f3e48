package journal

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"ledger/internal/portfolio"
	"ledger/internal/position"
	"ledger/internal/report"
	"ledger/internal/repository"
	"ledger/internal/snapshot"
	"ledger/types"
)

var ErrOutOfOrder = errors.New("journal event dated before the current trading day")

// PriceSource supplies the market data of an instrument between two times.
type PriceSource interface {
	GetSnapshots(ctx context.Context, inst types.Instrument, start, end time.Time) ([]snapshot.Snapshot, error)
}

// Replayer applies journal events to a stock account in file order. Any
// non-dividend event dated after the current day first closes that day.
type Replayer struct {
	account     *portfolio.Stock
	instruments position.InstrumentLookup
	prices      PriceSource
	logger      *zap.Logger
	progress    io.Writer
}

type Option func(*Replayer)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Replayer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress renders a progress bar to w while replaying.
func WithProgress(w io.Writer) Option {
	return func(r *Replayer) {
		r.progress = w
	}
}

// WithPriceSource marks held positions to the day's snapshots from src
// before each day is closed.
func WithPriceSource(src PriceSource) Option {
	return func(r *Replayer) {
		r.prices = src
	}
}

func NewReplayer(account *portfolio.Stock, instruments position.InstrumentLookup, opts ...Option) *Replayer {
	r := &Replayer{
		account:     account,
		instruments: instruments,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Replay applies events and returns the end-of-day view of every day it went
// through, the last day included.
func (r *Replayer) Replay(ctx context.Context, events []Event) ([]types.PortfolioView, error) {
	var bar *progressbar.ProgressBar
	if r.progress != nil {
		bar = initProgressBar(r.progress, len(events))
	}

	var history []types.PortfolioView
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		if ev.Kind != EventDividend {
			closed, err := r.rollTo(ctx, ev.Date)
			if err != nil {
				return history, errors.Wrapf(err, "event %d", i+1)
			}
			if closed != nil {
				history = append(history, *closed)
			}
		}
		if err := r.apply(ev); err != nil {
			return history, errors.Wrapf(err, "event %d (%s %s)", i+1, ev.Kind, ev.OrderBookID)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	closed, err := r.closeDay(ctx)
	if err != nil {
		return history, err
	}
	history = append(history, closed)
	r.logger.Info("journal replayed",
		zap.Int("events", len(events)),
		zap.Int("days", len(history)))
	return history, nil
}

// rollTo closes the current day and advances when date falls on a later day.
func (r *Replayer) rollTo(ctx context.Context, date time.Time) (*types.PortfolioView, error) {
	current := r.account.CurrentDate()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case day.Before(current):
		return nil, errors.Wrapf(ErrOutOfOrder, "%s < %s", day.Format(time.DateOnly), current.Format(time.DateOnly))
	case day.Equal(current):
		return nil, nil
	}
	closed, err := r.closeDay(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.account.AdvanceDay(day); err != nil {
		return nil, err
	}
	return &closed, nil
}

func (r *Replayer) apply(ev Event) error {
	switch ev.Kind {
	case EventDay:
		return nil
	case EventOrder:
		return r.account.OnOrderPending(ev.Order())
	case EventCancel:
		return r.account.OnOrderCancel(ev.Order(), ev.Quantity)
	case EventTrade:
		return r.account.OnTrade(ev.Trade())
	case EventPrice:
		r.account.UpdatePrices(r.snapshot(ev))
		return nil
	case EventDividend:
		r.account.BookDividend(ev.OrderBookID, ev.Price, ev.Date)
		return nil
	}
	return errors.Wrapf(ErrUnknownEvent, "%q", ev.Kind)
}

// closeDay marks the account to market and returns its end-of-day view.
func (r *Replayer) closeDay(ctx context.Context) (types.PortfolioView, error) {
	if err := r.markToMarket(ctx); err != nil {
		return types.PortfolioView{}, err
	}
	return r.view(), nil
}

func (r *Replayer) markToMarket(ctx context.Context) error {
	if r.prices == nil {
		return nil
	}
	day := r.account.CurrentDate()
	end := day.Add(24*time.Hour - time.Nanosecond)

	ids := make([]string, 0, len(r.account.Positions()))
	for id, p := range r.account.Positions() {
		if p.Quantity() > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		snaps, err := r.prices.GetSnapshots(ctx, r.instrument(id), day, end)
		if errors.Is(err, repository.ErrNoSnapshots) {
			r.logger.Debug("no market data, keeping last price",
				zap.String("order_book_id", id),
				zap.String("date", day.Format(time.DateOnly)))
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "mark %s to market", id)
		}
		r.account.UpdatePrices(snaps...)
	}
	return nil
}

func (r *Replayer) instrument(orderBookID string) types.Instrument {
	if r.instruments != nil {
		if found, ok := r.instruments.Instrument(orderBookID); ok {
			return found
		}
	}
	return types.Instrument{OrderBookID: orderBookID, Type: types.InstrumentTypeStock}
}

func (r *Replayer) snapshot(ev Event) snapshot.Snapshot {
	inst := r.instrument(ev.OrderBookID)
	last := ev.Price.InexactFloat64()
	return snapshot.New(inst, &snapshot.Bar{
		Datetime: snapshot.ConvertDatetimeToInt(ev.Date),
		Open:     last,
		High:     last,
		Low:      last,
		Last:     last,
	})
}

func (r *Replayer) view() types.PortfolioView {
	agg := r.account.Aggregate()
	return report.Build(agg, portfolio.Accounts(agg))
}

func initProgressBar(w io.Writer, maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Replaying journal..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
