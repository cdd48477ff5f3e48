package portfolio

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledger/internal/position"
	"ledger/internal/snapshot"
	"ledger/types"
)

type dividend struct {
	amount  decimal.Decimal
	payable time.Time
}

// Stock is the ledger of a long-only stock account under T+1 settlement.
// It is not safe for concurrent use; the owning simulation serializes events.
type Stock struct {
	*Base

	// cash is the total cash balance, frozen part included.
	cash        decimal.Decimal
	positions   map[string]*position.Position
	dividends   map[string][]dividend
	instruments position.InstrumentLookup
	logger      *zap.Logger
}

func NewStock(startingCash decimal.Decimal, startDate time.Time, instruments position.InstrumentLookup, logger *zap.Logger) (*Stock, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := NewBase(startingCash, startDate, types.AccountTypeStock)
	if err != nil {
		return nil, errors.Wrap(err, "init stock account")
	}
	return &Stock{
		Base:        base,
		cash:        startingCash,
		positions:   make(map[string]*position.Position),
		dividends:   make(map[string][]dividend),
		instruments: instruments,
		logger:      logger,
	}, nil
}

// Aggregate exposes the derived metrics of the account.
func (s *Stock) Aggregate() *Aggregate {
	return NewAggregate(s.Base, s)
}

func (s *Stock) Cash() decimal.Decimal {
	return s.cash.Sub(s.FrozenCash())
}

// TotalCash is the cash balance including frozen cash.
func (s *Stock) TotalCash() decimal.Decimal {
	return s.cash
}

func (s *Stock) PortfolioValue() decimal.Decimal {
	return s.cash.Add(marketValue(s.positions)).Add(s.DividendReceivable())
}

func (s *Stock) Positions() map[string]*position.Position {
	return s.positions
}

func (s *Stock) DailyPnL() decimal.Decimal {
	return s.PortfolioValue().Sub(s.YesterdayPortfolioValue())
}

// Position returns the ledger of the instrument, creating it on first use.
func (s *Stock) Position(orderBookID string) *position.Position {
	if p, ok := s.positions[orderBookID]; ok {
		return p
	}
	if s.instruments != nil {
		if _, ok := s.instruments.Instrument(orderBookID); !ok {
			s.logger.Warn("no instrument metadata, position has no delisting date",
				zap.String("order_book_id", orderBookID))
		}
	}
	p := position.New(orderBookID, s.instruments)
	s.positions[orderBookID] = p
	return p
}

// Restore replaces the ledger of an instrument with a persisted one.
func (s *Stock) Restore(record position.Record) {
	s.positions[record.OrderBookID] = position.FromRecord(record)
}

// OnOrderPending freezes the notional of buy orders.
func (s *Stock) OnOrderPending(order types.Order) error {
	if err := s.Position(order.OrderBookID).OnOrderPending(order); err != nil {
		return errors.Wrap(err, "order pending")
	}
	if order.Side == types.SideTypeBuy {
		s.FreezeCash(order.Value())
	}
	return nil
}

func (s *Stock) OnOrderCancel(order types.Order, unfilled int64) error {
	if err := s.Position(order.OrderBookID).OnOrderCancel(order, unfilled); err != nil {
		return errors.Wrap(err, "order cancel")
	}
	if order.Side == types.SideTypeBuy {
		s.UnfreezeCash(order.Price.Mul(decimal.NewFromInt(unfilled)))
	}
	return nil
}

// OnTrade settles a fill against cash and the instrument ledger.
func (s *Stock) OnTrade(trade types.Trade) error {
	if trade.Commission.IsNegative() || trade.Tax.IsNegative() {
		return errors.Wrapf(ErrNegativeCost, "trade: commission %s, tax %s", trade.Commission, trade.Tax)
	}
	if err := s.Position(trade.OrderBookID).OnTrade(trade); err != nil {
		return errors.Wrap(err, "trade")
	}
	if err := s.AddTransactionCost(trade.Commission, trade.Tax); err != nil {
		return errors.Wrap(err, "trade")
	}

	cost := trade.TransactionCost()
	switch trade.Side {
	case types.SideTypeBuy:
		s.UnfreezeCash(trade.FrozenValue())
		s.cash = s.cash.Sub(trade.Value()).Sub(cost)
	case types.SideTypeSell:
		s.cash = s.cash.Add(trade.Value()).Sub(cost)
	}
	return nil
}

// UpdatePrices marks held positions to the last price of each snapshot.
// Snapshots without data are skipped.
func (s *Stock) UpdatePrices(snapshots ...snapshot.Snapshot) {
	for _, snap := range snapshots {
		if snap.IsNaN() {
			continue
		}
		if p, ok := s.positions[snap.OrderBookID()]; ok {
			p.UpdateLastPrice(decimal.NewFromFloat(snap.Last()))
		}
	}
}

// BookDividend records a cash dividend on the current holding, paid out when
// the payable date is reached.
func (s *Stock) BookDividend(orderBookID string, perShare decimal.Decimal, payable time.Time) {
	p, ok := s.positions[orderBookID]
	if !ok || p.Quantity() == 0 {
		return
	}
	amount := perShare.Mul(decimal.NewFromInt(p.Quantity()))
	s.dividendReceivable = s.dividendReceivable.Add(amount)
	s.dividends[orderBookID] = append(s.dividends[orderBookID], dividend{amount: amount, payable: dateOf(payable)})
}

// AdvanceDay rolls the account over to the next trading day. It must be called
// exactly once per day transition: it settles today's buys, pays due dividends
// and liquidates delisted positions at their last price.
func (s *Stock) AdvanceDay(next time.Time) error {
	if err := s.AdvanceDate(next, s.PortfolioValue()); err != nil {
		return err
	}
	day := s.CurrentDate()

	for _, p := range s.positions {
		p.ResetTodayHolding()
	}
	s.payDividends(day)
	s.delist(day)

	s.logger.Info("trading day advanced",
		zap.String("date", day.Format(time.DateOnly)),
		zap.String("yesterday_portfolio_value", s.YesterdayPortfolioValue().String()),
		zap.Int("positions", len(s.positions)))
	return nil
}

func (s *Stock) payDividends(day time.Time) {
	for id, pending := range s.dividends {
		kept := pending[:0]
		for _, d := range pending {
			if d.payable.After(day) {
				kept = append(kept, d)
				continue
			}
			s.cash = s.cash.Add(d.amount)
			s.dividendReceivable = s.dividendReceivable.Sub(d.amount)
			s.logger.Info("dividend paid", zap.String("order_book_id", id), zap.String("amount", d.amount.String()))
		}
		if len(kept) == 0 {
			delete(s.dividends, id)
		} else {
			s.dividends[id] = kept
		}
	}
}

func (s *Stock) delist(day time.Time) {
	ids := make([]string, 0)
	for id, p := range s.positions {
		if p.IsDeListed(day) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := s.positions[id]
		s.cash = s.cash.Add(p.LastPrice().Mul(decimal.NewFromInt(p.Quantity())))
		delete(s.positions, id)
		s.logger.Warn("position liquidated on delisting",
			zap.String("order_book_id", id),
			zap.Int64("quantity", p.Quantity()),
			zap.String("last_price", p.LastPrice().String()))
	}
}
