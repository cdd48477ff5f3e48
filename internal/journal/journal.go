// Package journal reads CSV event journals and replays them into a stock
// account ledger.
package journal

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"ledger/types"
)

var (
	ErrUnknownEvent = errors.New("unknown journal event")
	ErrBadHeader    = errors.New("unexpected journal header")
	ErrBadRow       = errors.New("malformed journal row")
)

type EventKind string

const (
	EventOrder    EventKind = "order"
	EventCancel   EventKind = "cancel"
	EventTrade    EventKind = "trade"
	EventPrice    EventKind = "price"
	EventDividend EventKind = "dividend"
	EventDay      EventKind = "day"
)

// Header is the column layout of a journal file.
var Header = []string{"date", "event", "order_book_id", "side", "quantity", "price", "commission", "tax", "frozen_price"}

// Event is one journal row. Quantity is the unfilled part for a cancel. Price
// is the per-share amount for a dividend, whose Date is the payable date.
type Event struct {
	Date        time.Time
	Kind        EventKind
	OrderBookID string
	Side        types.Side
	Quantity    int64
	Price       decimal.Decimal
	Commission  decimal.Decimal
	Tax         decimal.Decimal
	FrozenPrice decimal.Decimal
}

func (e Event) Order() types.Order {
	return types.NewOrder(e.OrderBookID, e.Side, e.Quantity, e.Price, e.Date)
}

func (e Event) Trade() types.Trade {
	return types.NewTrade(e.OrderBookID, e.Side, e.Quantity, e.Price, e.FrozenPrice, e.Commission, e.Tax, e.Date)
}

func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	defer f.Close()
	return Read(f)
}

// Read parses a journal. The first row must be Header.
func Read(r io.Reader) ([]Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	for i, col := range head {
		if strings.TrimSpace(col) != Header[i] {
			return nil, errors.Wrapf(ErrBadHeader, "column %d is %q, want %q", i+1, col, Header[i])
		}
	}

	var events []Event
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read journal")
		}
		ev, err := parseEvent(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseEvent(rec []string) (Event, error) {
	var (
		ev  Event
		err error
	)
	if ev.Date, err = parseTime(rec[0]); err != nil {
		return Event{}, errors.Wrapf(ErrBadRow, "date %q", rec[0])
	}
	ev.Kind = EventKind(strings.ToLower(rec[1]))
	ev.OrderBookID = rec[2]
	ev.Side = types.Side(strings.ToUpper(rec[3]))

	switch ev.Kind {
	case EventDay:
		return ev, nil
	case EventOrder, EventCancel, EventTrade:
		if !ev.Side.IsValid() {
			return Event{}, errors.Wrapf(ErrBadRow, "side %q", rec[3])
		}
	case EventPrice, EventDividend:
	default:
		return Event{}, errors.Wrapf(ErrUnknownEvent, "%q", rec[1])
	}
	if ev.OrderBookID == "" {
		return Event{}, errors.Wrap(ErrBadRow, "order_book_id is required")
	}

	if ev.Kind != EventPrice && ev.Kind != EventDividend {
		if ev.Quantity, err = strconv.ParseInt(rec[4], 10, 64); err != nil || ev.Quantity < 0 {
			return Event{}, errors.Wrapf(ErrBadRow, "quantity %q", rec[4])
		}
	}
	decimals := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"price", rec[5], &ev.Price},
		{"commission", rec[6], &ev.Commission},
		{"tax", rec[7], &ev.Tax},
		{"frozen_price", rec[8], &ev.FrozenPrice},
	}
	for _, d := range decimals {
		if d.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return Event{}, errors.Wrapf(ErrBadRow, "%s %q", d.name, d.raw)
		}
		*d.dst = v
	}
	return ev, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateTime, s)
}
