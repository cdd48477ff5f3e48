package position

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingAccumulator = errors.New("missing accumulator")
	ErrInvalidAccumulator = errors.New("invalid accumulator")
)

// Persisted record keys, in record order.
const (
	KeyOrderBookID             = "order_book_id"
	KeyLastPrice               = "last_price"
	KeyMarketValue             = "market_value"
	KeyBuyTradeValue           = "buy_trade_value"
	KeySellTradeValue          = "sell_trade_value"
	KeyBuyOrderValue           = "buy_order_value"
	KeySellOrderValue          = "sell_order_value"
	KeyBuyOrderQuantity        = "buy_order_quantity"
	KeySellOrderQuantity       = "sell_order_quantity"
	KeyBuyTradeQuantity        = "buy_trade_quantity"
	KeySellTradeQuantity       = "sell_trade_quantity"
	KeyTotalOrders             = "total_orders"
	KeyTotalTrades             = "total_trades"
	KeyIsTraded                = "is_traded"
	KeyBuyTodayHoldingQuantity = "buy_today_holding_quantity"
	KeyAvgPrice                = "avg_price"
	KeyDeListedDate            = "de_listed_date"
	KeyTransactionCost         = "transaction_cost"
)

// RecordKeys lists every key of a persisted position.
var RecordKeys = []string{
	KeyOrderBookID, KeyLastPrice, KeyMarketValue,
	KeyBuyTradeValue, KeySellTradeValue, KeyBuyOrderValue, KeySellOrderValue,
	KeyBuyOrderQuantity, KeySellOrderQuantity, KeyBuyTradeQuantity, KeySellTradeQuantity,
	KeyTotalOrders, KeyTotalTrades, KeyIsTraded, KeyBuyTodayHoldingQuantity,
	KeyAvgPrice, KeyDeListedDate, KeyTransactionCost,
}

// Record is the persisted form of a Position. DeListedDate is zero when the
// instrument has no delisting date.
type Record struct {
	OrderBookID             string
	LastPrice               decimal.Decimal
	MarketValue             decimal.Decimal
	BuyTradeValue           decimal.Decimal
	SellTradeValue          decimal.Decimal
	BuyOrderValue           decimal.Decimal
	SellOrderValue          decimal.Decimal
	BuyOrderQuantity        int64
	SellOrderQuantity       int64
	BuyTradeQuantity        int64
	SellTradeQuantity       int64
	TotalOrders             int64
	TotalTrades             int64
	IsTraded                bool
	BuyTodayHoldingQuantity int64
	AvgPrice                decimal.Decimal
	DeListedDate            time.Time
	TransactionCost         decimal.Decimal
}

// ToRecord converts the position into its persisted form.
func (p *Position) ToRecord() Record {
	return Record{
		OrderBookID:             p.orderBookID,
		LastPrice:               p.lastPrice,
		MarketValue:             p.marketValue,
		BuyTradeValue:           p.buyTradeValue,
		SellTradeValue:          p.sellTradeValue,
		BuyOrderValue:           p.buyOrderValue,
		SellOrderValue:          p.sellOrderValue,
		BuyOrderQuantity:        p.buyOrderQuantity,
		SellOrderQuantity:       p.sellOrderQuantity,
		BuyTradeQuantity:        p.buyTradeQuantity,
		SellTradeQuantity:       p.sellTradeQuantity,
		TotalOrders:             p.totalOrders,
		TotalTrades:             p.totalTrades,
		IsTraded:                p.isTraded,
		BuyTodayHoldingQuantity: p.buyTodayHoldingQuantity,
		AvgPrice:                p.avgPrice,
		DeListedDate:            p.deListedDate,
		TransactionCost:         p.transactionCost,
	}
}

// FromRecord reconstructs a position. No instrument lookup is needed: the
// delisting date travels with the record.
func FromRecord(r Record) *Position {
	return &Position{
		orderBookID:             r.OrderBookID,
		lastPrice:               r.LastPrice,
		marketValue:             r.MarketValue,
		buyTradeValue:           r.BuyTradeValue,
		sellTradeValue:          r.SellTradeValue,
		buyOrderValue:           r.BuyOrderValue,
		sellOrderValue:          r.SellOrderValue,
		buyOrderQuantity:        r.BuyOrderQuantity,
		sellOrderQuantity:       r.SellOrderQuantity,
		buyTradeQuantity:        r.BuyTradeQuantity,
		sellTradeQuantity:       r.SellTradeQuantity,
		totalOrders:             r.TotalOrders,
		totalTrades:             r.TotalTrades,
		isTraded:                r.IsTraded,
		buyTodayHoldingQuantity: r.BuyTodayHoldingQuantity,
		avgPrice:                r.AvgPrice,
		deListedDate:            r.DeListedDate,
		transactionCost:         r.TransactionCost,
	}
}

// ToMap flattens the record into a key/value mapping. A missing delisting
// date is stored as nil.
func (r Record) ToMap() map[string]any {
	var deListed any
	if !r.DeListedDate.IsZero() {
		deListed = r.DeListedDate
	}
	return map[string]any{
		KeyOrderBookID:             r.OrderBookID,
		KeyLastPrice:               r.LastPrice,
		KeyMarketValue:             r.MarketValue,
		KeyBuyTradeValue:           r.BuyTradeValue,
		KeySellTradeValue:          r.SellTradeValue,
		KeyBuyOrderValue:           r.BuyOrderValue,
		KeySellOrderValue:          r.SellOrderValue,
		KeyBuyOrderQuantity:        r.BuyOrderQuantity,
		KeySellOrderQuantity:       r.SellOrderQuantity,
		KeyBuyTradeQuantity:        r.BuyTradeQuantity,
		KeySellTradeQuantity:       r.SellTradeQuantity,
		KeyTotalOrders:             r.TotalOrders,
		KeyTotalTrades:             r.TotalTrades,
		KeyIsTraded:                r.IsTraded,
		KeyBuyTodayHoldingQuantity: r.BuyTodayHoldingQuantity,
		KeyAvgPrice:                r.AvgPrice,
		KeyDeListedDate:            deListed,
		KeyTransactionCost:         r.TransactionCost,
	}
}

// RecordFromMap is the inverse of Record.ToMap. Every key of RecordKeys must be
// present.
func RecordFromMap(m map[string]any) (Record, error) {
	d := mapDecoder{m: m}
	r := Record{
		OrderBookID:             d.stringValue(KeyOrderBookID),
		LastPrice:               d.decimalValue(KeyLastPrice),
		MarketValue:             d.decimalValue(KeyMarketValue),
		BuyTradeValue:           d.decimalValue(KeyBuyTradeValue),
		SellTradeValue:          d.decimalValue(KeySellTradeValue),
		BuyOrderValue:           d.decimalValue(KeyBuyOrderValue),
		SellOrderValue:          d.decimalValue(KeySellOrderValue),
		BuyOrderQuantity:        d.intValue(KeyBuyOrderQuantity),
		SellOrderQuantity:       d.intValue(KeySellOrderQuantity),
		BuyTradeQuantity:        d.intValue(KeyBuyTradeQuantity),
		SellTradeQuantity:       d.intValue(KeySellTradeQuantity),
		TotalOrders:             d.intValue(KeyTotalOrders),
		TotalTrades:             d.intValue(KeyTotalTrades),
		IsTraded:                d.boolValue(KeyIsTraded),
		BuyTodayHoldingQuantity: d.intValue(KeyBuyTodayHoldingQuantity),
		AvgPrice:                d.decimalValue(KeyAvgPrice),
		DeListedDate:            d.timeValue(KeyDeListedDate),
		TransactionCost:         d.decimalValue(KeyTransactionCost),
	}
	if d.err != nil {
		return Record{}, d.err
	}
	return r, nil
}

// mapDecoder keeps the first error and turns every later read into a no-op.
type mapDecoder struct {
	m   map[string]any
	err error
}

func (d *mapDecoder) get(key string) (any, bool) {
	if d.err != nil {
		return nil, false
	}
	v, ok := d.m[key]
	if !ok {
		d.err = errors.Wrapf(ErrMissingAccumulator, "key %q", key)
		return nil, false
	}
	return v, true
}

func (d *mapDecoder) invalid(key string, v any) {
	d.err = errors.Wrapf(ErrInvalidAccumulator, "key %q has type %T", key, v)
}

func (d *mapDecoder) stringValue(key string) string {
	v, ok := d.get(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.invalid(key, v)
	}
	return s
}

func (d *mapDecoder) boolValue(key string) bool {
	v, ok := d.get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.invalid(key, v)
	}
	return b
}

func (d *mapDecoder) intValue(key string) int64 {
	v, ok := d.get(key)
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	}
	d.invalid(key, v)
	return 0
}

func (d *mapDecoder) decimalValue(key string) decimal.Decimal {
	v, ok := d.get(key)
	if !ok {
		return decimal.Zero
	}
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case string:
		dec, err := decimal.NewFromString(x)
		if err != nil {
			d.err = errors.Wrapf(ErrInvalidAccumulator, "key %q: %v", key, err)
		}
		return dec
	case float64:
		return decimal.NewFromFloat(x)
	case int64:
		return decimal.NewFromInt(x)
	case int:
		return decimal.NewFromInt(int64(x))
	}
	d.invalid(key, v)
	return decimal.Zero
}

func (d *mapDecoder) timeValue(key string) time.Time {
	v, ok := d.get(key)
	if !ok || v == nil {
		return time.Time{}
	}
	t, ok := v.(time.Time)
	if !ok {
		d.invalid(key, v)
	}
	return t
}
