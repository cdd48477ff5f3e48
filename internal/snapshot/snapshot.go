// Package snapshot provides the point-in-time market data view handed to strategies.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"ledger/types"
)

var (
	ErrSchemaMismatch = errors.New("record does not match instrument schema")
	ErrRecordSize     = errors.New("packed record has wrong size")
)

const unavailableMarker = "DATA UNAVAILABLE"

// MinDatetime is returned by Datetime when no data has been seen yet.
var MinDatetime = time.Time{}

// Bar is a fixed-width market data record. OpenInterest and PrevSettlement are
// only meaningful for derivative instruments.
type Bar struct {
	Datetime       uint64
	Open           float64
	High           float64
	Low            float64
	Last           float64
	Volume         uint64
	TotalTurnover  uint64
	PrevClose      float64
	OpenInterest   uint64
	PrevSettlement float64
}

// Snapshot is an immutable view over either an available record or the
// unavailable placeholder.
type Snapshot struct {
	instrument types.Instrument
	bar        *Bar
	dt         time.Time
}

type Option func(*Snapshot)

// WithDatetime overrides the timestamp carried by the record.
func WithDatetime(dt time.Time) Option {
	return func(s *Snapshot) {
		s.dt = dt
	}
}

// New builds a snapshot. A nil bar, a bar whose last price is NaN, or a bar
// with an invalid timestamp and no datetime override yields an unavailable
// snapshot.
func New(instrument types.Instrument, bar *Bar, opts ...Option) Snapshot {
	s := Snapshot{instrument: instrument}
	for _, opt := range opts {
		opt(&s)
	}
	if bar == nil || math.IsNaN(bar.Last) {
		return s
	}
	if _, ok := parseDatetime(bar.Datetime); !ok && s.dt.IsZero() {
		return s
	}
	b := *bar
	if !instrument.IsDerivative() {
		b.OpenInterest = 0
		b.PrevSettlement = math.NaN()
	}
	s.bar = &b
	return s
}

// FromMap builds a snapshot from a named-field record. The keys must be exactly
// the schema fields of the instrument.
func FromMap(instrument types.Instrument, record map[string]any, opts ...Option) (Snapshot, error) {
	fields := Fields(instrument)
	if len(record) != len(fields) {
		return Snapshot{}, errors.Wrapf(ErrSchemaMismatch, "%s: got %d fields, want %d",
			instrument.OrderBookID, len(record), len(fields))
	}

	var bar Bar
	for _, f := range fields {
		raw, ok := record[f.Name]
		if !ok {
			return Snapshot{}, errors.Wrapf(ErrSchemaMismatch, "%s: missing field %q", instrument.OrderBookID, f.Name)
		}
		var ok2 bool
		if f.Kind == KindFloat64 {
			var v float64
			v, ok2 = toFloat(raw)
			bar.setFloat(f.Name, v)
		} else {
			var v uint64
			v, ok2 = toUint(raw)
			if ok2 && f.Kind == KindUint32 && v > math.MaxUint32 {
				return Snapshot{}, errors.Wrapf(ErrSchemaMismatch, "%s: field %q value %d overflows uint32",
					instrument.OrderBookID, f.Name, v)
			}
			bar.setUint(f.Name, v)
		}
		if !ok2 {
			return Snapshot{}, errors.Wrapf(ErrSchemaMismatch, "%s: field %q has type %T", instrument.OrderBookID, f.Name, raw)
		}
	}
	return New(instrument, &bar, opts...), nil
}

// Decode builds a snapshot from a packed little-endian record laid out in schema order.
func Decode(instrument types.Instrument, raw []byte, opts ...Option) (Snapshot, error) {
	if want := RecordSize(instrument); len(raw) != want {
		return Snapshot{}, errors.Wrapf(ErrRecordSize, "%s: got %d bytes, want %d", instrument.OrderBookID, len(raw), want)
	}

	var bar Bar
	offset := 0
	for _, f := range Fields(instrument) {
		switch f.Kind {
		case KindUint32:
			bar.setUint(f.Name, uint64(binary.LittleEndian.Uint32(raw[offset:])))
		case KindUint64:
			bar.setUint(f.Name, binary.LittleEndian.Uint64(raw[offset:]))
		case KindFloat64:
			bar.setFloat(f.Name, math.Float64frombits(binary.LittleEndian.Uint64(raw[offset:])))
		}
		offset += f.Kind.Size()
	}
	return New(instrument, &bar, opts...), nil
}

// Encode packs the bar in the schema of the instrument; the inverse of Decode.
func Encode(instrument types.Instrument, bar Bar) []byte {
	out := make([]byte, RecordSize(instrument))
	offset := 0
	for _, f := range Fields(instrument) {
		switch f.Kind {
		case KindUint32:
			binary.LittleEndian.PutUint32(out[offset:], uint32(bar.uintField(f.Name)))
		case KindUint64:
			binary.LittleEndian.PutUint64(out[offset:], bar.uintField(f.Name))
		case KindFloat64:
			binary.LittleEndian.PutUint64(out[offset:], math.Float64bits(bar.floatField(f.Name)))
		}
		offset += f.Kind.Size()
	}
	return out
}

func (s Snapshot) Instrument() types.Instrument { return s.instrument }
func (s Snapshot) OrderBookID() string          { return s.instrument.OrderBookID }

// Bar returns the underlying record; ok is false for an unavailable snapshot.
func (s Snapshot) Bar() (Bar, bool) {
	if s.bar == nil {
		return Bar{}, false
	}
	return *s.bar, true
}

// IsNaN reports whether the snapshot carries no data.
func (s Snapshot) IsNaN() bool { return s.bar == nil }

// Price accessors return NaN and count accessors return 0 when IsNaN.

func (s Snapshot) Open() float64      { return s.floatField(FieldOpen) }
func (s Snapshot) High() float64      { return s.floatField(FieldHigh) }
func (s Snapshot) Low() float64       { return s.floatField(FieldLow) }
func (s Snapshot) Last() float64      { return s.floatField(FieldLast) }
func (s Snapshot) PrevClose() float64 { return s.floatField(FieldPrevClose) }

// PrevSettlement is NaN for non-derivative instruments.
func (s Snapshot) PrevSettlement() float64 { return s.floatField(FieldPrevSettlement) }

func (s Snapshot) Volume() uint64        { return s.uintField(FieldVolume) }
func (s Snapshot) TotalTurnover() uint64 { return s.uintField(FieldTotalTurnover) }
func (s Snapshot) OpenInterest() uint64  { return s.uintField(FieldOpenInterest) }

// Datetime returns the explicit override when given, the decoded record
// timestamp when data is available, and MinDatetime otherwise.
func (s Snapshot) Datetime() time.Time {
	if !s.dt.IsZero() {
		return s.dt
	}
	if s.bar == nil {
		return MinDatetime
	}
	return ConvertIntToDatetime(s.bar.Datetime)
}

func (s Snapshot) String() string {
	parts := []string{
		fmt.Sprintf("order_book_id: '%s'", s.instrument.OrderBookID),
		fmt.Sprintf("datetime: %s", s.Datetime().Format("2006-01-02 15:04:05")),
	}
	if s.bar == nil {
		parts = append(parts, fmt.Sprintf("error: '%s'", unavailableMarker))
		return fmt.Sprintf("Snapshot(%s) NaN SNAPSHOT", strings.Join(parts, ", "))
	}
	for _, f := range Fields(s.instrument) {
		if f.Name == FieldDatetime {
			continue
		}
		var v string
		if f.Kind == KindFloat64 {
			v = strconv.FormatFloat(s.bar.floatField(f.Name), 'g', -1, 64)
		} else {
			v = strconv.FormatUint(s.bar.uintField(f.Name), 10)
		}
		parts = append(parts, f.Name+": "+v)
	}
	return fmt.Sprintf("Snapshot(%s)", strings.Join(parts, ", "))
}

// ConvertIntToDatetime decodes YYYYMMDDHHMMSS, or YYYYMMDDHHMMSSmmm when the
// value carries a millisecond suffix. Values that do not name a real calendar
// time, such as month 13 or day 00, decode to MinDatetime.
func ConvertIntToDatetime(v uint64) time.Time {
	t, ok := parseDatetime(v)
	if !ok {
		return MinDatetime
	}
	return t
}

func parseDatetime(v uint64) (time.Time, bool) {
	var ms uint64
	if v > 99991231235959 {
		ms = v % 1000
		v /= 1000
	}
	year, r := v/10000000000, v%10000000000
	month, r := r/100000000, r%100000000
	day, r := r/1000000, r%1000000
	hour, r := r/10000, r%10000
	minute, second := r/100, r%100
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second),
		int(ms)*int(time.Millisecond), time.UTC)
	// time.Date normalizes overflowing days, e.g. Feb 30 into March.
	if t.Day() != int(day) {
		return time.Time{}, false
	}
	return t, true
}

// ConvertDatetimeToInt is the inverse of ConvertIntToDatetime at second precision.
func ConvertDatetimeToInt(t time.Time) uint64 {
	return uint64(t.Year())*10000000000 +
		uint64(t.Month())*100000000 +
		uint64(t.Day())*1000000 +
		uint64(t.Hour())*10000 +
		uint64(t.Minute())*100 +
		uint64(t.Second())
}

func (s Snapshot) floatField(name string) float64 {
	if s.bar == nil {
		return math.NaN()
	}
	return s.bar.floatField(name)
}

func (s Snapshot) uintField(name string) uint64 {
	if s.bar == nil {
		return 0
	}
	return s.bar.uintField(name)
}

func (b *Bar) floatField(name string) float64 {
	switch name {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldLast:
		return b.Last
	case FieldPrevClose:
		return b.PrevClose
	case FieldPrevSettlement:
		return b.PrevSettlement
	}
	return math.NaN()
}

func (b *Bar) setFloat(name string, v float64) {
	switch name {
	case FieldOpen:
		b.Open = v
	case FieldHigh:
		b.High = v
	case FieldLow:
		b.Low = v
	case FieldLast:
		b.Last = v
	case FieldPrevClose:
		b.PrevClose = v
	case FieldPrevSettlement:
		b.PrevSettlement = v
	}
}

func (b *Bar) uintField(name string) uint64 {
	switch name {
	case FieldDatetime:
		return b.Datetime
	case FieldVolume:
		return b.Volume
	case FieldTotalTurnover:
		return b.TotalTurnover
	case FieldOpenInterest:
		return b.OpenInterest
	}
	return 0
}

func (b *Bar) setUint(name string, v uint64) {
	switch name {
	case FieldDatetime:
		b.Datetime = v
	case FieldVolume:
		b.Volume = v
	case FieldTotalTurnover:
		b.TotalTurnover = v
	case FieldOpenInterest:
		b.OpenInterest = v
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// toUint accepts NaN as a placeholder and maps it to 0.
func toUint(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case uint32:
		return uint64(x), true
	case int:
		return uint64(x), x >= 0
	case int64:
		return uint64(x), x >= 0
	case float64:
		if math.IsNaN(x) {
			return 0, true
		}
		return uint64(x), x >= 0 && x == math.Trunc(x)
	}
	return 0, false
}
