package snapshot

import "ledger/types"

type Kind int

const (
	KindUint32 Kind = iota
	KindUint64
	KindFloat64
)

// Size is the width of the kind in a packed record.
func (k Kind) Size() int {
	if k == KindUint32 {
		return 4
	}
	return 8
}

type Field struct {
	Name string
	Kind Kind
}

const (
	FieldDatetime       = "datetime"
	FieldOpen           = "open"
	FieldHigh           = "high"
	FieldLow            = "low"
	FieldLast           = "last"
	FieldVolume         = "volume"
	FieldTotalTurnover  = "total_turnover"
	FieldPrevClose      = "prev_close"
	FieldOpenInterest   = "open_interest"
	FieldPrevSettlement = "prev_settlement"
)

var stockFields = []Field{
	{FieldDatetime, KindUint64},
	{FieldOpen, KindFloat64},
	{FieldHigh, KindFloat64},
	{FieldLow, KindFloat64},
	{FieldLast, KindFloat64},
	{FieldVolume, KindUint32},
	{FieldTotalTurnover, KindUint64},
	{FieldPrevClose, KindFloat64},
}

var futureFields = append(append([]Field(nil), stockFields...),
	Field{FieldOpenInterest, KindUint32},
	Field{FieldPrevSettlement, KindFloat64},
)

// Fields returns the record schema used for the instrument.
func Fields(instrument types.Instrument) []Field {
	if instrument.IsDerivative() {
		return append([]Field(nil), futureFields...)
	}
	return append([]Field(nil), stockFields...)
}

// FieldNames returns the schema field names in record order.
func FieldNames(instrument types.Instrument) []string {
	fields := Fields(instrument)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// RecordSize is the byte width of a packed record for the instrument.
func RecordSize(instrument types.Instrument) int {
	size := 0
	for _, f := range Fields(instrument) {
		size += f.Kind.Size()
	}
	return size
}
