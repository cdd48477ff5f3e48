package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstrumentType string

const (
	InstrumentTypeStock  InstrumentType = "CS"
	InstrumentTypeEtf    InstrumentType = "ETF"
	InstrumentTypeLof    InstrumentType = "LOF"
	InstrumentTypeIndex  InstrumentType = "INDX"
	InstrumentTypeFuture InstrumentType = "Future"
)

// Instrument is the static metadata of a tradable instrument.
type Instrument struct {
	OrderBookID        string
	Symbol             string
	Type               InstrumentType
	RoundLot           int64
	ContractMultiplier decimal.Decimal
	ListedDate         time.Time
	// DeListedDate is zero while the instrument is still listed.
	DeListedDate time.Time
}

// IsDerivative reports whether the instrument uses the extended market data schema.
func (i Instrument) IsDerivative() bool {
	return i.Type == InstrumentTypeFuture
}

func (i Instrument) HasDeListedDate() bool {
	return !i.DeListedDate.IsZero()
}
