package repository

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ledger/types"
)

// Catalog is an in-memory instrument lookup keyed by order book id.
type Catalog map[string]types.Instrument

func (c Catalog) Instrument(orderBookID string) (types.Instrument, bool) {
	inst, ok := c[orderBookID]
	return inst, ok
}

type catalogFile struct {
	Instruments []storedInstrument `yaml:"instruments"`
}

// storedInstrument is the YAML form of an instrument. Dates are YYYY-MM-DD.
type storedInstrument struct {
	OrderBookID        string `yaml:"order_book_id"`
	Symbol             string `yaml:"symbol"`
	Type               string `yaml:"type"`
	RoundLot           int64  `yaml:"round_lot"`
	ContractMultiplier string `yaml:"contract_multiplier"`
	ListedDate         string `yaml:"listed_date"`
	DeListedDate       string `yaml:"de_listed_date"`
}

// LoadCatalogFile reads a YAML instrument catalog.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog file")
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	catalog := make(Catalog, len(file.Instruments))
	for _, stored := range file.Instruments {
		inst, err := stored.toInstrument()
		if err != nil {
			return nil, errors.Wrapf(err, "instrument %q", stored.OrderBookID)
		}
		if _, dup := catalog[inst.OrderBookID]; dup {
			return nil, errors.Errorf("duplicate instrument %q", inst.OrderBookID)
		}
		catalog[inst.OrderBookID] = inst
	}
	return catalog, nil
}

func (s storedInstrument) toInstrument() (types.Instrument, error) {
	if s.OrderBookID == "" {
		return types.Instrument{}, errors.New("order_book_id is required")
	}
	inst := types.Instrument{
		OrderBookID:        s.OrderBookID,
		Symbol:             s.Symbol,
		Type:               types.InstrumentType(s.Type),
		RoundLot:           s.RoundLot,
		ContractMultiplier: decimal.NewFromInt(1),
	}
	if inst.Type == "" {
		inst.Type = types.InstrumentTypeStock
	}
	if s.ContractMultiplier != "" {
		m, err := decimal.NewFromString(s.ContractMultiplier)
		if err != nil {
			return types.Instrument{}, errors.Wrap(err, "contract_multiplier")
		}
		inst.ContractMultiplier = m
	}
	var err error
	if inst.ListedDate, err = parseDate(s.ListedDate); err != nil {
		return types.Instrument{}, errors.Wrap(err, "listed_date")
	}
	if inst.DeListedDate, err = parseDate(s.DeListedDate); err != nil {
		return types.Instrument{}, errors.Wrap(err, "de_listed_date")
	}
	return inst, nil
}

// parseDate treats an empty value as no date.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
