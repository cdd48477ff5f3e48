package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"ledger/types"
)

// GetInstrument retrieves the metadata of a single instrument.
func (db *Database) GetInstrument(ctx context.Context, orderBookID string) (types.Instrument, error) {
	row, err := db.instruments.GetInstrument(ctx, orderBookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Instrument{}, errors.Wrapf(ErrInstrumentNotFound, "order book id %s", orderBookID)
		}
		return types.Instrument{}, errors.Wrapf(err, "get instrument %s", orderBookID)
	}
	return convertInstrument(row), nil
}

// LoadCatalog reads every instrument into an in-memory Catalog.
func (db *Database) LoadCatalog(ctx context.Context) (Catalog, error) {
	rows, err := db.instruments.ListInstruments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list instruments")
	}
	catalog := make(Catalog, len(rows))
	for _, row := range rows {
		inst := convertInstrument(row)
		catalog[inst.OrderBookID] = inst
	}
	return catalog, nil
}

func convertInstrument(row instrumentRow) types.Instrument {
	return types.Instrument{
		OrderBookID:        row.OrderBookID,
		Symbol:             row.Symbol,
		Type:               types.InstrumentType(row.Type),
		RoundLot:           row.RoundLot,
		ContractMultiplier: row.ContractMultiplier,
		ListedDate:         derefTime(row.ListedDate),
		DeListedDate:       derefTime(row.DeListedDate),
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
