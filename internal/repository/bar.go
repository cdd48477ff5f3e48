package repository

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"ledger/internal/snapshot"
	"ledger/types"
)

// GetSnapshots loads the bars of an instrument between start and end,
// both inclusive, as snapshots.
func (db *Database) GetSnapshots(ctx context.Context, inst types.Instrument, start, end time.Time) ([]snapshot.Snapshot, error) {
	rows, err := db.bars.GetBars(ctx, getBarsParams{
		OrderBookID: inst.OrderBookID,
		Starttime:   start,
		Endtime:     end,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(ErrNoSnapshots, "order book id %s", inst.OrderBookID)
		}
		return nil, errors.Wrapf(err, "get bars %s", inst.OrderBookID)
	}
	if len(rows) == 0 {
		return nil, errors.Wrapf(ErrNoSnapshots, "order book id %s", inst.OrderBookID)
	}
	return convertBars(inst, rows), nil
}

func convertBars(inst types.Instrument, rows []barRow) []snapshot.Snapshot {
	snaps := make([]snapshot.Snapshot, 0, len(rows))
	for _, row := range rows {
		bar := snapshot.Bar{
			Datetime:       snapshot.ConvertDatetimeToInt(row.Datetime.UTC()),
			Open:           orNaN(row.Open),
			High:           orNaN(row.High),
			Low:            orNaN(row.Low),
			Last:           orNaN(row.Last),
			PrevClose:      orNaN(row.PrevClose),
			PrevSettlement: orNaN(row.PrevSettlement),
			Volume:         nonNegative(row.Volume),
			TotalTurnover:  nonNegative(row.TotalTurnover),
			OpenInterest:   nonNegative(row.OpenInterest),
		}
		snaps = append(snaps, snapshot.New(inst, &bar))
	}
	return snaps
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func nonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
