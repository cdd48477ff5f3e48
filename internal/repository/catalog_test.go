package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/types"
)

const catalogYAML = `
instruments:
  - order_book_id: 000001.XSHE
    symbol: PAB
    round_lot: 100
    listed_date: 1991-04-03
  - order_book_id: IF1601
    symbol: IF1601
    type: Future
    round_lot: 1
    contract_multiplier: "300"
    de_listed_date: 2016-01-15
`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	stock, ok := catalog.Instrument("000001.XSHE")
	require.True(t, ok)
	assert.Equal(t, types.InstrumentTypeStock, stock.Type)
	assert.True(t, stock.ContractMultiplier.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, time.Date(1991, 4, 3, 0, 0, 0, 0, time.UTC), stock.ListedDate)
	assert.False(t, stock.HasDeListedDate())

	future, ok := catalog.Instrument("IF1601")
	require.True(t, ok)
	assert.True(t, future.IsDerivative())
	assert.True(t, future.ContractMultiplier.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, time.Date(2016, 1, 15, 0, 0, 0, 0, time.UTC), future.DeListedDate)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "instruments:\n  - symbol: X\n"},
		{"bad date", "instruments:\n  - order_book_id: A\n    listed_date: 03/04/1991\n"},
		{"bad multiplier", "instruments:\n  - order_book_id: A\n    contract_multiplier: ten\n"},
		{"duplicate", "instruments:\n  - order_book_id: A\n  - order_book_id: A\n"},
		{"not yaml", "instruments: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instruments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	catalog, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Len(t, catalog, 2)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
