package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse_Yaml(t *testing.T) {
	path := writeConfig(t, `
starting_cash: "100000"
start_date: 2016-01-04
instruments_file: instruments.yaml
journal_file: journal.csv
positions_csv: positions.csv
risk_free_rate: "0.03"
log_level: debug
progress: true
`)
	cfg, err := Parse([]string{"-config", path})
	require.NoError(t, err)

	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, time.Date(2016, 1, 4, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, "instruments.yaml", cfg.InstrumentsFile)
	assert.Equal(t, "journal.csv", cfg.JournalFile)
	assert.Equal(t, "positions.csv", cfg.PositionsCSV)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.RiskFreeRate.Equal(decimal.RequireFromString("0.03")))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Progress)
}

func TestParse_Flags(t *testing.T) {
	cfg, err := Parse([]string{"-cash", "5000.5", "-start", "2020-03-02", "-journal", "j.csv", "-db", "postgresql://localhost/ledger"})
	require.NoError(t, err)

	assert.True(t, cfg.StartingCash.Equal(decimal.RequireFromString("5000.5")))
	assert.Equal(t, "postgresql://localhost/ledger", cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.RiskFreeRate.IsZero())
	assert.False(t, cfg.Progress)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative cash", []string{"-cash", "-1", "-start", "2016-01-04", "-journal", "j.csv"}},
		{"bad cash", []string{"-cash", "lots", "-start", "2016-01-04", "-journal", "j.csv"}},
		{"bad date", []string{"-cash", "1", "-start", "04.01.2016", "-journal", "j.csv"}},
		{"no journal", []string{"-cash", "1", "-start", "2016-01-04"}},
		{"bad log level", []string{"-cash", "1", "-start", "2016-01-04", "-journal", "j.csv", "-loglevel", "trace"}},
		{"bad risk free", []string{"-cash", "1", "-start", "2016-01-04", "-journal", "j.csv", "-riskfree", "x"}},
		{"unknown flag", []string{"-pair", "BTC_USDT"}},
		{"account flag", []string{"-cash", "1", "-start", "2016-01-04", "-journal", "j.csv", "-account", "stock"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Parse([]string{"-config", writeConfig(t, "starting_cash: [\n")})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Parse([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
