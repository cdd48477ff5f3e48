package config

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	StartingCash    decimal.Decimal
	StartDate       time.Time
	DatabaseURL     string
	InstrumentsFile string
	JournalFile     string
	PositionsCSV    string
	HistoryCSV      string
	RiskFreeRate    decimal.Decimal
	LogLevel        string
	Progress        bool
}

type ConfigTmp struct {
	StartingCash    string `yaml:"starting_cash"`
	StartDate       string `yaml:"start_date"`
	DatabaseURL     string `yaml:"database_url,omitempty"`
	InstrumentsFile string `yaml:"instruments_file,omitempty"`
	JournalFile     string `yaml:"journal_file"`
	PositionsCSV    string `yaml:"positions_csv,omitempty"`
	HistoryCSV      string `yaml:"history_csv,omitempty"`
	RiskFreeRate    string `yaml:"risk_free_rate,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
	Progress        bool   `yaml:"progress,omitempty"`
}

// Get reads the config from the yaml file given by -config, or from flags.
func Get() (Config, error) {
	return Parse(os.Args[1:])
}

func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config")
	var tmp ConfigTmp
	fs.StringVar(&tmp.StartingCash, "cash", "", "starting cash, example: 100000")
	fs.StringVar(&tmp.StartDate, "start", "", "first trading day, example: 2016-01-04")
	fs.StringVar(&tmp.DatabaseURL, "db", "", "postgres url of the instrument database")
	fs.StringVar(&tmp.InstrumentsFile, "instruments", "", "path to yaml instrument catalog")
	fs.StringVar(&tmp.JournalFile, "journal", "", "path to csv event journal")
	fs.StringVar(&tmp.PositionsCSV, "positions", "", "write final positions to this csv file")
	fs.StringVar(&tmp.HistoryCSV, "history", "", "write daily history to this csv file")
	fs.StringVar(&tmp.RiskFreeRate, "riskfree", "0", "annual risk free rate used for the sharpe ratio")
	fs.StringVar(&tmp.LogLevel, "loglevel", "info", "debug, info, warn or error")
	fs.BoolVar(&tmp.Progress, "progress", false, "show replay progress")
	if err := fs.Parse(args); err != nil {
		return Config{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	if *path != "" {
		return getYaml(*path)
	}
	return tmp.toConfig()
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "parse yaml: %v", err)
	}
	return tmp.toConfig()
}

func (c ConfigTmp) toConfig() (Config, error) {
	cash, err := decimal.NewFromString(c.StartingCash)
	if err != nil || cash.IsNegative() {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "incorrect 'starting_cash' %q, must be a non-negative decimal", c.StartingCash)
	}
	start, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "incorrect 'start_date' %q, correct format is 2016-01-04", c.StartDate)
	}

	riskFree := decimal.Zero
	if c.RiskFreeRate != "" {
		if riskFree, err = decimal.NewFromString(c.RiskFreeRate); err != nil {
			return Config{}, errors.Wrapf(ErrInvalidConfig, "incorrect 'risk_free_rate' %q", c.RiskFreeRate)
		}
	}

	if c.JournalFile == "" {
		return Config{}, errors.Wrap(ErrInvalidConfig, "'journal_file' is required")
	}

	logLevel := c.LogLevel
	switch logLevel {
	case "":
		logLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return Config{}, errors.Wrapf(ErrInvalidConfig, "unknown 'log_level' %q", c.LogLevel)
	}

	return Config{
		StartingCash:    cash,
		StartDate:       start,
		DatabaseURL:     c.DatabaseURL,
		InstrumentsFile: c.InstrumentsFile,
		JournalFile:     c.JournalFile,
		PositionsCSV:    c.PositionsCSV,
		HistoryCSV:      c.HistoryCSV,
		RiskFreeRate:    riskFree,
		LogLevel:        logLevel,
		Progress:        c.Progress,
	}, nil
}
