package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ledger/config"
	"ledger/internal/journal"
	"ledger/internal/portfolio"
	"ledger/internal/report"
	"ledger/internal/repository"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("failed to get configuration", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("replay failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	opts := []journal.Option{journal.WithLogger(logger)}
	if cfg.Progress {
		opts = append(opts, journal.WithProgress(os.Stderr))
	}

	var catalog repository.Catalog
	switch {
	case cfg.DatabaseURL != "":
		db, err := repository.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "open instrument database")
		}
		defer db.Close()
		if catalog, err = db.LoadCatalog(ctx); err != nil {
			return err
		}
		logger.Info("instruments loaded from database", zap.Int("instruments", len(catalog)))
		opts = append(opts, journal.WithPriceSource(db))
	case cfg.InstrumentsFile != "":
		var err error
		if catalog, err = repository.LoadCatalogFile(cfg.InstrumentsFile); err != nil {
			return err
		}
		logger.Info("instruments loaded from file", zap.Int("instruments", len(catalog)))
	default:
		logger.Warn("no instrument source configured, delisting dates are unknown")
		catalog = repository.Catalog{}
	}

	events, err := journal.ReadFile(cfg.JournalFile)
	if err != nil {
		return err
	}

	account, err := portfolio.NewStock(cfg.StartingCash, cfg.StartDate, catalog, logger)
	if err != nil {
		return err
	}

	history, err := journal.NewReplayer(account, catalog, opts...).Replay(ctx, events)
	if err != nil {
		return err
	}

	report.Print(os.Stdout, report.Summarize(history, cfg.RiskFreeRate))

	if cfg.PositionsCSV != "" {
		if err := report.WritePositionsCSVFile(cfg.PositionsCSV, history[len(history)-1]); err != nil {
			return err
		}
		logger.Info("positions written", zap.String("path", cfg.PositionsCSV))
	}
	if cfg.HistoryCSV != "" {
		if err := report.WriteHistoryCSVFile(cfg.HistoryCSV, history); err != nil {
			return err
		}
		logger.Info("history written", zap.String("path", cfg.HistoryCSV))
	}
	return nil
}
