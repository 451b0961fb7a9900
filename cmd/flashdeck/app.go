package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flashdeck/internal/config"
	"github.com/conorfennell/flashdeck/internal/logging"
	"github.com/conorfennell/flashdeck/internal/stats"
	"github.com/conorfennell/flashdeck/internal/storage"
	"github.com/conorfennell/flashdeck/internal/study"
)

// app bundles the configured dependencies shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	kv     storage.KV
	decks  *storage.Decks
	stats  *stats.Recorder
	close  func() error
}

// parseFlags parses args into fs and returns the remaining positional args.
func parseFlags(fs *pflag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

func newApp(ctx context.Context, fs *pflag.FlagSet) (*app, error) {
	cfg, err := config.Load(fs)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	a := &app{cfg: cfg, logger: logger, close: func() error { return nil }}
	switch cfg.Storage.Driver {
	case "memory":
		a.kv = storage.NewMemory()
	case "sqlite":
		db, err := storage.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.kv = db
		a.close = db.Close
		logger.Debug("database opened", "dsn", cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.SeedDemo {
		seeded, err := storage.SeedDemo(ctx, a.kv, time.Now())
		if err != nil {
			a.close()
			return nil, err
		}
		if seeded {
			logger.Info("seeded demo decks")
		}
	}

	a.decks = storage.NewDecks(a.kv)
	a.stats = stats.NewRecorder(a.kv, logger)
	return a, nil
}

func (a *app) studyOptions() []study.Option {
	return []study.Option{study.WithMaxLives(a.cfg.Study.MaxLives)}
}
