// Command tx-guard replays a CSV stream of client transactions (deposits,
// withdrawals, disputes, resolves, chargebacks) and prints the final balance
// and lock status of every account.
//
// Usage:
//
//	tx-guard transactions.csv
//	tx-guard --config txguard.yaml
//	tx-guard --setup (interactive configuration wizard)
//
// Account rows are written to stdout, logs go to stderr.
package main

import (
	"log"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rafalpiotrowski/tx-guard/config"
	"github.com/rafalpiotrowski/tx-guard/internal/entity"
	"github.com/rafalpiotrowski/tx-guard/internal/ingest"
	"github.com/rafalpiotrowski/tx-guard/internal/journal"
	"github.com/rafalpiotrowski/tx-guard/internal/report"
	"github.com/rafalpiotrowski/tx-guard/internal/services/engine"
	"github.com/rafalpiotrowski/tx-guard/internal/setup"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Setup {
		if err := setup.RunWizard(); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	f, err := os.Open(cfg.Input)
	if err != nil {
		logger.Fatal("failed to open input file", zap.String("file", cfg.Input), zap.Error(err))
	}
	defer f.Close()

	var jrnl engine.Journal
	if cfg.JournalDir != "" {
		j, err := journal.New(cfg.JournalDir)
		if err != nil {
			logger.Fatal("failed to open audit journal", zap.String("dir", cfg.JournalDir), zap.Error(err))
		}
		defer j.Close()
		jrnl = j
	}

	reader := ingest.NewReader(cfg.OnMalformed, logger)
	dispatcher := engine.NewDispatcher(cfg.Buffer, jrnl, logger)

	stream := make(chan entity.Transaction, cfg.Buffer)

	g := new(errgroup.Group)
	g.Go(func() error {
		return reader.Read(f, stream)
	})

	accounts := dispatcher.Run(stream)

	if err := g.Wait(); err != nil {
		logger.Fatal("failed to read input", zap.Error(err))
	}

	if err := report.Write(os.Stdout, accounts); err != nil {
		logger.Fatal("failed to write report", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
