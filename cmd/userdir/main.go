package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/userdir/internal/buildinfo"
	"github.com/dmitrijs2005/userdir/internal/cli"
	"github.com/dmitrijs2005/userdir/internal/config"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/session"
	"github.com/dmitrijs2005/userdir/internal/storage"
	"github.com/dmitrijs2005/userdir/internal/userdir"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	slot, closeSlot, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSlot(); err != nil {
			logger.Error(ctx, "close storage", "error", err)
		}
	}()

	store, err := userdir.Open(ctx, slot,
		userdir.WithKey(cfg.DirectoryKey),
		userdir.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	sessions := session.NewManager(slot, cfg.SessionSecret, cfg.SessionTTL)

	app := cli.NewApp(store, sessions, logger, os.Stdin, os.Stdout, cfg.OperationTimeout)
	app.Run(ctx)
	return nil
}
