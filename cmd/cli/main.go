package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/noteskeeper/internal/buildinfo"
	"github.com/dmitrijs2005/noteskeeper/internal/client/cli"
	"github.com/dmitrijs2005/noteskeeper/internal/client/config"
	"github.com/dmitrijs2005/noteskeeper/internal/logging"
)

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", "error", err)
		memguard.SafeExit(1)
	}
	defer app.Close()

	app.Run(ctx)
}
