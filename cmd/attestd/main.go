package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"revix/internal/config"
	"revix/internal/infra/db"
	httpinfra "revix/internal/infra/http"
	"revix/internal/infra/keys"
	"revix/internal/infra/logging"
	"revix/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "info").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signer, source, err := keys.Load(ctx, cfg)
	if err != nil {
		logger.Error("failed to load signing key", "key_source", source, "error", err)
		os.Exit(1)
	}
	signing, err := usecase.NewSigningContext(signer, cfg.SigningSemantics, cfg.SemanticsByKind)
	if err != nil {
		logger.Error("invalid signing semantics", "error", err)
		os.Exit(1)
	}
	logger.Info("signing key loaded", "key_source", source, "signer_address", signer.Address().Hex())

	store, err := db.NewStore(cfg, logger)
	if err != nil {
		logger.Error("failed to init store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := httpinfra.NewServer(ctx, cfg, store, signing, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited", "error", err)
		stop()
		_ = store.Close()
		os.Exit(1)
	}
}
