// Command server runs the stock trading demo backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantfold/stocktrader/internal/config"
	"github.com/quantfold/stocktrader/internal/database"
	"github.com/quantfold/stocktrader/internal/modules/ledger"
	"github.com/quantfold/stocktrader/internal/modules/market"
	"github.com/quantfold/stocktrader/internal/modules/session"
	"github.com/quantfold/stocktrader/internal/modules/settings"
	"github.com/quantfold/stocktrader/internal/server"
	"github.com/quantfold/stocktrader/internal/store"
	"github.com/quantfold/stocktrader/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	db, err := database.New(database.Config{Path: cfg.StorePath, Name: "store"})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	st := store.New(db.Conn())
	catalog := market.NewCatalog()

	srv := server.New(server.Config{
		Log:      log,
		DB:       db,
		Store:    st,
		Catalog:  catalog,
		Sessions: session.NewManager(st, log),
		Ledger:   ledger.NewService(catalog, st, log),
		Settings: settings.NewService(st, log),
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("Server error")
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
