package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/config"
	"github.com/avoline/intervu/internal/tokend"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Tokend.APIKey == "" || cfg.Tokend.APISecret == "" {
		log.Fatal().Msg("tokend.api_key and tokend.api_secret must be set")
	}

	issuer := tokend.NewIssuer(cfg.Tokend.APIKey, cfg.Tokend.APISecret, cfg.Tokend.TokenTTL)
	handler := tokend.NewHandler(issuer, cfg.Tokend.URL)
	r := tokend.SetupRouter(cfg.Mode, cfg.Tokend.AllowedOrigin, handler)

	addr := fmt.Sprintf(":%d", cfg.Tokend.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("token service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}
