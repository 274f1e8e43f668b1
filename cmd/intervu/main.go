package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avoline/intervu/internal/adapters/media"
	"github.com/avoline/intervu/internal/adapters/rtc"
	"github.com/avoline/intervu/internal/adapters/token"
	"github.com/avoline/intervu/internal/app/session"
	"github.com/avoline/intervu/internal/config"
	"github.com/avoline/intervu/internal/core"
	"github.com/avoline/intervu/internal/domain"
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

	tokens := token.NewClient(cfg.Client.TokenURL)
	dialer := rtc.NewDialer(rtc.Config{
		STUNURLs:    cfg.Client.STUNURLs,
		DialTimeout: cfg.Client.DialTimeout,
	})
	capture := media.NewCapture(cfg.Client.MicPath)
	sinks := media.NewSinkFactory(media.DeviceWriter(cfg.Client.SpeakerPath))

	// The console is the operator's shell: state changes and failures are
	// printed as they are relayed.
	relay := session.NewRelay()
	relay.OnStateChange(func(s domain.SessionState) {
		log.Info().Str("module", "shell").Str("state", string(s)).Msg("session")
	})
	relay.OnError(func(err error) {
		log.Error().Err(err).Str("module", "shell").Msg("session error")
	})

	ctrl := session.NewController(
		ctx,
		tokens,
		dialer,
		session.NewPublisher(capture),
		session.NewSubscriber(sinks, relay),
		relay,
	)

	req := core.CredentialRequest{
		Room:     cfg.Client.Room,
		Identity: cfg.Client.Identity,
		Role:     cfg.Client.Role,
		JD:       cfg.Client.JD,
		Skills:   cfg.Client.Skills,
	}
	if err := ctrl.Connect(req); err != nil {
		log.Fatal().Err(err).Msg("connect rejected")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	ctrl.Close()
	log.Info().Msg("session closed")
}
