package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/config"
	"github.com/partyboard/partyboard/internal/debughttp"
	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/game"
	"github.com/partyboard/partyboard/internal/relay"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	session := game.New(game.Config{
		Relay: relay.Config{
			URL:         cfg.RelayURL,
			Room:        cfg.Room,
			MaxPlayers:  cfg.MaxPlayers,
			DisplayName: cfg.DisplayName,
		},
		Region:         cfg.Region,
		Avatar:         events.Avatar(cfg.Avatar),
		TickHz:         cfg.TickHz,
		PlayersToStart: cfg.MaxPlayers,
	}, log, relay.WebsocketDialer())

	go func() {
		log.Info("debug endpoints listening", zap.String("addr", cfg.DebugAddr))
		if err := http.ListenAndServe(cfg.DebugAddr, debughttp.SetupRoutes(session)); err != nil {
			log.Warn("debug server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("joining room",
		zap.String("relay", cfg.RelayURL),
		zap.String("room", cfg.Room),
		zap.String("name", cfg.DisplayName))
	if err := session.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("session ended", zap.Error(err))
	}
}
