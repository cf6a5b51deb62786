package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/pushmesh/hub-sdk-go/config"
	"github.com/pushmesh/hub-sdk-go/emulator"
)

func main() {

	// init config and logger
	slog.Info("starting...")
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		slog.Error(fmt.Sprintf("failed to load the config: %s", err))
		os.Exit(1)
	}
	opts := slog.HandlerOptions{
		Level: slog.Level(cfg.Log.Level),
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &opts))

	log.Info(fmt.Sprintf("hub management emulator is listening on port %d", cfg.Api.Port))
	err = http.ListenAndServe(fmt.Sprintf(":%d", cfg.Api.Port), emulator.NewHandler(cfg.Api.Token, log))
	if err != nil {
		log.Error(fmt.Sprintf("emulator stopped: %s", err))
		os.Exit(1)
	}
}
