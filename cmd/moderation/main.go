package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"microhub/internal/app"
	"microhub/internal/config"
	"microhub/internal/moderation"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(config.ServiceModeration)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	provider := moderation.NewOpenAI(moderation.OpenAIConfig{
		APIKey:  a.Config.OpenAI.APIKey,
		BaseURL: a.Config.OpenAI.BaseURL,
		Model:   a.Config.OpenAI.Model,
	})
	moderation.Handler{Service: moderation.NewService(provider)}.Register(a.Router)

	// Config validation already requires the API key; nothing else to probe.
	if err := a.Run(rootCtx, nil); err != nil {
		a.Log.Error("http server failed", "err", err)
		os.Exit(1)
	}
	a.Log.Info("shutdown complete")
}
