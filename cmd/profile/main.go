package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"microhub/internal/app"
	"microhub/internal/config"
	"microhub/internal/profile"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(config.ServiceProfile)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	requireAuth, err := a.RequireAuth()
	if err != nil {
		a.Log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	up := a.Config.Upstream
	profile.Handler{
		Aggregator: profile.NewAggregator(a.Upstream(), profile.Upstreams{
			UsersURL:    up.UsersURL,
			PostsURL:    up.PostsURL,
			LikesURL:    up.LikesURL,
			CommentsURL: up.CommentsURL,
		}),
		RequireAuth: requireAuth,
	}.Register(a.Router)

	if err := a.Run(rootCtx, nil); err != nil {
		a.Log.Error("http server failed", "err", err)
		os.Exit(1)
	}
	a.Log.Info("shutdown complete")
}
