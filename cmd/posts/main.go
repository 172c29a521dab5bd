package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"microhub/internal/app"
	"microhub/internal/config"
	"microhub/internal/posts"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(config.ServicePosts)
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

	db, err := a.OpenStore(rootCtx, posts.Migrations, posts.MigrationsDir, posts.MigrationsTable)
	if err != nil {
		a.Log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}

	svc := posts.NewService(posts.NewPostgresRepo(db), a.ModerationGate(), a.Names())
	posts.Handler{
		Service:     svc,
		RequireAuth: requireAuth,
		Quota:       a.WriteQuota(rootCtx),
	}.Register(a.Router)

	if err := a.Run(rootCtx, svc.Ready); err != nil {
		a.Log.Error("http server failed", "err", err)
		os.Exit(1)
	}
	a.Log.Info("shutdown complete")
}
