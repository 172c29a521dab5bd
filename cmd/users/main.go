package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"microhub/internal/app"
	"microhub/internal/auth"
	"microhub/internal/config"
	"microhub/internal/users"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(config.ServiceUsers)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	tokens, err := a.Tokens()
	if err != nil {
		a.Log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := a.OpenStore(rootCtx, users.Migrations, users.MigrationsDir, users.MigrationsTable)
	if err != nil {
		a.Log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}

	svc := users.NewService(users.NewPostgresRepo(db), tokens, a.Config.Users.BcryptCost)
	users.Handler{
		Service:     svc,
		RequireAuth: auth.RequireBearer(auth.NewLocalVerifier(tokens)),
	}.Register(a.Router)

	if err := a.Run(rootCtx, svc.Ready); err != nil {
		a.Log.Error("http server failed", "err", err)
		os.Exit(1)
	}
	a.Log.Info("shutdown complete")
}
