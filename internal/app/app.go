// Package app wires the process-level plumbing every service binary shares:
// config, logging, the gin engine, storage, the Authorization Gate and serving.
package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"microhub/internal/auth"
	"microhub/internal/config"
	"microhub/internal/httpapi"
	"microhub/internal/identity"
	"microhub/internal/metrics"
	"microhub/internal/moderation"
	"microhub/internal/ratelimit"
	"microhub/pkg/logger"
	"microhub/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// upstreamTimeout bounds calls to sibling services other than moderation.
const upstreamTimeout = 10 * time.Second

// App is one running service process.
type App struct {
	Name    string
	Config  config.Config
	Log     *slog.Logger
	Router  *gin.Engine
	Metrics *metrics.Collector

	registry *prometheus.Registry
	upstream *http.Client
	closers  []io.Closer
}

// New loads configuration for service and builds the router with the common
// middleware chain installed.
func New(service string) (*App, error) {
	cfg, err := config.Load(service)
	if err != nil {
		return nil, err
	}

	name := "microhub-" + service
	log, logCloser := logger.New(logger.Options{Env: cfg.App.Env, Service: name, File: cfg.Log.File})
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := metrics.NewRegistry()
	m := metrics.NewCollector(reg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log, "/health", "/ready", "/metrics"))
	r.Use(httpapi.CORS(cfg.App.CORSAllowedOrigin))
	r.Use(m.Middleware())

	return &App{
		Name:     name,
		Config:   cfg,
		Log:      log,
		Router:   r,
		Metrics:  m,
		registry: reg,
		upstream: &http.Client{Timeout: upstreamTimeout},
		closers:  []io.Closer{logCloser},
	}, nil
}

// OpenStore opens Postgres and applies the service's embedded migrations.
func (a *App) OpenStore(ctx context.Context, migrations fs.FS, dir, table string) (*sql.DB, error) {
	if err := utils.RunMigrations(migrations, dir, a.Config.Database.URL, table); err != nil {
		return nil, err
	}
	db, err := utils.OpenPostgres(ctx, a.Config.Database.URL, utils.PostgresPoolConfig{
		MaxOpenConns: a.Config.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db)
	return db, nil
}

// Tokens builds the JWT manager, or nil when no secret is configured.
func (a *App) Tokens() (*auth.Manager, error) {
	if a.Config.JWT.Secret == "" {
		return nil, nil
	}
	return auth.NewManager(auth.ManagerConfig{
		Secret:   a.Config.JWT.Secret,
		Issuer:   a.Config.JWT.Issuer,
		Audience: a.Config.JWT.Audience,
		TTL:      a.Config.JWT.ExpiresIn,
	})
}

// RequireAuth returns the Authorization Gate middleware for the configured
// verifier mode.
func (a *App) RequireAuth() (gin.HandlerFunc, error) {
	m, err := a.Tokens()
	if err != nil {
		return nil, err
	}
	v, err := auth.NewVerifier(a.Config.JWT.Verifier, m, a.upstream, a.Config.Upstream.UsersURL)
	if err != nil {
		return nil, err
	}
	return auth.RequireBearer(v), nil
}

// WriteQuota returns the per-user write limiter middleware. Redis is used when
// REDIS_ADDR is set and reachable; otherwise limits are kept in-process.
func (a *App) WriteQuota(ctx context.Context) gin.HandlerFunc {
	perMinute := a.Config.RateLimit.WritesPerMinute
	if perMinute == 0 {
		a.Log.Info("write rate limiting disabled")
		return ratelimit.RequireQuota(nil, a.Metrics)
	}

	var l ratelimit.Limiter = ratelimit.NewMemoryLimiter(perMinute, time.Minute)
	if addr := a.Config.Redis.Addr; addr != "" {
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: addr})
		if err != nil {
			a.Log.Warn("redis unavailable, using in-process rate limiter", "err", err)
		} else {
			a.closers = append(a.closers, rdb)
			l = ratelimit.NewRedisLimiter(rdb, "ratelimit:"+a.Name+":", perMinute, time.Minute)
		}
	}
	return ratelimit.RequireQuota(l, a.Metrics)
}

// ModerationGate points the gate at the moderation engine. Without
// UPSTREAM_MODERATION_URL every write is published unchecked.
func (a *App) ModerationGate() *moderation.Gate {
	u := a.Config.Upstream.ModerationURL
	if u == "" {
		a.Log.Warn("UPSTREAM_MODERATION_URL not set, content moderation disabled")
		return moderation.NewGate(nil, a.Metrics)
	}
	c := moderation.NewClient(moderation.ClientConfig{
		BaseURL: u,
		Timeout: a.Config.Upstream.ModerationTimeout,
	})
	return moderation.NewGate(c, a.Metrics)
}

// Names resolves author display names through the users service.
func (a *App) Names() identity.Resolver {
	if a.Config.Upstream.UsersURL == "" {
		return identity.Static{}
	}
	return identity.NewClient(a.upstream, a.Config.Upstream.UsersURL)
}

// Upstream is the HTTP client for calls to sibling services.
func (a *App) Upstream() *http.Client {
	return a.upstream
}

// Run mounts the operational endpoints and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context, ready httpapi.ReadyFunc) error {
	httpapi.RegisterOps(a.Router, a.Name, ready, metrics.Handler(a.registry))
	a.Log.Info("service starting", "addr", a.Config.HTTPAddr(), "env", a.Config.App.Env)
	return httpapi.Serve(ctx, a.Log, a.Config.HTTPAddr(), a.Router)
}

// Close releases everything opened by the App in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
