package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Service names. Each binary validates only what it needs.
const (
	ServiceUsers      = "users"
	ServicePosts      = "posts"
	ServiceComments   = "comments"
	ServiceLikes      = "likes"
	ServiceModeration = "moderation"
	ServiceProfile    = "profile"
)

// Verifier modes for the Authorization Gate.
const (
	VerifierLocal  = "local"
	VerifierRemote = "remote"
)

// Config holds all configuration required by a service process.
// All values come from env (optionally seeded from a .env file).
// No business logic should depend on raw environment variables.
type Config struct {
	App       AppConfig       `envconfig:"APP"`
	Database  DatabaseConfig  `envconfig:"DATABASE"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	JWT       JWTConfig       `envconfig:"JWT"`
	Upstream  UpstreamConfig  `envconfig:"UPSTREAM"`
	OpenAI    OpenAIConfig    `envconfig:"OPENAI"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Users     UsersConfig     `envconfig:"USERS"`
	Log       LogConfig       `envconfig:"LOG"`
}

type AppConfig struct {
	Env  string `envconfig:"ENV" default:"local"`
	Port int    `envconfig:"PORT" default:"8080"`

	// CORSAllowedOrigin empty means "reflect the request origin".
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN"`
}

type DatabaseConfig struct {
	// URL is a postgres:// URL; it is used both by the pgx driver and by migrations.
	URL          string `envconfig:"URL"`
	MaxOpenConns int    `envconfig:"MAX_OPEN_CONNS" default:"25"`
}

type RedisConfig struct {
	// Addr is optional; without it rate limiting stays in-process.
	Addr string `envconfig:"ADDR"`
}

type JWTConfig struct {
	Secret    string        `envconfig:"SECRET"`
	Issuer    string        `envconfig:"ISSUER"`
	Audience  string        `envconfig:"AUDIENCE"`
	ExpiresIn time.Duration `envconfig:"EXPIRES_IN" default:"24h"`

	// Verifier selects how bearer tokens are checked: local or remote.
	Verifier string `envconfig:"VERIFIER" default:"remote"`
}

type UpstreamConfig struct {
	UsersURL      string `envconfig:"USERS_URL"`
	PostsURL      string `envconfig:"POSTS_URL"`
	LikesURL      string `envconfig:"LIKES_URL"`
	CommentsURL   string `envconfig:"COMMENTS_URL"`
	ModerationURL string `envconfig:"MODERATION_URL"`

	ModerationTimeout time.Duration `envconfig:"MODERATION_TIMEOUT" default:"5s"`
}

type OpenAIConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL" default:"https://api.openai.com/v1"`
	Model   string `envconfig:"MODERATION_MODEL"`
}

type RateLimitConfig struct {
	WritesPerMinute int `envconfig:"WRITES_PER_MINUTE" default:"30"`
}

type UsersConfig struct {
	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`
}

type LogConfig struct {
	File string `envconfig:"FILE"`
}

// Load reads configuration for the named service and validates it.
func Load(service string) (Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(service); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the settings the named service depends on and reports all problems at once.
func (c Config) Validate(service string) error {
	var errs []error

	if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, test, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	switch service {
	case ServiceUsers:
		errs = append(errs, c.requireDatabase()...)
		if c.JWT.Secret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required"))
		}
		if c.JWT.ExpiresIn <= 0 {
			errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
		}
		if c.Users.BcryptCost < 4 || c.Users.BcryptCost > 31 {
			errs = append(errs, fmt.Errorf("USERS_BCRYPT_COST must be between 4 and 31, got %d", c.Users.BcryptCost))
		}
	case ServicePosts, ServiceComments, ServiceLikes:
		errs = append(errs, c.requireDatabase()...)
		errs = append(errs, c.requireVerifier()...)
		if c.RateLimit.WritesPerMinute < 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WRITES_PER_MINUTE must not be negative"))
		}
	case ServiceProfile:
		errs = append(errs, c.requireVerifier()...)
		for _, u := range []struct{ key, val string }{
			{"UPSTREAM_USERS_URL", c.Upstream.UsersURL},
			{"UPSTREAM_POSTS_URL", c.Upstream.PostsURL},
			{"UPSTREAM_LIKES_URL", c.Upstream.LikesURL},
			{"UPSTREAM_COMMENTS_URL", c.Upstream.CommentsURL},
		} {
			if u.val == "" {
				errs = append(errs, fmt.Errorf("%s is required", u.key))
			}
		}
	case ServiceModeration:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required"))
		}
		if c.OpenAI.BaseURL == "" {
			errs = append(errs, errors.New("OPENAI_BASE_URL is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown service %q", service))
	}

	if c.IsProduction() && c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes in production"))
	}

	return joinErrors(errs)
}

func (c Config) requireDatabase() []error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return []error{errors.New("DATABASE_URL is required")}
	}
	return nil
}

func (c Config) requireVerifier() []error {
	switch c.JWT.Verifier {
	case VerifierLocal:
		if c.JWT.Secret == "" {
			return []error{errors.New("JWT_SECRET is required when JWT_VERIFIER=local")}
		}
	case VerifierRemote:
		if c.Upstream.UsersURL == "" {
			return []error{errors.New("UPSTREAM_USERS_URL is required when JWT_VERIFIER=remote")}
		}
	default:
		return []error{fmt.Errorf("JWT_VERIFIER must be local or remote, got %q", c.JWT.Verifier)}
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "test", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
