package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/useinsider/go-pkg/inslogger"
)

type App struct {
	Config
	WebhookConfig
}

type Config struct {
	Info     AppInfo
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
}

type AppInfo struct {
	Name    string `env:"APP_NAME, default=WhatsApp Webhook Service"`
	Version string `env:"APP_VERSION, default=1.0.0"`
	Debug   bool   `env:"DEBUG, default=false"`
}

type ServerConfig struct {
	Host            string        `env:"HOST, default=0.0.0.0"`
	Port            int           `env:"PORT, default=8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
}

type DatabaseConfig struct {
	URL string `env:"DATABASE_URL, default=sqlite:///./data/messages.db"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL, default=INFO"`
}

type WebhookConfig struct {
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

// Address is the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (w WebhookConfig) WebhookSecretConfigured() bool {
	return w.WebhookSecret != ""
}

// Load reads an optional .env file and decodes the process environment.
func Load(ctx context.Context) (*App, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*App, error) {
	var app App
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &app,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process environment variables: %w", err)
	}

	if app.Server.Port <= 0 || app.Server.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", app.Server.Port)
	}
	if strings.TrimSpace(app.Database.URL) == "" {
		return nil, fmt.Errorf("DATABASE_URL must not be empty")
	}

	return &app, nil
}

// NewLogger builds the process logger for LOG_LEVEL. Unknown levels fall back
// to INFO.
func (l LogConfig) NewLogger() inslogger.Interface {
	switch strings.ToUpper(strings.TrimSpace(l.Level)) {
	case "DEBUG":
		return inslogger.NewLogger(inslogger.Debug)
	case "WARN", "WARNING":
		return inslogger.NewLogger(inslogger.Warn)
	case "ERROR", "CRITICAL":
		return inslogger.NewLogger(inslogger.Error)
	}
	return inslogger.NewLogger(inslogger.Info)
}
