package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/patil-aryan/lumos/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"LUMOS_RUNTIME_PATH" envDefault:".lumos"`

	// HTTP transport
	HTTPHost string `env:"LUMOS_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort int    `env:"LUMOS_HTTP_PORT" envDefault:"8000"`

	// Context management: how many persisted messages are fetched per
	// turn and how many of those end up in the augmented prompt.
	HistoryFetchLimit int `env:"LUMOS_HISTORY_FETCH_LIMIT" envDefault:"10"`
	ContextWindowSize int `env:"LUMOS_CONTEXT_WINDOW_SIZE" envDefault:"6"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "lumos.db")
}

func (c AppConfig) GetHTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func GetRuntimePath() string {
	path := os.Getenv("LUMOS_RUNTIME_PATH")
	if path == "" {
		path = ".lumos"
	}
	return path
}
