// Package config resolves runtime settings from defaults, an optional
// cadence.yaml file, CADENCE_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "CADENCE"

const (
	KeyDB           = "db"
	KeyLogLevel     = "log-level"
	KeyPreviewCount = "preview-count"
	KeyJSON         = "json"
)

type Config struct {
	DBPath       string
	LogLevel     string
	PreviewCount int
	JSON         bool
}

func Default() Config {
	return Config{
		DBPath:       "cadence.db",
		LogLevel:     "warn",
		PreviewCount: 5,
		JSON:         false,
	}
}

// NewViper returns a viper instance with defaults, environment lookup and
// the optional config file search path installed.
func NewViper() *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault(KeyDB, def.DBPath)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyPreviewCount, def.PreviewCount)
	v.SetDefault(KeyJSON, def.JSON)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("cadence")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/cadence")
	return v
}

// Load reads the optional config file and resolves every key. A missing
// file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := Config{
		DBPath:       strings.TrimSpace(v.GetString(KeyDB)),
		LogLevel:     strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		PreviewCount: v.GetInt(KeyPreviewCount),
		JSON:         v.GetBool(KeyJSON),
	}
	if cfg.DBPath == "" {
		return Config{}, errors.New("config: db path is required")
	}
	if cfg.PreviewCount <= 0 {
		cfg.PreviewCount = Default().PreviewCount
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}
