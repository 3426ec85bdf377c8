package middleware

import (
	"log/slog"

	"authcore/config"

	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
)

// NewAccessLogger returns the access-log middleware. Probe and scrape paths are skipped,
// and request bodies are never logged since they carry passwords.
func NewAccessLogger(logger *slog.Logger, cfg *config.Config) echo.MiddlewareFunc {
	ignored := []string{"/health"}
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		ignored = append(ignored, cfg.Metrics.Path)
	}

	// Outside debug mode successful requests only show at debug level.
	defaultLevel := slog.LevelInfo
	if !cfg.Env.Debug {
		defaultLevel = slog.LevelDebug
	}

	return slogecho.NewWithConfig(logger, slogecho.Config{
		DefaultLevel:     defaultLevel,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithUserAgent:    true,
		WithRequestID:    true,
		WithRequestBody:  false,
		WithResponseBody: false,
		Filters: []slogecho.Filter{
			slogecho.IgnorePath(ignored...),
		},
	})
}
