package logging

import (
	"context"

	"go.uber.org/fx"

	"github.com/tech-arch1tect/archive-inspector/config"
)

var Module = fx.Options(
	fx.Provide(NewLoggerFromConfig),
	fx.Invoke(RegisterLoggerShutdown),
)

func NewLoggerFromConfig(cfg *config.Config) (*Logger, error) {
	return NewLogger(cfg.LogLevel)
}

func RegisterLoggerShutdown(lc fx.Lifecycle, logger *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// stdout cannot be fsynced on most platforms.
			_ = logger.Sync()
			return nil
		},
	})
}
