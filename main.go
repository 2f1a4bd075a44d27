package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tech-arch1tect/archive-inspector/config"
	"github.com/tech-arch1tect/archive-inspector/internal/archive"
	"github.com/tech-arch1tect/archive-inspector/internal/audit"
	"github.com/tech-arch1tect/archive-inspector/internal/auth"
	"github.com/tech-arch1tect/archive-inspector/internal/health"
	"github.com/tech-arch1tect/archive-inspector/internal/logging"
	"github.com/tech-arch1tect/archive-inspector/internal/upload"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "inspect" {
		os.Exit(runInspect(os.Args[2:]))
	}

	runServer()
}

func runServer() {
	fx.New(
		config.Module,
		logging.Module,
		audit.Module,
		archive.Module,
		upload.Module,
		fx.Provide(health.NewHandler),
		fx.Provide(NewEcho),
		fx.Invoke(RegisterRoutes),
		fx.Invoke(StartServer),
	).Run()
}

// runInspect inspects one archive on disk and prints the result as YAML.
func runInspect(args []string) int {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: archive-inspector inspect <archive.zip> [target]")
		return 2
	}

	target := ""
	if len(args) == 2 {
		target = args[1]
	}

	cfg := config.NewConfig()
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	result := archive.NewService(cfg, logger).Inspect(args[0], target)

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if !result.Success {
		return 1
	}
	return 0
}

func NewEcho(logger *logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(logging.RequestLoggingMiddleware(logger))
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *logging.Logger,
	healthHandler *health.Handler,
	uploadHandler *upload.Handler,
) {
	e.GET("/health", healthHandler.Health)

	api := e.Group("/api")
	api.Use(auth.TokenMiddleware(cfg.AccessToken, logger))

	api.GET("/health", healthHandler.Health)
	api.POST("/upload", uploadHandler.Upload)
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, service *archive.Service, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := service.EnsureScratchDir(); err != nil {
				return fmt.Errorf("failed to create scratch directory %s: %w", cfg.ScratchDir, err)
			}
			go func() {
				if err := e.Start(":" + cfg.Port); err != nil {
					logger.Info("server stopped", zap.Error(err))
				}
			}()
			logger.Info("server starting",
				zap.String("port", cfg.Port),
				zap.Int("max_upload_size_mb", cfg.MaxUploadSizeMB),
				zap.String("target_extension", cfg.TargetExtension),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
