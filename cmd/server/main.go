package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/wekolo/justified-grid/internal/application"
	"github.com/wekolo/justified-grid/internal/config"
	"github.com/wekolo/justified-grid/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("justified-grid", "Justified Grid - computes justified photo-gallery layouts from image aspect ratios")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	availableWidthFlag := kingpinApp.Flag("available-width", "Default container width for layouts").Default("-1").Float64()
	minLineHeightFlag := kingpinApp.Flag("min-line-height", "Default minimum row height").Default("-1").Float64()
	maxLineHeightFlag := kingpinApp.Flag("max-line-height", "Default maximum row height").Default("-1").Float64()
	minItemWidthFlag := kingpinApp.Flag("min-item-width", "Default minimum rendered item width").Default("-1").Float64()
	gapFlag := kingpinApp.Flag("gap", "Default spacing between adjacent items in a row").Default("-1").Float64()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	debugFlag := kingpinApp.Flag("debug", "Enable debug-level console logging").Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *availableWidthFlag >= 0 {
		overrides.AvailableWidth = availableWidthFlag
	}

	if *minLineHeightFlag >= 0 {
		overrides.MinLineHeight = minLineHeightFlag
	}

	if *maxLineHeightFlag >= 0 {
		overrides.MaxLineHeight = maxLineHeightFlag
	}

	if *minItemWidthFlag >= 0 {
		overrides.MinItemWidth = minItemWidthFlag
	}

	if *gapFlag >= 0 {
		overrides.Gap = gapFlag
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(*debugFlag)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
