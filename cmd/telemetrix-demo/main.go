// Package main implements the entry point for the telemetrix demo.
// The demo instruments a synthetic workload, runs the processing driver
// over it, and exposes the resulting snapshots over HTTP, Prometheus,
// and optionally NATS.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/telemetrix/config"
	"github.com/c360/telemetrix/driver"
	"github.com/c360/telemetrix/gateway"
	"github.com/c360/telemetrix/health"
	"github.com/c360/telemetrix/natsexport"
	"github.com/c360/telemetrix/promexport"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "telemetrix-demo"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting telemetrix demo",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	return runApp(cfg, logger, cliCfg.ShutdownTimeout)
}

// loadConfig reads the config file, or falls back to demo defaults that
// switch the HTTP surfaces on so a bare invocation shows something.
func loadConfig(cliCfg *CLIConfig) (*config.Config, error) {
	if cliCfg.ConfigPath != "" {
		return config.Load(cliCfg.ConfigPath)
	}

	slog.Info("No config file given, using demo defaults")
	cfg := config.Default()
	cfg.Gateway.Enabled = true
	cfg.Prometheus.Enabled = true
	return cfg, nil
}

func runApp(cfg *config.Config, logger *slog.Logger, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	monitor := health.NewMonitor()

	drv := driver.New(cfg.Driver.Name,
		driver.WithLogger(logger),
		driver.WithCycleInterval(cfg.Driver.CycleInterval.Std()),
		driver.WithSnapshotInterval(cfg.Driver.SnapshotInterval.Std()),
		driver.WithMaxPerCycle(cfg.Driver.MaxPerCycle),
		driver.WithDescriptiveSnapshots(cfg.Driver.Descriptive),
		driver.WithHealthMonitor(monitor),
	)

	load, err := buildWorkload(drv, logger)
	if err != nil {
		return fmt.Errorf("build workload: %w", err)
	}

	var metricsHandler http.Handler
	if cfg.Prometheus.Enabled {
		exporter, err := promexport.New(drv,
			promexport.WithNamespace(cfg.Prometheus.Namespace),
			promexport.WithLogger(logger),
			promexport.WithRuntimeMetrics(),
		)
		if err != nil {
			return fmt.Errorf("create exporter: %w", err)
		}
		metricsHandler = exporter.Handler()
		if !cfg.Gateway.Enabled {
			slog.Warn("Prometheus exporter enabled without gateway, metrics are not exposed")
		}
	}

	var publisher *natsexport.Publisher
	if cfg.NATS.Enabled {
		publisher, err = natsexport.New(cfg.NATS.URL, cfg.NATS.Subject,
			natsexport.WithName(cfg.NATS.Name),
			natsexport.WithLogger(logger),
			natsexport.WithHealthMonitor(monitor),
			natsexport.WithCredentials(cfg.NATS.Username, cfg.NATS.Password),
			natsexport.WithToken(cfg.NATS.Token),
			natsexport.WithMaxReconnects(cfg.NATS.MaxReconnects),
			natsexport.WithReconnectWait(cfg.NATS.ReconnectWait.Std()),
		)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		if err := publisher.Connect(signalCtx); err != nil {
			return fmt.Errorf("connect publisher: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = publisher.Close(ctx)
		}()
		if err := drv.AddReporter(publisher); err != nil {
			return fmt.Errorf("register publisher: %w", err)
		}
	}

	if err := drv.Start(signalCtx); err != nil {
		return fmt.Errorf("start driver: %w", err)
	}
	defer func() { _ = drv.Stop(shutdownTimeout) }()

	var gw *gateway.Server
	if cfg.Gateway.Enabled {
		gw, err = gateway.New(drv,
			gateway.WithAddress(cfg.Gateway.Address),
			gateway.WithLogger(logger),
			gateway.WithHealthMonitor(monitor),
			gateway.WithRateLimit(cfg.Gateway.RateLimit, cfg.Gateway.RateBurst),
			gateway.WithReadTimeout(cfg.Gateway.ReadTimeout.Std()),
			gateway.WithWriteTimeout(cfg.Gateway.WriteTimeout.Std()),
			gateway.WithPushInterval(cfg.Driver.SnapshotInterval.Std()),
			gateway.WithMetricsHandler(metricsHandler),
		)
		if err != nil {
			return fmt.Errorf("create gateway: %w", err)
		}
		if err := gw.Start(signalCtx); err != nil {
			return fmt.Errorf("start gateway: %w", err)
		}
		defer func() { _ = gw.Stop(shutdownTimeout) }()

		slog.Info("Demo running",
			"snapshot_url", "http://"+gw.Addr()+"/snapshot?pretty=1",
			"health_url", "http://"+gw.Addr()+"/healthz",
			"live_url", "ws://"+gw.Addr()+"/live")
	}

	load.start(signalCtx)

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	return shutdown(load, gw, drv, shutdownTimeout)
}

// shutdown stops components in dependency order and reports every
// failure instead of the first one.
func shutdown(load *workload, gw *gateway.Server, drv *driver.Driver, timeout time.Duration) error {
	load.stop()

	var errs []error
	if gw != nil {
		if err := gw.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("stop gateway: %w", err))
		}
	}
	if err := drv.Stop(timeout); err != nil {
		errs = append(errs, fmt.Errorf("stop driver: %w", err))
	}
	if len(errs) > 0 {
		return stderrors.Join(errs...)
	}

	slog.Info("Demo shutdown complete")
	return nil
}
