package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/orderfacts/internal/config"
	"github.com/gosuda/orderfacts/internal/metrics"
	"github.com/gosuda/orderfacts/internal/orderfacts"
	"github.com/gosuda/orderfacts/internal/server"
	"github.com/gosuda/orderfacts/internal/source"
	"github.com/gosuda/orderfacts/internal/store/postgres"
	redisstore "github.com/gosuda/orderfacts/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	log.Logger = newLogger(os.Stdout, "json")

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(cfg.Log.Level)
	log.Logger = newLogger(os.Stdout, cfg.Log.Format)

	if cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	settings := source.Settings{
		Attempts:         uint(cfg.Sources.Attempts),           //nolint:gosec // validated >= 1
		FailureThreshold: uint32(cfg.Sources.FailureThreshold), //nolint:gosec // validated >= 1
		OpenTimeout:      cfg.Sources.OpenTimeout,
	}

	ready := map[string]server.ReadinessCheck{
		"postgres": store.Ping,
	}
	opts := []orderfacts.Option{orderfacts.WithMetrics(m)}

	// Device correlation is optional; without Redis warnings carry no device.
	if cfg.Redis.Addr != "" {
		devices, devErr := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.DeviceMapKey)
		if devErr != nil {
			return devErr
		}
		defer devices.Close()

		ready["redis"] = devices.Ping
		opts = append(opts, orderfacts.WithDeviceResolver(source.WrapDevices(devices, settings)))
	} else {
		log.Info().Msg("ORDERFACTS_REDIS_ADDR not set; device correlation disabled")
	}

	svc := orderfacts.NewService(source.Wrap(store, settings), opts...)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, svc, reg, ready)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func newLogger(w io.Writer, format string) zerolog.Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).With().Timestamp().Str("service", "orderfacts").Logger()
}
