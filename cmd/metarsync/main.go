package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/adapter/aviationweather"
	httpadapter "github.com/couchcryptid/metar-entity-sync/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/metar-entity-sync/internal/adapter/kafka"
	"github.com/couchcryptid/metar-entity-sync/internal/adapter/lattice"
	mqttadapter "github.com/couchcryptid/metar-entity-sync/internal/adapter/mqtt"
	"github.com/couchcryptid/metar-entity-sync/internal/config"
	"github.com/couchcryptid/metar-entity-sync/internal/observability"
	"github.com/couchcryptid/metar-entity-sync/internal/pipeline"
	"github.com/couchcryptid/metar-entity-sync/internal/stations"
)

const mqttConnectTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table, err := stations.Load(cfg.StationsFile)
	if err != nil {
		logger.Error("failed to load stations", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := aviationweather.NewClient(cfg.MetarAPIURL, cfg.MetarTimeout, metrics, logger)
	primary := lattice.NewClient(cfg.LatticeURL, cfg.EnvironmentToken, cfg.SandboxesToken, logger)

	var (
		mirrors []pipeline.Mirror
		closers []namedCloser
	)
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		mirrors = append(mirrors, pipeline.Mirror{Name: "kafka", Sink: writer})
		closers = append(closers, namedCloser{"kafka writer", writer})
		logger.Info("kafka mirror enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.MQTTEnabled {
		publisher := mqttadapter.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicPrefix, logger)
		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		if err := publisher.Connect(connectCtx); err != nil {
			// Reconnect keeps retrying in the background; publishes fail until it succeeds.
			logger.Warn("mqtt not connected at startup", "broker", cfg.MQTTBroker, "error", err)
		}
		cancel()
		mirrors = append(mirrors, pipeline.Mirror{Name: "mqtt", Sink: publisher})
		closers = append(closers, namedCloser{"mqtt publisher", publisher})
		logger.Info("mqtt mirror enabled", "broker", cfg.MQTTBroker, "topic_prefix", cfg.MQTTTopicPrefix)
	}

	var sink pipeline.EntitySink = primary
	if len(mirrors) > 0 {
		sink = pipeline.NewTeeSink(primary, logger, metrics, mirrors...)
	}

	p := pipeline.New(source, sink, table, pipeline.Options{
		Interval:       cfg.UpdateInterval,
		RecoveryWait:   cfg.RecoveryWait,
		EntityTTL:      cfg.EntityTTL,
		PublishTimeout: cfg.PublishTimeout,
		Concurrency:    cfg.PublishConcurrency,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start reconciliation loop.
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Let in-flight publishes finish before closing the sinks under them.
	select {
	case <-loopDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "component", c.name, "error", err)
		}
	}

	logger.Info("shutdown complete")
}

type namedCloser struct {
	name string
	io.Closer
}
