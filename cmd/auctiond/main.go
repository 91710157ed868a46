package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jerom68/Auction/internal/auction"
	"github.com/jerom68/Auction/internal/config"
	"github.com/jerom68/Auction/internal/event"
	"github.com/jerom68/Auction/internal/ingestion"
	"github.com/jerom68/Auction/internal/observability"
	"github.com/jerom68/Auction/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger("auctiond")
	log.Info().Msg("auctiond starting")

	policy, ok := auction.ParseTimerPolicy(cfg.TimerPolicy)
	if !ok {
		log.Fatal().Str("policy", cfg.TimerPolicy).Msg("unknown timer policy")
	}

	// --- Context with graceful shutdown ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// --- Observability ---
	metrics := observability.NewMetrics()
	healthChecker := observability.NewHealthChecker()

	// --- Notification sinks ---
	// The log sink is the audit trail; the channel sink feeds the NATS
	// publisher and drops on overflow rather than stalling the engine.
	channelSink := event.NewChannelSink(cfg.EventBuffer, func() {
		metrics.NotifyDrops.Inc()
	})
	sinks := event.Sinks{
		event.NewLogSink(observability.NewLogger("audit")),
		channelSink,
	}

	// --- Engine ---
	engine := auction.NewEngine(
		auction.Config{Policy: policy, Countdown: cfg.Countdown},
		clock.NewClock(),
		sinks,
		observability.NewLogger("engine"),
		metrics,
	)

	// --- NATS ---
	nc, js, err := ingestion.ConnectNATS(cfg.NATSURL, observability.NewLogger("nats"))
	if err != nil {
		log.Fatal().Err(err).Msg("nats connect")
	}
	defer nc.Close()
	log.Info().Str("url", cfg.NATSURL).Msg("NATS connected")

	if err := ingestion.EnsureCommandStream(ctx, js); err != nil {
		log.Fatal().Err(err).Msg("ensure command stream")
	}
	if err := ingestion.EnsureEventStream(ctx, js); err != nil {
		log.Fatal().Err(err).Msg("ensure event stream")
	}

	// --- Command channel from NATS to engine ---
	rawChan := make(chan ingestion.RawCommand, cfg.CommandBuffer)
	subscriber := ingestion.NewCommandSubscriber(js, rawChan, observability.NewLogger("subscriber"))
	if err := subscriber.Subscribe(ctx, ingestion.DefaultSubjects()); err != nil {
		log.Fatal().Err(err).Msg("nats subscribe")
	}

	// --- Outbound publisher ---
	publisher := ingestion.NewNotificationPublisher(js, channelSink.C(), observability.NewLogger("publisher"), metrics)

	// --- Servers ---
	httpServer := server.NewHTTPServer(cfg.HTTPAddr, engine, healthChecker, observability.NewLogger("http"))
	grpcServer := server.NewGRPCServer(cfg.GRPCAddr, observability.NewLogger("grpc"))

	// --- Start goroutines ---
	errChan := make(chan error, 8)

	// 1. NATS command loop
	go func() {
		ingestion.CommandLoop(ctx, rawChan, engine, observability.NewLogger("commands"), metrics)
		errChan <- nil
	}()

	// 2. Notification publisher
	go func() {
		errChan <- publisher.Run(ctx)
	}()

	// 3. HTTP API
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	// 4. gRPC health server
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	// 5. Prometheus metrics server
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metricsMux,
		}
		go func() {
			<-ctx.Done()
			shutCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			metricsServer.Shutdown(shutCtx)
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	// Mark service as ready after all goroutines started
	healthChecker.SetReady(true)
	grpcServer.SetServing(true)

	log.Info().
		Str("http", cfg.HTTPAddr).
		Str("grpc", cfg.GRPCAddr).
		Str("metrics", cfg.MetricsAddr).
		Str("policy", policy.String()).
		Dur("countdown", cfg.Countdown).
		Msg("auctiond ready")

	// --- Wait for shutdown signal ---
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		if err != nil {
			log.Error().Err(err).Msg("goroutine failed, shutting down")
		}
	}

	// --- Graceful shutdown ---
	grpcServer.SetServing(false)
	healthChecker.SetReady(false)
	cancel()

	subscriber.Stop()
	engine.Stop()
	channelSink.Close()

	// Give the publisher a moment to drain buffered notifications.
	time.Sleep(200 * time.Millisecond)

	log.Info().Msg("auctiond stopped")
}
