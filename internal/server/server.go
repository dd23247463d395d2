// Package server provides the service lifecycle runner.
// cmd/timeconvd delegates to server.Run for signal handling, config loading,
// observability init, health checks, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aelexs/timeconverter/internal/config"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/internal/observability"
)

// Version is reported as the service.version resource attribute.
var Version = "0.1.0"

// SetupDeps is what a service's composition root gets to wire itself in.
type SetupDeps struct {
	Config *config.Config
	Logger *slog.Logger

	// Router already carries request IDs, access logging and panic
	// recovery. /healthz is taken.
	Router chi.Router

	// GRPCServer already serves grpc.health.v1.Health.
	GRPCServer *grpc.Server
}

// SetupFunc wires a service. The context passed to it is cancelled when
// shutdown begins, before the HTTP server drains. The returned cleanup runs
// after both servers have stopped.
type SetupFunc func(ctx context.Context, deps SetupDeps) (cleanup func(context.Context) error, err error)

// Params configures a service's lifecycle runner.
type Params struct {
	// Name identifies the service in logs, telemetry and health checks.
	Name string

	Setup SetupFunc
}

// Listeners optionally injects pre-bound listeners (enables port-0 testing).
// A nil listener is created from config.
type Listeners struct {
	HTTP net.Listener
	GRPC net.Listener
}

// Run executes the full service lifecycle: signal handling, config loading,
// observability initialization, HTTP and gRPC servers with health checks,
// and graceful shutdown.
func Run(ctx context.Context, p Params, l Listeners) error {
	// Signal-based cancellation: ctx.Done() closes on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: p.Name,
		Environment: cfg.Environment,
	})

	// --- Startup order: telemetry -> listeners -> setup -> servers ---

	telemetry, err := observability.InitTelemetry(ctx, observability.TelemetryConfig{
		ServiceName:    p.Name,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		SampleRatio:    cfg.OTEL.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	shutdownTelemetry := func() {
		otelCtx, otelCancel := context.WithTimeout(context.Background(), domain.ShutdownOTELTimeout)
		defer otelCancel()
		if shutdownErr := telemetry.Shutdown(otelCtx); shutdownErr != nil {
			logger.Error("failed to shutdown telemetry", slog.String("error", shutdownErr.Error()))
		}
	}

	httpLn, grpcLn, err := bindListeners(ctx, cfg, l)
	if err != nil {
		shutdownTelemetry()
		return err
	}

	// Health check shutdown coordination via atomic flag.
	var shuttingDown atomic.Bool

	router := chi.NewRouter()
	router.Use(RequestID)
	router.Use(middleware.RealIP)
	router.Use(AccessLog(logger))
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if shuttingDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"shutting_down","service":%q}`, p.Name)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":%q}`, p.Name)
	})

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// --- Structured concurrency via errgroup ---
	g, gctx := errgroup.WithContext(ctx)

	cleanup := func(context.Context) error { return nil }
	if p.Setup != nil {
		c, setupErr := p.Setup(gctx, SetupDeps{
			Config:     cfg,
			Logger:     logger,
			Router:     router,
			GRPCServer: grpcServer,
		})
		if setupErr != nil {
			grpcServer.Stop()
			_ = httpLn.Close()
			_ = grpcLn.Close()
			shutdownTelemetry()
			return fmt.Errorf("setup %s: %w", p.Name, setupErr)
		}
		if c != nil {
			cleanup = c
		}
	}

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(p.Name, healthpb.HealthCheckResponse_SERVING)

	httpServer := &http.Server{
		Handler:      router,
		ReadTimeout:  domain.HTTPReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  domain.HTTPIdleTimeout,
	}

	// Goroutine 1: Serve HTTP
	g.Go(func() error {
		logger.Info("starting HTTP server",
			slog.String("addr", httpLn.Addr().String()),
			slog.String("environment", cfg.Environment),
		)
		if serveErr := httpServer.Serve(httpLn); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})

	// Goroutine 2: Serve gRPC (health only)
	g.Go(func() error {
		logger.Info("starting gRPC server", slog.String("addr", grpcLn.Addr().String()))
		if serveErr := grpcServer.Serve(grpcLn); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return serveErr
		}
		return nil
	})

	// Goroutine 3: Shutdown trigger. Waits for context cancellation, then drains.
	// Shutdown order is explicit reverse of startup: servers -> cleanup -> telemetry.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received shutdown signal, starting graceful shutdown")

		// 1. Mark shutting down: health checks report unavailable
		shuttingDown.Store(true)
		healthServer.Shutdown()

		// 2. Drain delay: let load balancer propagate endpoint removal
		time.Sleep(domain.ShutdownDrainDelay)

		// 3. Drain HTTP server. Event streams already ended with gctx.
		httpCtx, httpCancel := context.WithTimeout(context.Background(), domain.ShutdownHTTPTimeout)
		defer httpCancel()
		if shutdownErr := httpServer.Shutdown(httpCtx); shutdownErr != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", shutdownErr.Error()))
		}

		// 4. Drain gRPC server, forcing it after the HTTP budget
		stopGRPC(httpCtx, grpcServer)

		// 5. Service cleanup
		if cleanupErr := cleanup(httpCtx); cleanupErr != nil {
			logger.Error("service cleanup error", slog.String("error", cleanupErr.Error()))
		}

		// 6. Flush OTEL
		shutdownTelemetry()

		logger.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}

func bindListeners(ctx context.Context, cfg *config.Config, l Listeners) (httpLn, grpcLn net.Listener, err error) {
	lc := &net.ListenConfig{}

	httpLn = l.HTTP
	if httpLn == nil {
		httpLn, err = lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", cfg.Server.HTTPPort))
		if err != nil {
			return nil, nil, fmt.Errorf("listen http: %w", err)
		}
	}

	grpcLn = l.GRPC
	if grpcLn == nil {
		grpcLn, err = lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			_ = httpLn.Close()
			return nil, nil, fmt.Errorf("listen grpc: %w", err)
		}
	}
	return httpLn, grpcLn, nil
}

// stopGRPC stops s gracefully, or forcibly once ctx is done.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
		<-done
	}
}
