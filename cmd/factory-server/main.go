package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/signalsfoundry/factory-simulator/internal/api"
	"github.com/signalsfoundry/factory-simulator/internal/config"
	"github.com/signalsfoundry/factory-simulator/internal/logging"
	"github.com/signalsfoundry/factory-simulator/internal/observability"
	sim "github.com/signalsfoundry/factory-simulator/internal/sim/state"
	"github.com/signalsfoundry/factory-simulator/timectrl"
)

// healthService is the gRPC health service name reporting the tick loop.
const healthService = "factory.Simulation"

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP address of the inspection API")
	flag.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "TCP address of the gRPC health server")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "HTTP address for Prometheus /metrics (empty disables)")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "map width in tiles")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "map height in tiles")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world generation seed")
	flag.DurationVar(&cfg.Tick, "tick", cfg.Tick, "simulated length of one tick")
	flag.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "JSON building catalog (empty uses the built-in one)")
	layoutPath := flag.String("layout", "", "starter layout placed around the core")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Warn(ctx, "tracing disabled", logging.Err(err))
	}
	defer tracing.Shutdown(context.Background())

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.GRPCAddr), logging.Err(err))
		os.Exit(1)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for HTTP", logging.String("addr", cfg.HTTPAddr), logging.Err(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, *layoutPath, log, grpcLis, httpLis); err != nil {
		log.Error(ctx, "server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves the HTTP API, gRPC health and metrics for one session and drives
// its tick loop until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, layoutPath string, log logging.Logger, grpcLis, httpLis net.Listener) error {
	cfg = cfg.ApplyDefaults()
	log = logging.OrNoop(log)

	collector, err := observability.NewSimCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("metrics collector: %w", err)
	}

	sess, err := sim.Bootstrap(ctx, cfg, log, sim.WithMetricsRecorder(collector))
	if err != nil {
		return err
	}
	defer sess.Close()

	if layoutPath != "" {
		layout, err := sim.LoadLayoutFile(layoutPath)
		if err != nil {
			return err
		}
		res := sess.ApplyLayout(ctx, layout)
		log.Info(ctx, "layout applied", logging.Int("placed", len(res.Placed)), logging.Int("failed", len(res.Failures)))
	}

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)
	grpcSrv := grpc.NewServer(
		grpc.StatsHandler(observability.GRPCStatsHandler()),
		grpc.ChainUnaryInterceptor(
			observability.LoggingUnaryServerInterceptor(log),
			collector.UnaryServerInterceptor(),
		),
	)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	httpSrv := &http.Server{
		Handler:           api.NewRouter(sess, log, api.WithMiddleware(collector.HTTPMiddleware)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, collector, log)

	errCh := make(chan error, 2)
	go func() {
		log.Info(ctx, "starting gRPC health server", logging.String("addr", grpcLis.Addr().String()))
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		log.Info(ctx, "starting HTTP API", logging.String("addr", httpLis.Addr().String()))
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	tc := timectrl.NewTimeController(time.Now().UTC(), cfg.Tick, timectrl.ParseMode(cfg.Mode))
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := runSimLoop(loopCtx, tc, sess, cfg.Duration)
	healthSrv.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)

	var runErr error
	select {
	case <-ctx.Done():
	case <-loopDone:
		<-ctx.Done()
	case runErr = <-errCh:
	}

	log.Info(context.Background(), "shutting down factory server")
	stopLoop()
	healthSrv.Shutdown()
	grpcSrv.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	<-loopDone
	return runErr
}

// runSimLoop steps the session on every controller tick until ctx is
// cancelled or duration of simulated time has passed.
func runSimLoop(ctx context.Context, tc *timectrl.TimeController, sess *sim.Session, duration time.Duration) <-chan struct{} {
	tc.AddListener(func(_ time.Time, dt time.Duration) {
		sess.RunTick(dt.Seconds())
	})
	return tc.Start(ctx, duration)
}

func serveMetrics(addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
