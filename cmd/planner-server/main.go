// Command planner-server exposes the transfer planner as a JSON HTTP API
// with Prometheus metrics and optional OpenTelemetry tracing.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spacegps/transfer-planner/core"
	"github.com/spacegps/transfer-planner/internal/logging"
	"github.com/spacegps/transfer-planner/internal/observability"
	"github.com/spacegps/transfer-planner/internal/planapi"
	"github.com/spacegps/transfer-planner/kb"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP address the planning API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	ephemerisPath := flag.String("ephemeris", "configs/ephemeris.json", "path to a JSON ephemeris of bodies and spacecraft")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewAPICollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}

	store := kb.NewKnowledgeBase()
	f, err := os.Open(*ephemerisPath)
	if err != nil {
		log.Error(ctx, "failed to open ephemeris", logging.String("path", *ephemerisPath), logging.Err(err))
		os.Exit(1)
	}
	eph, err := core.LoadEphemeris(store, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load ephemeris", logging.String("path", *ephemerisPath), logging.Err(err))
		os.Exit(1)
	}
	collector.SetEphemerisCounts(len(eph.BodyIDs), len(eph.CraftIDs), 0)
	log.Info(ctx, "ephemeris loaded",
		logging.String("path", *ephemerisPath),
		logging.Int("bodies", len(eph.BodyIDs)),
		logging.Int("craft", len(eph.CraftIDs)))

	svc := planapi.NewService(store, core.NewPlanner(store, eph.Epoch), log, collector)

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	apiSrv := &http.Server{
		Addr:    *addr,
		Handler: svc.Handler(),
	}
	log.Info(ctx, "starting planning API server", logging.String("addr", *addr))
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "API server exited", logging.Err(err))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down planning API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.APICollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
