package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/imageforge/gateway/internal/cache/freecache"
	"github.com/imageforge/gateway/internal/config"
	"github.com/imageforge/gateway/internal/job_tracer"
	"github.com/imageforge/gateway/internal/queue"
	"github.com/imageforge/gateway/internal/queue/jetstream"
	"github.com/imageforge/gateway/internal/service/listing"
	"github.com/imageforge/gateway/internal/service/logger"
	"github.com/imageforge/gateway/internal/service/monitor"
	"github.com/imageforge/gateway/internal/service/submission"
	"github.com/imageforge/gateway/internal/storage/minio"
	"github.com/imageforge/gateway/internal/validate"
	"github.com/imageforge/gateway/internal/web"
)

const listCacheSizeBytes = 4 * 1024 * 1024

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger.Init(cfg.SERVICE_NAME)

	if cfg.TRACE_URL != "" {
		tp, err := job_tracer.InitTracer(ctx, cfg.SERVICE_NAME, cfg.TRACE_URL)
		if err != nil {
			log.Fatalf("error initialising trace: %v", err)
		}
		defer tp.Shutdown(ctx)
	}

	gwCfg, err := config.GetGatewayConfig()
	if err != nil {
		log.Fatalf("gateway config error: %v", err)
	}

	minioCfg, err := config.GetMinioConfig()
	if err != nil {
		log.Fatalf("minio config error: %v", err)
	}
	store, err := minio.NewMinioClient(minioCfg)
	if err != nil {
		log.Fatalf("storage initialization error: %v", err)
	}

	natsCfg, err := config.GetNatsConfig()
	if err != nil {
		log.Fatalf("nats config error: %v", err)
	}
	q, err := jetstream.NewJetStreamClient(natsCfg.URL)
	if err != nil {
		log.Fatalf("queue initialization error: %v", err)
	}

	listCache := freecache.NewFreeCache(listCacheSizeBytes, gwCfg.LIST_CACHE_TTL_SECONDS)

	limits := validate.DefaultLimits()
	limits.Models = gwCfg.MODELS

	sub := submission.NewService(store, q, limits, gwCfg.FAST_MODELS)
	list := listing.NewService(
		store,
		listCache,
		gwCfg.LIST_COUNT,
		gwCfg.ARTIFACT_SUFFIX,
		time.Duration(gwCfg.PRESIGN_TTL_SECONDS)*time.Second,
	)
	mon := monitor.NewService(q, queue.Lanes())

	server := web.NewServer(sub, list, mon, gwCfg.ALLOWED_ORIGINS)

	srv := &http.Server{
		Addr:              gwCfg.ADDR,
		Handler:           otelhttp.NewHandler(server.Router(), "gateway"),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log.Info().Str("addr", gwCfg.ADDR).Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Log.Info().Msg("trying to shutdown server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}

	q.Shutdown()
	store.Close()

	logger.Log.Info().Msg("server shutdown gracefully.")
}
