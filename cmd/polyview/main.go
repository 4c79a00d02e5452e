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

	"github.com/gin-gonic/gin"
	"github.com/liamashdown/polyview/internal/cache"
	"github.com/liamashdown/polyview/internal/catalog"
	"github.com/liamashdown/polyview/internal/config"
	"github.com/liamashdown/polyview/internal/metrics"
	"github.com/liamashdown/polyview/internal/polymarket/gammaapi"
	"github.com/liamashdown/polyview/internal/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	log.Info("Starting polyview...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"gamma_api":     cfg.GammaAPIBaseURL,
		"gamma_api_rps": cfg.GammaAPIRPS,
		"page_limit":    cfg.PageLimit,
		"cache_backend": cfg.CacheBackend,
		"cache_ttl":     cfg.CacheTTL.String(),
	}).Info("Configuration loaded")

	gammaClient := gammaapi.NewClient(cfg, log)

	source, ready, closeCache := createSource(cfg, gammaClient, log)
	defer closeCache()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := web.NewServer(source, web.Options{
		PageLimit:           cfg.PageLimit,
		HomeCompetitiveOnly: cfg.HomeCompetitiveOnly,
	}, log)

	pages := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      server.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.GammaAPITimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	ops := newOpsServer(cfg.HealthPort, ready)

	go serve(pages, "pages", log)
	go serve(ops, "health + metrics", log)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.WithField("signal", sig).Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{pages, ops} {
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).WithField("addr", srv.Addr).Warn("HTTP server did not shut down cleanly")
		}
	}
	log.Info("Graceful shutdown complete")
}

// createSource fronts the client with the configured cache. ready reports
// whether the cache backend can be reached.
func createSource(cfg *config.Config, client *gammaapi.Client, log *logrus.Logger) (catalog.Source, func(context.Context) error, func()) {
	noop := func(context.Context) error { return nil }

	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		mem := cache.NewMemoryCache[[]byte](time.Minute)
		log.WithField("ttl", cfg.CacheTTL.String()).Info("Using in-memory response cache")
		return catalog.NewCachedSource(client, mem, cfg.CacheTTL, log), noop, func() { mem.Close() }

	case config.CacheBackendRedis:
		rc := cache.NewRedisCache[[]byte](cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			// Requests still go through; every lookup will miss until redis is back.
			log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Redis not reachable at startup")
		} else {
			log.WithField("addr", cfg.RedisAddr).Info("Using redis response cache")
		}
		return catalog.NewCachedSource(client, rc, cfg.CacheTTL, log), rc.Ping, func() {
			if err := rc.Close(); err != nil {
				log.WithError(err).Warn("Failed to close redis client")
			}
		}

	default:
		return client, noop, func() {}
	}
}

func newOpsServer(port int, ready func(context.Context) error) *http.Server {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy"}`)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			metrics.RecordHealthCheck(false)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"not ready"}`)
			return
		}
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ready"}`)
	})

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}

func serve(srv *http.Server, name string, log *logrus.Logger) {
	log.WithFields(logrus.Fields{"addr": srv.Addr, "server": name}).Info("Starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).WithField("server", name).Fatal("HTTP server failed")
	}
}
