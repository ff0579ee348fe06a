package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"guestgate/internal/messaging"
	"guestgate/internal/messaging/whatsapp"
	"guestgate/internal/platform/config"
	"guestgate/internal/platform/httpserver"
	"guestgate/internal/platform/logger"
	"guestgate/internal/platform/metrics"
	"guestgate/internal/platform/middleware"
	platformredis "guestgate/internal/platform/redis"
	"guestgate/internal/registration/backup"
	"guestgate/internal/registration/classifier"
	"guestgate/internal/registration/handler"
	"guestgate/internal/registration/lock"
	"guestgate/internal/registration/service"
	"guestgate/internal/registration/store"
	"guestgate/internal/registration/store/memory"
	"guestgate/internal/registration/store/postgres"
	"guestgate/internal/registration/store/rest"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	// Store backend, by preference: direct SQL, then the remote REST store,
	// then in-memory for local runs.
	var st store.Store
	switch {
	case cfg.Postgres.DSN != "":
		pg, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		st = pg
		log.Info("using postgres store")
	case cfg.Store.Configured():
		st = rest.New(cfg.Store)
		log.Info("using remote record store", "url", cfg.Store.URL)
	default:
		st = memory.New()
		log.Warn("no store configured, registrations are not persisted")
	}

	var locker lock.Locker = lock.NewMemoryLocker()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient.Client)
		log.Info("using redis referral lock")
	}

	var messenger messaging.Messenger = messaging.NewLogMessenger(log)
	if cfg.Messaging.Configured() {
		messenger = whatsapp.New(cfg.Messaging)
		log.Info("using whatsapp messenger")
	}

	cls := classifier.New(st, cfg.Allowlist,
		classifier.WithLogger(log),
		classifier.WithMetrics(m),
	)
	svc := service.New(st, cls,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithBackup(backup.New(cfg.Backup.Path)),
		service.WithMessenger(messenger),
		service.WithLocker(locker),
	)
	h := handler.New(svc,
		handler.WithLogger(log),
		handler.WithWebhookVerifyToken(cfg.Messaging.VerifyToken),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logging(log))
	h.Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting guestgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
