package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-diary/internal/cache"
	"github.com/pribylovaa/go-diary/internal/config"
	"github.com/pribylovaa/go-diary/internal/identity"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/service"
	"github.com/pribylovaa/go-diary/internal/storage"
	"github.com/pribylovaa/go-diary/internal/storage/minio"
	"github.com/pribylovaa/go-diary/internal/storage/mongo"
	"github.com/pribylovaa/go-diary/internal/storage/postgres"
	diaryhttp "github.com/pribylovaa/go-diary/internal/transport/http"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting diary-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	initCtx, initCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer initCancel()

	db, err := mongo.New(initCtx, cfg.DB.URL)
	if err != nil {
		log.Error("mongo_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Warn("mongo_close_failed", slog.String("err", err.Error()))
		}
	}()

	log.Info("mongo_connected")

	// Изображения (опционально).
	var images storage.ImagesStorage
	if cfg.S3.Enabled() {
		st, err := minio.New(initCtx, cfg.S3, cfg.Images)
		if err != nil {
			log.Error("s3_init_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}

		images = st
		log.Info("s3_ready", slog.String("bucket", cfg.S3.Bucket))
	} else {
		log.Info("s3_disabled")
	}

	svc := service.New(db, images)

	opts := diaryhttp.Options{
		Logger:       log,
		Timeout:      cfg.Timeouts.Service,
		AuthRequired: cfg.Auth.Required,
	}

	// Учётные записи (опционально).
	var users *postgres.Storage
	if cfg.Auth.Enabled() {
		users, err = postgres.New(initCtx, cfg.Auth.DatabaseURL)
		if err != nil {
			log.Error("postgres_init_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}

		defer users.Close()

		id := identity.New(users, db, cfg.Auth)

		if cfg.Redis.URL != "" {
			revoked, err := cache.NewRedis(initCtx, cfg.Redis.URL, cfg.Redis.Prefix)
			if err != nil {
				log.Error("redis_init_failed", slog.String("err", err.Error()))
				os.Exit(1)
			}

			defer func() {
				if err := revoked.Close(); err != nil {
					log.Warn("redis_close_failed", slog.String("err", err.Error()))
				}
			}()

			id.SetRevocations(revoked)
			log.Info("redis_connected")
		} else {
			log.Info("redis_disabled", slog.String("note", "logout is client-side only"))
		}

		unsubscribe := id.OnAuthStateChanged(func(u *models.User) {
			if u == nil {
				log.Debug("auth_signed_out")
				return
			}
			log.Debug("auth_signed_in", slog.String("user_id", u.UID))
		})
		defer unsubscribe()

		opts.Identity = id
		log.Info("auth_enabled", slog.Bool("required", cfg.Auth.Required))
	} else {
		log.Info("auth_disabled")
	}

	initCancel()

	apiHandler := diaryhttp.NewRouter(svc, opts)

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			http.Error(w, "mongo unavailable", http.StatusServiceUnavailable)
			return
		}

		if users != nil {
			if err := users.Ping(ctx); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
