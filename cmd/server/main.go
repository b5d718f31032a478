package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AditRobertho/eshop-backend/internal/config"
	"github.com/AditRobertho/eshop-backend/internal/db"
	"github.com/AditRobertho/eshop-backend/internal/hash"
	"github.com/AditRobertho/eshop-backend/internal/httpserver"
	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/metrics"
	authmw "github.com/AditRobertho/eshop-backend/internal/middleware/auth"
	"github.com/AditRobertho/eshop-backend/internal/middleware/ratelimit"
	"github.com/AditRobertho/eshop-backend/internal/mykafka"
	"github.com/AditRobertho/eshop-backend/internal/repo"
	"github.com/AditRobertho/eshop-backend/internal/search"
	"github.com/AditRobertho/eshop-backend/internal/service"
	"github.com/AditRobertho/eshop-backend/internal/storage"
	"github.com/AditRobertho/eshop-backend/internal/tokens"
)

type eventSink interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		log.Fatalf("db: %v", err)
	}

	issuer, err := tokens.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	validator, err := tokens.NewValidator(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	images, staticDir, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var events eventSink = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = prod
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	r := &repo.GormRepo{DB: gdb}
	hasher := hash.New(cfg.BcryptCost)
	products := &service.ProductService{Repo: r, Images: images, Events: events}
	if cfg.ESURL != "" {
		idx, err := search.NewClient(ctx, search.Config{
			URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex,
		}, logger)
		if err != nil {
			// search falls back to the database, so a missing cluster is not fatal
			logger.Error("es_unavailable", "error", err)
		} else {
			products.Index = idx
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	e := httpserver.New(logger, m)
	httpserver.Register(e, &httpserver.Deps{
		DB:   gdb,
		Gate: &authmw.Gate{Validator: validator},
		Users: &httpserver.UsersHTTP{
			Auth:    &service.AuthService{Repo: r, Hasher: hasher, Issuer: issuer, Events: events},
			Users:   &service.UserService{Repo: r, Hasher: hasher, Events: events},
			Metrics: m,
		},
		Categories: &httpserver.CategoriesHTTP{Svc: &service.CategoryService{Repo: r, Events: events}},
		Products:   &httpserver.ProductsHTTP{Svc: products},
		APIPrefix:  cfg.APIPrefix,
		UploadDir:  staticDir,
		LoginLimit: ratelimit.Config{PerMinute: cfg.LoginRatePerMin, Burst: cfg.LoginBurst},
		Gatherer:   reg,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	logger.Info("shutdown complete")
}

// openStorage picks S3 when a bucket is configured, local disk otherwise. The
// returned directory is only set for local disk and gets served statically.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	if cfg.S3Bucket != "" {
		s, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		return s, "", err
	}
	l, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	return l, cfg.UploadDir, nil
}
