package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	jwttoken "profileguard/internal/jwt_token"
	"profileguard/internal/platform/config"
	"profileguard/internal/platform/httpserver"
	"profileguard/internal/platform/logger"
	platformmetrics "profileguard/internal/platform/metrics"
	"profileguard/internal/platform/middleware"
	platformredis "profileguard/internal/platform/redis"
	"profileguard/internal/profile/adapters/kafka"
	"profileguard/internal/profile/guard"
	"profileguard/internal/profile/handler"
	profilemetrics "profileguard/internal/profile/metrics"
	"profileguard/internal/profile/ports"
	"profileguard/internal/profile/store/breaker"
	"profileguard/internal/profile/store/memory"
	"profileguard/internal/profile/store/postgres"
	profileredis "profileguard/internal/profile/store/redis"
	"profileguard/internal/profile/store/sqlite"
	"profileguard/internal/profile/writer"
	auditmemory "profileguard/pkg/platform/audit/store/memory"
	"profileguard/pkg/platform/circuit"
	"profileguard/pkg/platform/httputil"
	adminmw "profileguard/pkg/platform/middleware/admin"
	authmw "profileguard/pkg/platform/middleware/auth"
	"profileguard/pkg/platform/middleware/requesttime"
)

// store is what the server needs from a backend: the guard's repository plus
// quota administration.
type store interface {
	ports.Repository
	ports.AccountAdmin
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/profile.
func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	addr := pflag.String("addr", "", "listen address (overrides PROFILEGUARD_ADDR)")
	backend := pflag.String("store", "", "repository backend: memory, postgres, redis or sqlite (overrides PROFILEGUARD_STORE)")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	if *addr != "" {
		_ = os.Setenv("PROFILEGUARD_ADDR", *addr)
	}
	if *backend != "" {
		_ = os.Setenv("PROFILEGUARD_STORE", *backend)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, backend, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()
	checks := map[string]func(context.Context) error{"store": backend.ping}
	if cfg.Store != config.StoreMemory {
		repo, err = breaker.New(repo, circuit.New(string(cfg.Store),
			circuit.WithFailureThreshold(cfg.Breaker.FailureThreshold),
			circuit.WithCooldown(cfg.Breaker.Cooldown),
		), log)
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := platformmetrics.New(reg)
	profileMetrics := profilemetrics.NewWithRegistry(reg)

	var (
		prompter       ports.Prompter       = ports.NopPrompter{}
		auditPublisher ports.AuditPublisher = auditmemory.NewInMemoryStore()
	)
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafka.New(cfg.Kafka.Brokers,
			kafka.WithLogger(log),
			kafka.WithTopics(cfg.Kafka.PromptTopic, cfg.Kafka.AuditTopic),
		)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := publisher.Close(closeCtx); err != nil {
				log.Warn("kafka publisher close failed", "error", err)
			}
		}()
		if cfg.Kafka.CreateTopic {
			if err := publisher.EnsureTopics(ctx, 3, 1); err != nil {
				return fmt.Errorf("kafka topics: %w", err)
			}
		}
		prompter = publisher
		auditPublisher = publisher
		checks["kafka"] = publisher.Ping
	}

	refWriter, err := writer.New(repo,
		writer.WithLogger(log),
		writer.WithMetrics(profileMetrics),
		writer.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}
	guardSvc, err := guard.New(repo, refWriter,
		guard.WithLogger(log),
		guard.WithPrompter(prompter),
		guard.WithAuditPublisher(auditPublisher),
		guard.WithMetrics(profileMetrics),
	)
	if err != nil {
		return err
	}
	profileHandler := handler.New(guardSvc, refWriter, repo, repo, auditPublisher, log)

	jwtValidator := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(httpMetrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			status[name] = "ok"
			if err := check(req.Context()); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, code, status)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(authmw.RequireAuth(jwtValidator, log))
		profileHandler.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(adminmw.RequireAdminToken(cfg.Auth.AdminToken, log))
		profileHandler.RegisterAdmin(r)
	})

	srv := httpserver.New(cfg.Server.Addr, r, httpserver.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting profileguard", "addr", cfg.Server.Addr, "store", string(cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// backendHandle lets run probe and release whichever backend was opened.
type backendHandle struct {
	ping  func(context.Context) error
	close func()
}

// openStore builds the configured repository.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store, backendHandle, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, backendHandle{}, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, backendHandle{}, fmt.Errorf("ping postgres: %w", err)
		}
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, backendHandle{}, err
			}
		}
		log.Info("using postgres store")
		return postgres.New(db), backendHandle{ping: db.PingContext, close: func() { _ = db.Close() }}, nil

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, backendHandle{}, err
		}
		log.Info("using redis store")
		return profileredis.New(client.Client), backendHandle{ping: client.Health, close: func() { _ = client.Close() }}, nil

	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, backendHandle{}, fmt.Errorf("create sqlite dir: %w", err)
		}
		s, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, backendHandle{}, err
		}
		log.Info("using sqlite store", "path", cfg.SQLite.Path)
		return s, backendHandle{ping: s.Ping, close: func() { _ = s.Close() }}, nil

	default:
		log.Warn("using in-memory store; references are lost on restart")
		return memory.New(), backendHandle{ping: func(context.Context) error { return nil }, close: func() {}}, nil
	}
}
