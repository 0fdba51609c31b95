package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/audit"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/auth"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/payroll"
	"github.com/Boyan92/SalaryCalculatorNew/internal/platform/config"
	"github.com/Boyan92/SalaryCalculatorNew/internal/platform/crypto"
	"github.com/Boyan92/SalaryCalculatorNew/internal/platform/db"
	"github.com/Boyan92/SalaryCalculatorNew/internal/platform/metrics"
	"github.com/Boyan92/SalaryCalculatorNew/internal/platform/ruleset"
	authhandler "github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/handlers/auth"
	payrollhandler "github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/handlers/payroll"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/api"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Router  http.Handler
	Service *payroll.Service
	Metrics *metrics.Collector

	ping    func(ctx context.Context) error
	closers []func()
}

// Close releases the record store.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	if err := app.Serve(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// Serve listens on the configured address until ctx is cancelled, then drains
// in-flight requests for at most ShutdownTimeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("salary calculator listening", "addr", a.Config.Addr, "store", a.Config.StoreDriver, "devMode", a.Config.DevMode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	rules, err := ruleset.Load(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	app := &App{Config: cfg, Metrics: metrics.New()}
	store, err := app.openStore(ctx, rules)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Service = payroll.NewService(store, rules, logger)

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		app.Close()
		return nil, err
	}
	var archive *payroll.PayslipArchive
	if cfg.PayslipDir != "" {
		archive = payroll.NewPayslipArchive(cfg.PayslipDir, sealer)
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, cfg.OperatorUsername, cfg.OperatorPasswordHash).
		WithViewer(cfg.ViewerUsername, cfg.ViewerPasswordHash)
	if authService.DevMode() {
		slog.Warn("JWT_SECRET is empty, every caller is treated as the operator")
	}

	app.Router = app.routes(logger, authService, archive)
	return app, nil
}

func (a *App) openStore(ctx context.Context, rules payroll.RuleSet) (payroll.RecordStore, error) {
	order := rules.Calendar.Ordinal
	switch a.Config.StoreDriver {
	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, a.Config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open failed: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		a.ping = pingSQL(conn)
		return payroll.NewSQLStore(conn, order), nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, a.Config)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.ping = pingPool(pool)
		if a.Config.RunMigrations {
			if err := db.Migrate(ctx, pool, a.Config.MigrationsDir); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return payroll.NewPgStore(pool, order), nil
	default:
		return payroll.NewMemoryStore(order), nil
	}
}

func pingSQL(conn *sql.DB) func(ctx context.Context) error {
	return conn.PingContext
}

func pingPool(pool *pgxpool.Pool) func(ctx context.Context) error {
	return pool.Ping
}

func newLogger(cfg config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.Environment != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "salary-calculator"),
		slog.String("env", cfg.Environment),
	)
}

func (a *App) routes(logger *slog.Logger, authService *auth.Service, archive *payroll.PayslipArchive) http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	clientIP := middleware.ClientIPFunc(cfg.TrustForwardedFor)
	router.Use(middleware.RequestIDWithClientIP(clientIP))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition", "Retry-After"},
		MaxAge:           300,
	}))
	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(a.Metrics))
	router.Use(middleware.Auth(authService))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := a.ping(ctx); err != nil {
				slog.Warn("readiness check failed", "err", err)
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authService)
		r.With(middleware.RateLimit(cfg.LoginRatePerMinute, clientIP)).Post("/auth/login", authHandler.HandleLogin)

		payrollHandler := payrollhandler.NewHandler(a.Service, archive, a.Metrics, audit.New(logger))
		payrollHandler.RegisterRoutes(r)
	})

	return router
}
