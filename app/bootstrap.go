package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fc-faces/internal/auth"
	"fc-faces/internal/db"
	"fc-faces/internal/images"
	"fc-faces/internal/maintenance"
	"fc-faces/internal/observability"
	"fc-faces/internal/roster"
)

type Options struct {
	LoadDotEnv    bool
	RunMigrations bool
	Logger        *observability.Logger
}

type Runtime struct {
	Handler http.Handler
	Port    string
	Close   func() error
	// Background runs long-lived work such as the roster watcher until ctx
	// is done. Nil when there is nothing to run.
	Background func(ctx context.Context) error
}

type cleaner interface {
	maintenance.StaleStateCleaner
	auth.AttemptStore
}

func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	logger := options.Logger
	if logger == nil {
		logger = observability.NewLogger()
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Env); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		observability.FlushSentry()
		return errors.Join(errs...)
	}
	fail := func(err error) (*Runtime, error) {
		_ = closeAll()
		return nil, err
	}

	var (
		attempts cleaner
		ipStore  auth.IPLimitStore
		ping     func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		database, err := openDatabase(cfg, options.RunMigrations || cfg.RunMigrations)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, database.Close)

		repo := auth.NewRepository(database)
		attempts = repo
		ipStore = repo
		ping = repo.Ping
	} else {
		logger.Info("attempt_store_in_memory", nil)
		attempts = auth.NewMemoryStore()
	}

	tokens, err := buildTokenIssuer(cfg, logger)
	if err != nil {
		return fail(err)
	}

	var service *auth.Service
	if cfg.PasswordHash != "" {
		checker, err := auth.NewDigestChecker(cfg.PasswordHash)
		if err != nil {
			return fail(fmt.Errorf("APP_PASSWORD_HASH: %w", err))
		}
		service = auth.NewService(attempts, checker)
		service.WithSecurityConfig(cfg.LoginMaxAttempts, cfg.LoginLockDuration)
		service.WithThrottle(cfg.LoginThrottleBase, cfg.LoginThrottleMax)
	} else {
		logger.Warn("login_disabled", map[string]any{"reason": "APP_PASSWORD_HASH not set"})
	}

	store, storeClose, err := buildImageStore(cfg)
	if err != nil {
		return fail(err)
	}
	if storeClose != nil {
		closers = append(closers, storeClose)
	}

	library, err := buildLibrary(cfg, logger)
	if err != nil {
		return fail(err)
	}

	var background func(context.Context) error
	if cfg.RosterWatch && cfg.RosterCatalog != "" {
		watcher, err := roster.NewWatcher(library, logger, 0)
		if err != nil {
			return fail(fmt.Errorf("watch roster: %w", err))
		}
		background = watcher.Run
	}

	authHandler := auth.NewHandler(service, tokens, cfg.Production(), logger)
	loginLimiter := auth.NewLoginRateLimiter(ipStore, logger, cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow)
	rosterHandler := roster.NewHandler(library, images.ProtectedURL)
	imageHandler := images.NewHandler(images.NewResolver(tokens, store), logger)
	cleanupHandler := maintenance.NewCleanupHandler(
		attempts,
		logger,
		cfg.CronSecret,
		cfg.AttemptRetention,
		cfg.CleanupBatchSize,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth", authHandler.Auth)
	mux.Handle("POST /api/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.Handle("GET /api/roster", auth.RequireToken(tokens, http.HandlerFunc(rosterHandler.List)))
	mux.HandleFunc("GET /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("GET /health", healthHandler(ping))

	routed := withImageRoute(http.HandlerFunc(imageHandler.Serve), mux)
	handler := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, routed))

	return &Runtime{
		Handler:    handler,
		Port:       cfg.Port,
		Close:      closeAll,
		Background: background,
	}, nil
}

func openDatabase(cfg Config, migrate bool) (*sql.DB, error) {
	database, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	database.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if migrate {
		if err := db.RunMigrations(ctx, database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return database, nil
}

func buildTokenIssuer(cfg Config, logger *observability.Logger) (auth.TokenIssuer, error) {
	if cfg.TokenMode == tokenModeStatic {
		return auth.NewStaticIssuer(cfg.AuthSecret, auth.DefaultTokenTTL), nil
	}

	secret := cfg.AuthSecret
	if secret == "" {
		logger.Warn("auth_secret_defaulted", map[string]any{"env": cfg.Env})
		secret = auth.DefaultStaticToken
	}
	return auth.NewJWTIssuer(secret, auth.DefaultTokenTTL)
}

func buildImageStore(cfg Config) (images.ImageStore, func() error, error) {
	if cfg.S3.Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := images.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("init s3 image store: %w", err)
		}
		return store, nil, nil
	}

	store, err := images.OpenDiskStore(cfg.ImageRoot)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func buildLibrary(cfg Config, logger *observability.Logger) (*roster.Library, error) {
	if cfg.RosterCatalog == "" {
		logger.Warn("roster_empty", map[string]any{"reason": "ROSTER_CATALOG not set"})
		return roster.NewLibrary(nil, roster.NewFilter(cfg.RosterDenylist, nil)), nil
	}

	library, err := roster.OpenLibrary(roster.Source{
		CatalogPath:   cfg.RosterCatalog,
		ShortlistPath: cfg.RosterShortlist,
		Denylist:      cfg.RosterDenylist,
	})
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	logger.Info("roster_loaded", map[string]any{
		"profiles":  len(library.Catalog()),
		"shortlist": len(library.Shortlist()),
	})
	return library, nil
}

// withImageRoute sends image requests straight to images so the mux never
// cleans or redirects traversal attempts before they are rejected.
func withImageRoute(imageHandler, next http.Handler) http.Handler {
	bare := strings.TrimSuffix(images.PathPrefix, "/")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, images.PathPrefix) || r.URL.Path == bare {
			imageHandler.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body = map[string]any{"status": "degraded", "time": time.Now().UTC().Format(time.RFC3339)}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
