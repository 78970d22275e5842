package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/inkstone-site/inkstone/internal/adapter/cache"
	httpadapter "github.com/inkstone-site/inkstone/internal/adapter/http"
	"github.com/inkstone-site/inkstone/internal/adapter/persistence"
	"github.com/inkstone-site/inkstone/internal/config"
	"github.com/inkstone-site/inkstone/internal/intake"
	"github.com/inkstone-site/inkstone/internal/obs"
	"github.com/inkstone-site/inkstone/internal/pagination"
	"github.com/inkstone-site/inkstone/internal/ports"
	"github.com/inkstone-site/inkstone/internal/ratelimit"
	"github.com/inkstone-site/inkstone/internal/session"
	"github.com/inkstone-site/inkstone/internal/usecase"
)

const listingCacheTTL = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	logger := newLogger(cfg)
	obs.Init()

	// Session codec and staff credential table
	codec, err := session.NewCodec(cfg.Security.SessionSecret)
	if err != nil {
		logger.Fatalf("failed to initialize session codec: %v", err)
	}
	table := loadCredentials(cfg, logger)

	// Live store (optional)
	var (
		db          *sql.DB
		comments    ports.CommentRepository
		audits      ports.AuditRepository
		contacts    ports.ContactRepository
		liveContent pagination.Backend
	)
	if cfg.Database.Enabled {
		db, err = openDatabase(cfg)
		if err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		comments = persistence.NewPostgresCommentRepository(db)
		audits = persistence.NewPostgresAuditRepository(db)
		contacts = persistence.NewPostgresContactRepository(db)
		liveContent = persistence.NewPostgresContentIndex(db)
		logger.Info("database connection established")
	} else {
		logger.Warn("database disabled, running read-only off the static index")
	}

	// Static content index (the read fallback; always loaded)
	staticContent, err := persistence.NewStaticContentIndex(cfg.Content.StaticIndexFile)
	if err != nil {
		logger.Fatalf("failed to load static content index: %v", err)
	}
	logger.WithField("entries", staticContent.Len()).Info("static content index loaded")

	// Rate limit counter store: redis when configured, else in-process
	var counterStore ratelimit.CounterStore
	if cfg.Redis.Enabled {
		redisStore, err := ratelimit.NewRedisStore(cfg.GetRedisURL())
		if err != nil {
			logger.Warnf("redis unavailable, using in-process rate limit counters: %v", err)
			counterStore = ratelimit.NewMemoryStore()
		} else {
			defer redisStore.Close()
			counterStore = redisStore
			logger.Info("redis rate limit store connected")
		}
	} else {
		counterStore = ratelimit.NewMemoryStore()
	}

	// Use cases
	limiter := ratelimit.NewLimiter(counterStore, logger)
	listingCache := cache.NewMemoryCache(listingCacheTTL)
	submissions := usecase.NewSubmissionUseCase(
		intake.NewFilter(), limiter, comments, contacts,
		cfg.SubmissionLimits(), cfg.Security.IdentityHashSecret, logger)
	moderation := usecase.NewModerationUseCase(comments, audits, listingCache, logger)
	content := usecase.NewContentUseCase(liveContent, staticContent, logger)

	// HTTP server
	auth := httpadapter.NewAuthHandler(codec, table, cfg.IsProduction())
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
			TrustProxy:   cfg.Server.TrustProxy,
		},
		httpadapter.Handlers{
			Comments:   httpadapter.NewCommentHandler(submissions, comments, listingCache),
			Contact:    httpadapter.NewContactHandler(submissions),
			Auth:       auth,
			Moderation: httpadapter.NewModerationHandler(moderation, listingCache),
			Content:    httpadapter.NewContentHandler(content),
		},
		auth.SessionVerifier(),
		logger,
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func loadCredentials(cfg *config.Config, logger *logrus.Logger) *session.Table {
	data, err := os.ReadFile(cfg.Security.CredentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("credentials file %s not found, moderation surface disabled", cfg.Security.CredentialsFile)
			table, _ := session.ParseTable("")
			return table
		}
		logger.Fatalf("failed to read credentials file: %v", err)
	}
	table, err := session.ParseTable(string(data))
	if err != nil {
		logger.Fatalf("failed to parse credentials file: %v", err)
	}
	if table.Empty() {
		logger.Warn("credential table is empty, moderation surface disabled")
	}
	return table
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
