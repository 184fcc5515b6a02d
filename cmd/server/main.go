package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dataveil/dataveil/internal/anonymize"
	"github.com/dataveil/dataveil/internal/audit"
	"github.com/dataveil/dataveil/internal/config"
	"github.com/dataveil/dataveil/internal/logging"
	"github.com/dataveil/dataveil/internal/sample"
	"github.com/dataveil/dataveil/internal/security"
	"github.com/dataveil/dataveil/internal/store"
	"github.com/dataveil/dataveil/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"uploads_dir", cfg.Storage.UploadsDir,
		"audit_db_configured", cfg.Database.URL != "",
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// A missing salt still works, but hashes change on every restart.
	salt := cfg.Engine.Salt
	if salt == "" {
		salt, err = security.GenerateSalt(security.DefaultSaltLength)
		if err != nil {
			slog.Error("failed to generate salt", "error", err)
			os.Exit(1)
		}
		slog.Warn("ANONYMIZER_SALT not set; generated a fresh salt, hashes will not be reproducible across restarts")
	}

	engine := anonymize.New(salt,
		anonymize.WithDefaultK(cfg.Engine.DefaultK),
		anonymize.WithDefaultEpsilon(cfg.Engine.DefaultEpsilon),
	)

	st, err := store.New(cfg.Storage.UploadsDir, cfg.Storage.SamplesDir)
	if err != nil {
		slog.Error("failed to create storage directories", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// The audit database is optional; without it the service audits to the
	// structured log only.
	var auditStore *audit.Store
	if cfg.Database.URL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to audit database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping audit database", "error", err)
			os.Exit(1)
		}

		auditStore, err = audit.NewStore(ctx, pool)
		if err != nil {
			slog.Error("failed to prepare audit schema", "error", err)
			os.Exit(1)
		}

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("audit database connected", "name", strings.TrimPrefix(u.Path, "/"))
		}
	}
	auditor := audit.NewRecorder(auditStore)

	samples := sample.New(cfg.Storage.SamplesDir)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	server := web.NewServer(cfg, engine, st, samples, auditor, jobCtx)

	// Start stale-upload cleanup with config values
	go st.StartCleanupScheduler(jobCtx, store.CleanupConfig{
		Interval:  cfg.Cleanup.Interval,
		Retention: cfg.Cleanup.Retention,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
