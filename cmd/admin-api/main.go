// Command admin-api serves the admin catalogue over HTTP.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mockprep/mockprep-go/internal/config"
	"github.com/mockprep/mockprep-go/internal/localstore"
	"github.com/mockprep/mockprep-go/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH is empty, admin login is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(cfg)
	if err != nil {
		slog.Error("opening store failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(ctx, cfg, store, slog.Default(), reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.AdminStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// openStore returns the MySQL repository, or the file-backed one when
// ADMIN_STORE=file or MySQL is unreachable.
func openStore(cfg config.Config) (repository.Store, *sql.DB, error) {
	if cfg.AdminStore == "mysql" {
		db, err := repository.NewDB(cfg.DatabaseDSN)
		if err == nil {
			return repository.NewMySQL(db), db, nil
		}
		slog.Warn("database connection failed, falling back to file store", "error", err)
	}

	file, err := localstore.NewFile(cfg.StorePath())
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using file store", "path", cfg.StorePath())
	return repository.NewLocal(file), nil, nil
}
