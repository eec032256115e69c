package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/acme-dashboard/auth"
	"github.com/diewo77/acme-dashboard/internal/config"
	"github.com/diewo77/acme-dashboard/internal/db"
	"github.com/diewo77/acme-dashboard/internal/identity"
	"github.com/diewo77/acme-dashboard/view"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var logger = loggo.GetLogger("acme.server")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config
	cmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Acme customer and invoice dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load environment variables from .env file
			_ = godotenv.Load()
			cfg = config.Load()
			if err := loggo.ConfigureLoggers(cfg.App.LogLevel); err != nil {
				return errors.Annotatef(err, "LOG_LEVEL %q", cfg.App.LogLevel)
			}
			return nil
		},
	}
	cmd.AddCommand(newServeCmd(&cfg))
	cmd.AddCommand(newMigrateCmd(&cfg))
	return cmd
}

func newServeCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(*cfg)
		},
	}
}

func newMigrateCmd(cfg **config.Config) *cobra.Command {
	var sqlMigrations bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			if sqlMigrations {
				if c.Database.Driver == "sqlite" {
					return errors.NotSupportedf("sql migrations on sqlite")
				}
				if err := db.RunSQLMigrations(c.Database.DSN()); err != nil {
					return err
				}
				logger.Infof("sql migrations applied")
				return nil
			}
			conn, err := db.Open(c.Database, c.App.Dev)
			if err != nil {
				return err
			}
			if err := db.Migrate(conn); err != nil {
				return err
			}
			logger.Infof("migrations completed successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&sqlMigrations, "sql", false, "apply the embedded SQL migrations with golang-migrate instead of AutoMigrate")
	return cmd
}

func serve(cfg *config.Config) error {
	conn, err := db.Open(cfg.Database, cfg.App.Dev)
	if err != nil {
		return err
	}
	if cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			return err
		}
		logger.Infof("migrations completed")
	}

	auth.SetSecret(cfg.App.SessionSecret)
	users := identity.NewDirectory(conn)
	auth.SetUserVerifier(users.Exists)
	view.SetDev(cfg.App.Dev)

	app := NewApp(conn, cfg.App.ListingTTL, prometheus.NewRegistry())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(app),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server starting on port %s (dev=%v)", cfg.Server.Port, cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return errors.Annotate(err, "http server")
	case <-quit:
		logger.Infof("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Annotate(err, "shutdown")
	}
	logger.Infof("server stopped gracefully")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	httpLogger := loggo.GetLogger("acme.http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpLogger.Infof("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
