package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-web/internal/apiclient"
	"github.com/helpdesk-io/helpdesk-web/internal/auth"
	"github.com/helpdesk-io/helpdesk-web/internal/config"
	"github.com/helpdesk-io/helpdesk-web/internal/logger"
	"github.com/helpdesk-io/helpdesk-web/internal/metrics"
	"github.com/helpdesk-io/helpdesk-web/internal/server"
	"github.com/helpdesk-io/helpdesk-web/internal/session"
	"github.com/helpdesk-io/helpdesk-web/internal/template"
	"github.com/helpdesk-io/helpdesk-web/internal/version"
)

const sweepSchedule = "@every 1m"

var templatesDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&templatesDir, "templates", "", "Load templates from this directory instead of the built-in set")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, level, err := logger.NewAtomic(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	limiter := auth.NewLoginRateLimiter(limiterConfig(cfg))

	config.OnReload(func(next *config.Config) {
		if err := logger.SetLevel(level, next.Logging.Level); err != nil {
			log.Warn("keeping log level", zap.Error(err))
		}
		limiter.Configure(limiterConfig(next))
	})
	config.Watch(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sweeper, err := sweepLockouts(limiter, log)
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	client := apiclient.New(apiclient.Config{
		BaseURL:   cfg.Backend.BaseURL,
		UserAgent: cfg.Backend.UserAgent,
		Timeout:   cfg.Backend.Timeout,
		Debug:     cfg.Backend.Debug,
		Observer:  m,
	})
	sessions := session.NewManager(store, client.Auth, session.Options{
		TTL:      cfg.Session.TTL,
		Limiter:  limiter,
		Observer: m,
		Logger:   log,
	})

	renderer, err := template.New(template.Options{Dir: templatesDir, AppName: cfg.App.Name, Logger: log})
	if err != nil {
		return err
	}
	defer func() { _ = renderer.Close() }()
	if cfg.App.Debug {
		if err := renderer.Watch(); err != nil {
			log.Warn("template reload disabled", zap.Error(err))
		}
	}

	engine, err := server.New(server.Options{
		Config:   cfg,
		Live:     config.Get,
		Logger:   log,
		Metrics:  m,
		Client:   client,
		Sessions: sessions,
		Renderer: renderer,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("helpdesk-web listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("version", version.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore builds the configured session store. The in-memory store sweeps
// expired sessions itself and reports how many are live.
func openStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (session.Store, error) {
	if cfg.Session.Store == "redis" {
		store, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.Redis.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		log.Info("sessions stored in redis", zap.String("addr", cfg.Redis.GetRedisAddr()))
		return store, nil
	}

	store := session.NewMemoryStore()
	if err := store.StartSweeper(sweepSchedule, m.SetActiveSessions); err != nil {
		return nil, err
	}
	return store, nil
}

// sweepLockouts forgets failed-login records that no longer block anyone.
func sweepLockouts(limiter *auth.LoginRateLimiter, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(sweepSchedule, func() {
		if n := limiter.Sweep(); n > 0 {
			log.Debug("expired login lockouts", zap.Int("count", n))
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func limiterConfig(cfg *config.Config) auth.LimiterConfig {
	return auth.LimiterConfig{
		MaxAttempts: cfg.Auth.LoginMaxAttempts,
		Window:      cfg.Auth.LoginWindow,
		BaseBackoff: cfg.Auth.LoginBackoff,
		MaxBackoff:  cfg.Auth.LoginMaxBackoff,
	}
}
