// Package server assembles the gin engine: global middleware, guards, the
// view handlers and the static route table.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-web/internal/apiclient"
	"github.com/helpdesk-io/helpdesk-web/internal/auth"
	"github.com/helpdesk-io/helpdesk-web/internal/config"
	"github.com/helpdesk-io/helpdesk-web/internal/format"
	"github.com/helpdesk-io/helpdesk-web/internal/metrics"
	"github.com/helpdesk-io/helpdesk-web/internal/middleware"
	"github.com/helpdesk-io/helpdesk-web/internal/routing"
	"github.com/helpdesk-io/helpdesk-web/internal/session"
	"github.com/helpdesk-io/helpdesk-web/internal/validation"
	"github.com/helpdesk-io/helpdesk-web/internal/views"
)

var validatorOnce sync.Once

// useFormValidator makes gin report binding errors under form field names.
func useFormValidator() {
	validatorOnce.Do(func() {
		binding.Validator = validation.New()
	})
}

// Options carries the components built by the caller.
type Options struct {
	Config *config.Config
	// Live returns the configuration after reloads. The restore wait and
	// the default view follow it; everything else is fixed at startup.
	// Defaults to Config.
	Live     func() *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Client   *apiclient.Client
	Sessions *session.Manager
	Renderer middleware.Renderer
	// Routes defaults to the embedded route table.
	Routes []*routing.RouteConfig
	Now    func() time.Time
}

// SessionConfig derives the cookie settings from cfg.
func SessionConfig(cfg *config.Config) middleware.SessionConfig {
	return middleware.SessionConfig{
		CookieName:  cfg.Session.CookieName,
		Secure:      cfg.Session.Secure,
		MaxAge:      cfg.Session.TTL,
		RestoreWait: cfg.Session.RestoreWait,
	}
}

// New builds the engine. Every handler and middleware named by the route
// table must resolve, or New fails.
func New(opts Options) (*gin.Engine, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Sessions == nil || opts.Client == nil || opts.Renderer == nil {
		return nil, errors.New("server: sessions, client and renderer are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cfg := opts.Config
	live := opts.Live
	if live == nil {
		live = func() *config.Config { return cfg }
	}
	defaultView := func() string { return live().App.DefaultView }
	useFormValidator()

	routes := opts.Routes
	if routes == nil {
		var err error
		if routes, err = routing.DefaultConfigs(); err != nil {
			return nil, err
		}
	}

	calendar, err := format.NewBusinessCalendar(cfg.Calendar.WorkdayStart, cfg.Calendar.WorkdayEnd, cfg.Calendar.Holidays)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}

	sessCfg := SessionConfig(cfg)
	sessCfg.CurrentWait = func() time.Duration { return live().Session.RestoreWait }
	rbac := auth.NewRBAC()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.AccessLog(opts.Logger),
		middleware.Recovery(opts.Logger, opts.Renderer),
		middleware.Language(cfg.App.DefaultLanguage),
		middleware.SessionLoader(opts.Sessions, sessCfg),
	)

	guards := middleware.NewGuards(middleware.GuardOptions{
		Manager:  opts.Sessions,
		Session:  sessCfg,
		RBAC:     rbac,
		Renderer: opts.Renderer,
		Observer: opts.Metrics,
		Logger:   opts.Logger,
	})

	reg := routing.NewHandlerRegistry()
	if err := reg.RegisterMiddlewareBatch(map[string]gin.HandlerFunc{
		"auth":    guards.RequireAuth(),
		"admin":   guards.RequireRole("Admin"),
		"reports": guards.RequirePermission(auth.PermissionReportView),
		"assets":  guards.RequirePermission(auth.PermissionAssetView),
	}); err != nil {
		return nil, err
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled && opts.Metrics != nil {
		metricsHandler = opts.Metrics.Handler()
	}

	handlers := views.New(views.Deps{
		Client:      opts.Client,
		Sessions:    opts.Sessions,
		Guards:      guards,
		Renderer:    opts.Renderer,
		Session:     sessCfg,
		RBAC:        rbac,
		Calendar:    calendar,
		Workday:     [2]string{cfg.Calendar.WorkdayStart, cfg.Calendar.WorkdayEnd},
		Metrics:     metricsHandler,
		DefaultView: defaultView,
		Logger:      opts.Logger,
		Now:         opts.Now,
	})
	if err := handlers.Register(reg); err != nil {
		return nil, err
	}

	if err := routing.Build(engine, reg, routes, routing.Options{
		DefaultView:        defaultView,
		FallbackMiddleware: []string{"auth"},
		Logger:             opts.Logger,
	}); err != nil {
		return nil, err
	}
	return engine, nil
}
