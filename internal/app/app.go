package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/newsletter/internal/config"
	"github.com/mx-space/newsletter/internal/database"
	"github.com/mx-space/newsletter/internal/middleware"
	"github.com/mx-space/newsletter/internal/models"
	"github.com/mx-space/newsletter/internal/modules/newsletter"
	"github.com/mx-space/newsletter/internal/modules/webhook"
	"github.com/mx-space/newsletter/internal/pkg/flash"
	"github.com/mx-space/newsletter/internal/pkg/mail"
	pkgredis "github.com/mx-space/newsletter/internal/pkg/redis"
	"github.com/mx-space/newsletter/internal/pkg/signer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	redis  *pkgredis.Client
	hooks  *webhook.Service
	logger *zap.Logger

	svc     *newsletter.Service
	handler *newsletter.Handler
	api     *newsletter.APIHandler
}

// New initializes the application: config → DB → Redis → services → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}
	if cfg.UsesDevelopmentSecret() {
		logger.Warn("secret is not set, using the built-in development secret")
	}

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Shutdown()
		}
	}()

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	var flashStore flash.Store = flash.NewMemoryStore(0)
	if cfg.Redis.Enable {
		rc, err := pkgredis.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = rc
		flashStore = flash.NewRedisStore(rc.Raw(), 0)
	}

	codec, err := signer.New(cfg.Secret, signer.WithMaxAge(cfg.Newsletter.TokenMaxAge))
	if err != nil {
		return nil, err
	}
	profile, err := newsletter.NewProfileSchema(cfg.Newsletter.Profile)
	if err != nil {
		return nil, err
	}

	links := newsletter.NewLinks(cfg.Site.URL, cfg.Newsletter.BasePath)
	sender := mail.New(mail.BuildMailConfig(cfg))
	notifier := newsletter.NewMailNotifier(sender, links, cfg.Site.Name, logger)

	a.hooks = webhook.NewService(cfg.Webhooks, logger)
	signals := newsletter.NewSignals(logger)
	a.connectListeners(signals)

	a.svc = newsletter.NewService(store, codec, notifier, signals, profile, logger)
	a.handler = newsletter.NewHandler(a.svc, flashStore, links, cfg.Site.Name, logger)
	a.api = newsletter.NewAPIHandler(a.svc, links, logger)

	a.router = newRouter(cfg, logger)
	a.registerRoutes()

	ok = true
	return a, nil
}

func (a *App) openStore() (newsletter.Store, error) {
	if a.cfg.Database.Driver == "memory" {
		a.logger.Warn("using the in-memory store, subscriptions will not survive a restart")
		return newsletter.NewMemoryStore(), nil
	}
	db, err := database.Connect(a.cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.db = db
	return newsletter.NewGormStore(db), nil
}

func (a *App) connectListeners(signals *newsletter.Signals) {
	audit := newsletter.AuditListener(a.logger)
	signals.Connect(newsletter.EventSubscribed, audit)
	signals.Connect(newsletter.EventUnsubscribed, audit)

	if !a.hooks.Enabled() {
		return
	}
	forward := func(name string) newsletter.Listener {
		return func(_ context.Context, _ newsletter.Event, sub *models.SubscriptionModel) {
			a.hooks.Dispatch(name, sub)
		}
	}
	signals.Connect(newsletter.EventSubscribed, forward(webhook.EventSubscribed))
	signals.Connect(newsletter.EventUnsubscribed, forward(webhook.EventUnsubscribed))
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown waits for webhook deliveries and closes connections.
func (a *App) Shutdown() {
	if a.hooks != nil {
		a.hooks.Wait()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
}

func newRouter(cfg *config.AppConfig, logger *zap.Logger) *gin.Engine {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(newCORS(cfg))
	router.SetHTMLTemplate(newsletter.Templates())
	return router
}
