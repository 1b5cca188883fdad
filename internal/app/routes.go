package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/newsletter/internal/database"
	"github.com/mx-space/newsletter/internal/middleware"
)

func (a *App) registerRoutes() {
	a.router.GET("/healthz", a.health)

	var limits []gin.HandlerFunc
	if a.redis != nil {
		rl := a.cfg.Newsletter.RateLimit
		limits = append(limits, middleware.RateLimit(a.redis.Raw(), rl.Max, rl.Window, a.logger))
	}

	web := a.router.Group("", limits...)
	a.handler.RegisterRoutes(web)

	api := a.router.Group("/api/v1", limits...)
	if a.redis != nil {
		api.Use(middleware.Idempotence(a.redis.Raw()))
	}
	a.api.RegisterRoutes(api, middleware.AdminAuth(a.cfg.AdminToken))

	a.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": 0, "code": http.StatusNotFound, "message": "Not Found"})
	})
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"ok": 1, "database": "memory", "redis": "disabled"}
	code := http.StatusOK
	if a.db != nil {
		status["database"] = "up"
		if err := database.Ping(ctx, a.db); err != nil {
			status["database"], status["ok"], code = "down", 0, http.StatusServiceUnavailable
		}
	}
	if a.redis != nil {
		status["redis"] = "up"
		if err := a.redis.Ping(ctx); err != nil {
			status["redis"], status["ok"], code = "down", 0, http.StatusServiceUnavailable
		}
	}
	c.JSON(code, status)
}
