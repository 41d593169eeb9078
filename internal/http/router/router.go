package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ignatzorin/watersafe-backend/internal/config"
	"github.com/ignatzorin/watersafe-backend/internal/http/handlers"
	"github.com/ignatzorin/watersafe-backend/internal/http/middleware"
	"github.com/ignatzorin/watersafe-backend/internal/observability"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
	"github.com/ignatzorin/watersafe-backend/internal/service"
)

// Handlers собирает все хэндлеры приложения.
type Handlers struct {
	Health *handlers.HealthHandler
	Report *handlers.ReportHandler
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
}

// Options - всё, что нужно роутеру помимо хэндлеров.
type Options struct {
	Tokens  *service.TokenManager
	Metrics *observability.Metrics
	// Gatherer отдаётся на /metrics; nil означает реестр по умолчанию.
	Gatherer prometheus.Gatherer
}

func SetupRouter(cfg *config.Config, h Handlers, opts Options) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("watersafe-hub"))
	r.Use(middleware.RequestLogger())
	if opts.Metrics != nil {
		r.Use(middleware.RequestMetrics(opts.Metrics))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)

	writeLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	moderation := middleware.Moderation(opts.Tokens, cfg.ModerationAuthEnabled)

	if h.Auth != nil {
		api.POST("/auth/login", middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod), h.Auth.Login)
	}

	// Обращения доступны и без префикса /api, по тем же правилам и с общим лимитом записи
	for _, g := range []*gin.RouterGroup{&r.RouterGroup, api} {
		registerReportRoutes(g, h.Report, opts.Tokens, writeLimit, moderation)
	}

	if h.User != nil {
		api.POST("/users", writeLimit, h.User.Upsert)
		users := api.Group("/users")
		users.Use(moderation...)
		users.GET("", h.User.List)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: "Not found", Code: "NOT_FOUND"})
	})

	return r
}

func registerReportRoutes(g *gin.RouterGroup, h *handlers.ReportHandler, tokens *service.TokenManager, writeLimit gin.HandlerFunc, moderation []gin.HandlerFunc) {
	// Публичные маршруты; токен сотрудника, если есть, открывает email заявителя
	reports := g.Group("/reports")
	reports.Use(middleware.OptionalAuth(tokens))
	{
		reports.GET("", h.List)
		reports.GET("/stats", h.Stats)
		reports.GET("/map", h.Map)
		reports.GET("/code/:code", h.GetByCode)
		reports.GET("/:id", middleware.UUIDValidator("id", apperror.ErrReportNotFound), h.Get)
		reports.POST("", writeLimit, h.Create)
	}

	// Модерация
	moderated := reports.Group("")
	moderated.Use(moderation...)
	{
		moderated.PATCH("/:id", middleware.UUIDValidator("id", apperror.ErrReportNotFound), h.Update)
		moderated.DELETE("/:id", middleware.UUIDValidator("id", apperror.ErrReportNotFound), h.Delete)
	}
}
