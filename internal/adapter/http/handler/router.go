package handler

import (
	"net/http"

	"meli-reconciler/internal/adapter/http/middleware"
	redisStore "meli-reconciler/internal/adapter/storage/redis"
	"meli-reconciler/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	NotificationSvc  ports.NotificationService
	ReconcilerSvc    ports.ReconcilerService
	CostSvc          ports.CostService
	JobSvc           ports.JobService
	RateLimitStore   *redisStore.RateLimitStore // nil = rate limiting disabled
	WebhookRateLimit int64                      // deliveries per minute per client IP
	HealthCheckers   []ports.HealthChecker
	MetricsHandler   http.Handler       // nil = /metrics disabled
	AuditSvc         ports.AuditService // nil = audit logging disabled
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Deep health check of PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules(deps.WebhookRateLimit)

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	api := r.Group("/api")

	// --- Marketplace webhook ---
	notificationHandler := NewNotificationHandler(deps.NotificationSvc)
	api.POST("/meliNotifications", rl(middleware.GroupNotifications), notificationHandler.Receive)

	// --- Reconciliation and maintenance ---
	orderHandler := NewOrderHandler(deps.ReconcilerSvc, deps.JobSvc)
	productHandler := NewProductHandler(deps.CostSvc)
	jobHandler := NewJobHandler(deps.JobSvc)

	api.POST("/pendingOrders/process-pending", rl(middleware.GroupAdmin), orderHandler.ProcessPending)
	api.GET("/orders/cost-coverage", orderHandler.CostCoverage)

	products := api.Group("/products", rl(middleware.GroupAdmin))
	{
		products.POST("/update-costs", productHandler.UpdateCosts)
		products.POST("/rebuild-costs", productHandler.RebuildCosts)
	}

	api.POST("/jobs/:job", rl(middleware.GroupAdmin), jobHandler.Run)

	return r
}
