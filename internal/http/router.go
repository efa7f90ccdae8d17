// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/guaianases/go-recruiting-backend/internal/config"
	"github.com/guaianases/go-recruiting-backend/internal/domain"
	"github.com/guaianases/go-recruiting-backend/internal/http/handlers"
	"github.com/guaianases/go-recruiting-backend/internal/http/middleware"
	"github.com/guaianases/go-recruiting-backend/internal/notifycache"
	"github.com/guaianases/go-recruiting-backend/internal/repo"
	"github.com/guaianases/go-recruiting-backend/internal/services"
)

// applicationRepoShim adapts the repository free functions to the
// services.ApplicationRepo interface expected by the ApplicationService. This
// keeps services decoupled from the concrete repo package while reusing
// existing functions.
type applicationRepoShim struct{}

// CreateApplication proxies repo.CreateApplication.
func (applicationRepoShim) CreateApplication(ctx context.Context, db *gorm.DB, fullName, idGame string, age int, phone string) (*domain.Application, error) {
	return repo.CreateApplication(ctx, db, fullName, idGame, age, phone)
}

// ListApplications proxies repo.ListApplications.
func (applicationRepoShim) ListApplications(ctx context.Context, db *gorm.DB) ([]domain.Application, error) {
	return repo.ListApplications(ctx, db)
}

// GetApplication proxies repo.GetApplication.
func (applicationRepoShim) GetApplication(ctx context.Context, db *gorm.DB, id string) (*domain.Application, error) {
	return repo.GetApplication(ctx, db, id)
}

// UpdateApplicationStatus proxies repo.UpdateApplicationStatus.
func (applicationRepoShim) UpdateApplicationStatus(ctx context.Context, db *gorm.DB, id string, status domain.Status) error {
	return repo.UpdateApplicationStatus(ctx, db, id, status)
}

// DeleteApplication proxies repo.DeleteApplication.
func (applicationRepoShim) DeleteApplication(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteApplication(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity forwarding,
// idempotency and rate limiting, CORS and security headers, health and metrics
// endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: stash forwarded X-User-* headers
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter + gzip
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cache *notifycache.Cache, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Trusted-header identity (gateway forwards X-User-*)
	r.Use(middleware.Identity())

	// 4) Structured logging with redaction (intake carries candidate PII)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderUserName, // reviewer display names stay out of logs
		},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderUserID, middleware.HeaderUserName, middleware.HeaderUserRole,
		middleware.HeaderIdempotencyKey,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/cache
	notifier := services.NewNotifierService(db)
	appSvc := services.NewApplicationService(db, applicationRepoShim{}, notifier)
	notifSvc := services.NewNotificationService(db)
	h := handlers.New(appSvc, notifSvc, cache, cfg.IdempotencyTTL)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Public intake
		api.POST("/applications", h.SubmitApplication)

		// Review console (admin only)
		admin := api.Group("", middleware.RequireRole("admin"))
		{
			admin.GET("/applications", h.ListApplications)
			admin.PUT("/applications/:id/status", h.UpdateApplicationStatus)
			admin.DELETE("/applications/:id", h.DeleteApplication)

			admin.GET("/notifications", h.ListNotifications)
			admin.DELETE("/notifications", h.ClearNotifications)
			admin.PUT("/notifications/:id/read", h.MarkNotificationRead)
			admin.DELETE("/notifications/:id", h.DeleteNotification)

			admin.GET("/notifications/cache", h.GetCachedNotifications)
			admin.DELETE("/notifications/cache", h.ClearCachedNotifications)
			admin.DELETE("/notifications/cache/:id", h.RemoveCachedNotification)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
