package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/medibook/booking-gateway/internal/handler"
	authHandler "github.com/medibook/booking-gateway/internal/handler/auth"
	bookingHandler "github.com/medibook/booking-gateway/internal/handler/booking"
	catalogHandler "github.com/medibook/booking-gateway/internal/handler/catalog"
	hcsHandler "github.com/medibook/booking-gateway/internal/handler/hcs"
	notificationHandler "github.com/medibook/booking-gateway/internal/handler/notification"
	slotcheckHandler "github.com/medibook/booking-gateway/internal/handler/slotcheck"
	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/model"
)

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         *authHandler.Handler
	catalogH      *catalogHandler.Handler
	slotcheckH    *slotcheckHandler.Handler
	bookingH      *bookingHandler.Handler
	hcsH          *hcsHandler.Handler
	notificationH *notificationHandler.Handler
	h             *handler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimit     rate.Limit
	RateBurst     int
	Timeout       time.Duration
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	catalogH *catalogHandler.Handler,
	slotcheckH *slotcheckHandler.Handler,
	bookingH *bookingHandler.Handler,
	hcsH *hcsHandler.Handler,
	notificationH *notificationHandler.Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()

	engine := gin.New()

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		catalogH:      catalogH,
		slotcheckH:    slotcheckH,
		bookingH:      bookingH,
		hcsH:          hcsH,
		notificationH: notificationH,
		h:             h,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   float64(config.RateLimit),
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterPublicRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	// Routes shared by every signed-in role
	r.authH.RegisterRoutes(rg)
	r.catalogH.RegisterRoutes(rg)
	r.hcsH.RegisterRoutes(rg)
	r.bookingH.RegisterRoutes(rg)
	r.notificationH.RegisterRoutes(rg)

	// The slot checker dashboard belongs to center staff and superadmins
	staff := rg.Group("")
	staff.Use(r.auth.RequireRole(model.RoleHCSAdmin, model.RoleSuperadmin))
	r.slotcheckH.RegisterRoutes(staff)

	// Customers drive the booking wizard
	customers := rg.Group("")
	customers.Use(r.auth.RequireRole(model.RoleCustomer))
	r.bookingH.RegisterWizardRoutes(customers)

	// Assignment review is superadmin only
	admin := rg.Group("")
	admin.Use(r.auth.RequireRole(model.RoleSuperadmin))
	r.hcsH.RegisterReviewRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}

func (r *Router) Use(middleware ...gin.HandlerFunc) {
	r.engine.Use(middleware...)
}
