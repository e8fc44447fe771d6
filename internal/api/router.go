package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campus-crowd-backend/internal/crowd"
	"campus-crowd-backend/internal/mw"
	"campus-crowd-backend/internal/store"
)

// Options carries the router's optional collaborators. Zero values get
// working defaults.
type Options struct {
	WebPush  *webpush.Options
	Notifier Notifier
	Cache    *mw.ResponseCache
	CacheTTL time.Duration
	Registry *prometheus.Registry
	Metrics  *mw.Metrics
	Logger   *zap.Logger
	Rand     crowd.Rand
	// Timezone sets the local clock for user badges.
	Timezone *time.Location

	RateLimit rate.Limit
	RateBurst int
}

func (o *Options) applyDefaults() {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.Cache == nil {
		o.Cache = mw.NewResponseCache(o.CacheTTL, 2*o.CacheTTL)
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
	if o.Metrics == nil {
		o.Metrics = mw.NewMetrics(o.Registry)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Rand == nil {
		o.Rand = crowd.DefaultRand
	}
	if o.Timezone == nil {
		o.Timezone = time.UTC
	}
	if o.RateLimit <= 0 {
		o.RateLimit = rate.Limit(10)
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 5
	}
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, opts Options) *gin.Engine {
	opts.applyDefaults()

	r := gin.New()
	r.Use(gin.Recovery(), mw.AccessLog(opts.Logger), opts.Metrics.Middleware())

	handler := NewHandler(s, opts.WebPush)
	handler.notifier = opts.Notifier
	handler.cache = opts.Cache
	handler.metrics = opts.Metrics
	handler.logger = opts.Logger
	handler.rand = opts.Rand
	handler.tz = opts.Timezone

	limiter := mw.NewIPRateLimiter(opts.RateLimit, opts.RateBurst, 10*time.Minute)
	rateLimiter := mw.RateLimiter(limiter, func(*gin.Context) {
		opts.Metrics.RateLimitRejects.Inc()
	})
	caching := opts.Cache.Middleware(opts.CacheTTL)

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/locations", caching, handler.GetLocations)
		api.GET("/locations/:id", caching, handler.GetLocation)
		// History is regenerated on every request and is never cached.
		api.GET("/locations/:id/history", handler.GetHistory)
		api.GET("/locations/:id/vouches", caching, handler.GetVouches)
		api.POST("/locations/:id/vouches", handler.PostVouch)
		api.POST("/vouches/:id/helpful", handler.MarkHelpful)

		api.GET("/users/:id/stats", handler.GetUserStats)

		api.GET("/summary", caching, handler.GetSummary)
		api.GET("/nearby", caching, handler.GetNearby)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
