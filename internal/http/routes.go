package http

import (
	nethttp "net/http"
	"os"
	"path/filepath"
	"time"

	"task_tracker/internal/config"
	"task_tracker/internal/http/handlers"
	"task_tracker/internal/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the routes need, built once at startup.
type Deps struct {
	Tasks   handlers.TaskStore
	DB      handlers.Pinger
	Limiter RateLimiter
	Config  *config.Config
}

type RateLimiter interface {
	Limit(maxRequests int, window time.Duration) gin.HandlerFunc
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.Metrics())
	r.Use(corsMiddleware(d.Config.AllowedOrigins))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// Browser UI: any path the API does not claim is looked up in PublicDir.
	if info, err := os.Stat(cfg.PublicDir); err == nil && info.IsDir() {
		index := filepath.Join(cfg.PublicDir, "index.html")
		r.GET("/", func(c *gin.Context) { c.File(index) })
		r.NoRoute(gin.WrapH(nethttp.FileServer(nethttp.Dir(cfg.PublicDir))))
	}

	healthHandler := handlers.NewHealthHandler(d.DB)
	r.GET("/health", healthHandler.Health)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.NewHandler(d.Tasks, cfg.IsDevelopment())
	tasks := r.Group("/tasks")
	if d.Limiter != nil {
		tasks.Use(d.Limiter.Limit(cfg.APIRateLimit, cfg.APIRateWindow))
	}
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cc.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}
