package http

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/config"
	"github.com/turtacn/tgroups/internal/infrastructure/monitoring"
	"github.com/turtacn/tgroups/internal/interfaces/http/handlers"
	"github.com/turtacn/tgroups/internal/interfaces/http/middleware"
	"github.com/turtacn/tgroups/pkg/errors"
	"github.com/turtacn/tgroups/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by the router.
type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Group  *handlers.GroupHandler
	Config *handlers.ConfigHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	config   *config.Config
	logger   logger.Logger
	handlers Handlers
	tracing  *monitoring.TracingManager
	metrics  *monitoring.Metrics
	gatherer prometheus.Gatherer
	server   *http.Server
}

// NewRouter 创建路由器
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	h Handlers,
	tracing *monitoring.TracingManager,
	metrics *monitoring.Metrics,
	gatherer prometheus.Gatherer,
) *Router {
	// 设置 Gin 模式
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		config:   cfg,
		logger:   log.WithComponent("Router"),
		handlers: h,
		tracing:  tracing,
		metrics:  metrics,
		gatherer: gatherer,
	}
	r.setupRoutes()
	r.server = &http.Server{
		Addr:           cfg.Server.Address(),
		Handler:        r.engine,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.ObservabilityMiddleware(r.tracing, r.metrics))
	r.engine.Use(middleware.Logging(r.logger))

	// CORS 配置
	corsConfig := cors.Config{
		AllowOrigins:  r.config.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 || (len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	r.engine.Use(cors.New(corsConfig))

	// 健康检查路由
	r.engine.GET("/health", r.handlers.Health.HealthCheck)
	r.engine.GET("/ready", r.handlers.Health.ReadinessCheck)
	r.engine.GET("/live", r.handlers.Health.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	// Pprof 性能分析（仅在非生产环境）
	if r.config.Server.Environment != "production" {
		pprof.Register(r.engine)
	}

	api := r.engine.Group("/api")
	{
		api.GET("/config", r.handlers.Config.GetConfig)
		api.POST("/config", r.handlers.Config.UpdateConfig)

		auth := api.Group("/auth")
		{
			auth.POST("/send-phone", r.handlers.Auth.SendPhone)
			auth.POST("/send-code", r.handlers.Auth.SendCode)
			auth.POST("/send-password", r.handlers.Auth.SendPassword)
		}
		api.POST("/logout", r.handlers.Auth.Logout)

		api.GET("/groups", r.handlers.Group.ListGroups)
		api.POST("/leave-groups", r.handlers.Group.LeaveGroups)
	}

	// 静态页面与 404 处理
	static := r.config.Server.StaticDir
	if info, err := os.Stat(static); err == nil && info.IsDir() {
		fileServer := http.FileServer(http.Dir(static))
		r.engine.NoRoute(func(c *gin.Context) {
			if c.Request.Method == http.MethodGet && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
			dto.SendError(c, errors.ErrNotFound("route"))
		})
		return
	}
	r.logger.Warn(context.Background(), "Static directory not found, UI disabled", logger.String("dir", static))
	r.engine.NoRoute(func(c *gin.Context) {
		dto.SendError(c, errors.ErrNotFound("route"))
	})
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", r.server.Addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

// Engine returns the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

//Personal.AI order the ending
