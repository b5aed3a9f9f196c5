package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Jiawei57/steam-analytics-engine/internal/cache/lru"
	"github.com/Jiawei57/steam-analytics-engine/internal/cache/snapshot"
	"github.com/Jiawei57/steam-analytics-engine/internal/handler"
	"github.com/Jiawei57/steam-analytics-engine/internal/middleware"
	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
	"github.com/Jiawei57/steam-analytics-engine/internal/service"
	"github.com/Jiawei57/steam-analytics-engine/pkg/config"
	"github.com/Jiawei57/steam-analytics-engine/pkg/etcd"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "./conf/server.ini", "Config file path")
	port       = flag.Int("port", 0, "Server port (overrides config)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *debug {
		cfg.Server.Debug = true
	}

	// 设置日志级别
	if cfg.Server.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Info("===========================================")
	logrus.Info("  Steam Analytics Data Service")
	logrus.Info("===========================================")
	logrus.Infof("Database: %s (%s)", cfg.Database.DSN(), cfg.Database.Driver)
	logrus.Infof("Port: %d", cfg.Server.Port)
	logrus.Infof("Cache Size: %.2f MB", float64(cfg.Cache.MaxBytes)/(1024*1024))

	// 初始化Repository，数据库不可用时降级到处理后CSV
	store := openStore(cfg)
	defer store.Close()
	logrus.Info("Repository initialized")

	// 初始化缓存与快照管理
	cache := lru.New(cfg.Cache.MaxBytes, time.Duration(cfg.Cache.TTLSeconds)*time.Second, nil)
	snap := snapshot.NewManager(cache, cfg.Cache.SnapshotPath)
	if n, err := snap.Load(); err != nil {
		logrus.Warnf("Cache snapshot load failed: %v", err)
	} else if n > 0 {
		logrus.Infof("Cache snapshot restored: %d entries", n)
	}
	snap.AutoSnapshot(time.Duration(cfg.Cache.SnapshotInterval) * time.Minute)

	// 初始化Service
	dashboardService, err := service.NewDashboardService(store, cache)
	if err != nil {
		log.Fatalf("Failed to initialize dashboard service: %v", err)
	}

	reviewService := service.NewReviewService(openReviewScanner(cfg), cache)

	recommendService := service.NewRecommendService(store, cfg.Recommend.ModelPath,
		cfg.Recommend.MaxFeatures, cfg.Recommend.TopK)
	if err := recommendService.Load(); err != nil {
		logrus.Warnf("Recommend model not ready: %v", err)
	}
	logrus.Info("Services initialized")

	// 预热缓存
	go func() {
		time.Sleep(2 * time.Second) // 等待服务启动
		if err := dashboardService.Warmup(); err != nil {
			logrus.Warnf("Dashboard warmup failed: %v", err)
		}
		recommendService.Warmup()
	}()

	// 初始化Handler
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	recommendHandler := handler.NewRecommendHandler(recommendService)
	logrus.Info("Handlers initialized")

	// 注册到etcd（配置了endpoints才注册），拿到注册中心客户端供监控接口做实例发现
	registry := registerService(cfg)
	if registry != nil {
		defer registry.Close()
	}

	// 初始化路由
	router := setupRouter(cfg, registry, dashboardHandler, reviewHandler, recommendHandler)
	logrus.Info("Router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logrus.Infof("Starting server on %s", addr)
		logrus.Info("===========================================")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 优雅退出，停机前保存缓存快照
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}

	snap.Stop()
	logrus.Info("Server exited")
}

// openStore 打开主数据库，失败时降级到处理后CSV内存仓库
func openStore(cfg *config.Config) repository.GameStore {
	store, err := repository.NewSQLRepository(cfg.Database.Driver, cfg.Database.DSN())
	if err == nil {
		return store
	}
	logrus.Warnf("Database unavailable (%v), falling back to processed CSV", err)

	memStore, err := repository.NewMemoryRepositoryFromCSV(cfg.ETL.ProcessedCSV)
	if err != nil {
		log.Fatalf("Fallback CSV load failed: %v", err)
	}
	return memStore
}

// openReviewScanner 打开评论扫描器，文件缺失时评论接口返回未找到
func openReviewScanner(cfg *config.Config) *repository.ReviewScanner {
	if cfg.Reviews.Path == "" {
		logrus.Warn("Reviews path not configured, review analysis disabled")
		return nil
	}
	scanner, err := repository.NewReviewScanner(cfg.Reviews.Path)
	if err != nil {
		logrus.Warnf("Review scanner unavailable: %v", err)
		return nil
	}
	return scanner
}

// registerService 注册服务到etcd，返回客户端供监控接口查询同名实例
func registerService(cfg *config.Config) *etcd.Client {
	if cfg.Etcd.Endpoints == "" {
		return nil
	}

	client, err := etcd.NewClient(strings.Split(cfg.Etcd.Endpoints, ","))
	if err != nil {
		logrus.Warnf("Etcd connect failed: %v", err)
		return nil
	}

	addr := cfg.Server.ServiceAddr
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	}

	if err := client.Register(cfg.Etcd.Prefix, cfg.Server.ServiceName, addr, cfg.Etcd.TTL); err != nil {
		logrus.Warnf("Etcd register failed: %v", err)
		client.Close()
		return nil
	}
	logrus.Infof("Service registered to etcd: %s -> %s", cfg.Server.ServiceName, addr)
	return client
}

func setupRouter(cfg *config.Config, registry *etcd.Client, dashboardHandler *handler.DashboardHandler,
	reviewHandler *handler.ReviewHandler, recommendHandler *handler.RecommendHandler) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 初始化限流器和熔断器
	middleware.InitGlobalRateLimiter()
	middleware.InitGlobalCircuitBreaker()
	logrus.Info("Middleware initialized (rate limiter & circuit breaker)")

	r.Use(middleware.RateLimitMiddleware())
	r.Use(middleware.CircuitBreakerMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// 数据分析API接口
	apiGroup := r.Group("/steam/api/data/v1")
	{
		// 仪表盘查询
		apiGroup.POST("/dashboard", dashboardHandler.Query)
		apiGroup.POST("/dashboard/", dashboardHandler.Query)

		// 评论分析
		apiGroup.POST("/reviews", reviewHandler.Analyze)
		apiGroup.POST("/reviews/", reviewHandler.Analyze)

		// 游戏推荐
		apiGroup.POST("/recommend", recommendHandler.Recommend)
		apiGroup.POST("/recommend/", recommendHandler.Recommend)
		apiGroup.POST("/recommend/rebuild", recommendHandler.Rebuild)

		// 辅助查询
		apiGroup.GET("/genres", dashboardHandler.Genres)
		apiGroup.GET("/titles", recommendHandler.Titles)
		apiGroup.GET("/stats", dashboardHandler.Stats)
		apiGroup.POST("/refresh", dashboardHandler.Refresh)
	}

	// 监控接口
	monitorGroup := r.Group("/monitor")
	{
		// 熔断器状态
		monitorGroup.GET("/circuitbreaker", func(c *gin.Context) {
			stats := middleware.GetAllCircuitBreakerStats()
			c.JSON(200, gin.H{
				"code":    200,
				"message": "success",
				"data":    stats,
			})
		})

		// 系统状态，注册到etcd时附带同名服务的实例列表
		monitorGroup.GET("/status", func(c *gin.Context) {
			data := gin.H{
				"circuit_breaker": middleware.GetAllCircuitBreakerStats(),
			}
			if registry != nil {
				peers, err := registry.Discover(cfg.Etcd.Prefix, cfg.Server.ServiceName)
				if err != nil {
					logrus.Warnf("Etcd discover failed: %v", err)
				} else {
					data["peers"] = peers
				}
			}
			c.JSON(200, gin.H{
				"code":    200,
				"message": "success",
				"data":    data,
			})
		})
	}

	return r
}
