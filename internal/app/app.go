package app

import (
	"context"
	"errors"
	"lingua_backend/internal/config"
	"lingua_backend/internal/controller"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/configwatcher"
	"lingua_backend/pkg/database"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"lingua_backend/pkg/security"
	"lingua_backend/pkg/tracing"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	learningPath *repository.LearningPathRepository
	progress     *repository.ProgressRepository
}

type services struct {
	catalog  *service.CatalogService
	progress *service.ProgressService
}

type controllers struct {
	progress     *controller.ProgressController
	learningPath *controller.LearningPathController
	health       *controller.HealthController
}

// RegisterConfigCallback 配置文件热加载后依次回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		progress:     repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	policy, err := service.NewProgressPolicy(cfg.Progress)
	if err != nil {
		return nil, err
	}

	s := &services{}
	s.catalog = service.NewCatalogService(repos.learningPath, rdb, cfg.Progress.CatalogCacheTTL)
	s.progress = service.NewProgressService(db, repos.progress, repos.user, s.catalog, policy)
	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		progress:     controller.NewProgressController(s.progress),
		learningPath: controller.NewLearningPathController(s.catalog),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// reloadPolicy 只热更新进度策略；数据库、端口等变更需要重启
func (a *App) reloadPolicy(cfg *config.Config) {
	policy, err := service.NewProgressPolicy(cfg.Progress)
	if err != nil {
		logger.Log.Error("Ignoring invalid progress policy", zap.Error(err))
		return
	}
	a.services.progress.SetPolicy(policy)
	logger.Log.Info("Progress policy updated",
		zap.String("timezone", cfg.Progress.Timezone),
		zap.Int("maxAttempts", cfg.Progress.MaxAttempts),
		zap.Int("passingScore", cfg.Progress.PassingScore),
		zap.Int("maxReviewIntervalDays", cfg.Progress.MaxReviewIntervalDays))
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)
	app.RegisterConfigCallback(app.reloadPolicy)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lingua-progress", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	util.UseJSONFieldNames()
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.File != "" {
		go func() {
			err := configwatcher.Watch(ctx, a.Config.File, func(cfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(cfg)
				}
			})
			if err != nil {
				logger.Log.Warn("Config hot reload disabled", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("listen failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	// 等待进行中的请求完成（最多5秒）
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
