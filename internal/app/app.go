package app

import (
	"context"
	"log"
	"logicfy_backend/internal/config"
	"logicfy_backend/internal/controller"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/service"
	"logicfy_backend/pkg/configwatcher"
	"logicfy_backend/pkg/database"
	"logicfy_backend/pkg/logger"
	"logicfy_backend/pkg/monitoring"
	"logicfy_backend/pkg/security"
	"logicfy_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiter         *security.IPRateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	ctx             context.Context
	cancel          context.CancelFunc
}

type repositories struct {
	user        *repository.UserRepository
	content     *repository.ContentRepository
	answer      *repository.AnswerRepository
	enrollment  *repository.EnrollmentRepository
	progress    *repository.ProgressRepository
	xp          *repository.XpRepository
	analytics   *repository.AnalyticsRepository
	leaderboard *repository.LeaderboardCache
	dashboard   *repository.DashboardCache
}

type services struct {
	settings   *service.SettingsStore
	content    *service.ContentService
	user       *service.UserService
	xp         *service.XpService
	analytics  *service.AnalyticsService
	progress   *service.ProgressService
	answer     *service.AnswerService
	enrollment *service.EnrollmentService
	dashboard  *service.DashboardService
	repair     *service.RepairService
	repairs    *service.RepairQueue
}

type controllers struct {
	answer     *controller.AnswerController
	progress   *controller.ProgressController
	xp         *controller.XpController
	enrollment *controller.EnrollmentController
	analytics  *controller.AnalyticsController
	dashboard  *controller.DashboardController
	content    *controller.ContentController
	repair     *controller.RepairController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		content:     repository.NewContentRepository(db),
		answer:      repository.NewAnswerRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		progress:    repository.NewProgressRepository(db),
		xp:          repository.NewXpRepository(db),
		analytics:   repository.NewAnalyticsRepository(db),
		leaderboard: repository.NewLeaderboardCache(rdb),
		dashboard:   repository.NewDashboardCache(rdb, cfg.Analytics.DashboardCacheTTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.settings = service.NewSettingsStore(service.SettingsFromConfig(cfg))

	// 多实例部署时进度重算需要跨进程互斥
	var locker service.Locker = service.NewLocalLocker()
	if rdb != nil {
		locker = service.NewRedisLocker(rdb)
	}

	s.content = service.NewContentService(repos.content)
	s.user = service.NewUserService(repos.user, repos.answer, s.settings)
	s.xp = service.NewXpService(db, repos.xp, repos.user, repos.leaderboard, s.settings)
	s.analytics = service.NewAnalyticsService(db, repos.analytics, repos.answer, repos.content, s.settings)
	s.progress = service.NewProgressService(db, repos.content, repos.answer, repos.progress, repos.user, locker)
	s.enrollment = service.NewEnrollmentService(db, repos.enrollment, repos.content, repos.user, s.progress)

	s.repair = service.NewRepairService(
		s.content,
		s.progress,
		s.xp,
		s.analytics,
		s.user,
		repos.answer,
		repos.enrollment,
		repos.progress,
	)
	s.repairs = service.NewRepairQueue(s.repair, cfg.Repair.QueueSize, cfg.Repair.MaxAttempts, cfg.Repair.InitialBackoff)

	s.answer = service.NewAnswerService(
		repos.answer,
		repos.content,
		repos.user,
		service.NewGrader(),
		s.analytics,
		s.xp,
		s.progress,
		s.user,
		s.repairs,
		s.settings,
	)

	s.dashboard = service.NewDashboardService(
		repos.content,
		repos.enrollment,
		repos.answer,
		s.analytics,
		s.xp,
		s.progress,
		repos.dashboard,
		cfg.Analytics.HardestDefaultLimit,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		answer:     controller.NewAnswerController(s.answer),
		progress:   controller.NewProgressController(s.progress),
		xp:         controller.NewXpController(s.xp),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		analytics:  controller.NewAnalyticsController(s.analytics, a.Config.Analytics.HardestDefaultLimit),
		dashboard:  controller.NewDashboardController(s.dashboard),
		content:    controller.NewContentController(s.content),
		repair:     controller.NewRepairController(s.repair),
		health:     controller.NewHealthController(db, rdb, s.repairs),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	go s.repairs.Run(a.ctx)
	go a.limiter.RunCleanup(a.ctx)

	interval := cfg.Analytics.LessonRecomputeInterval
	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-a.ctx.Done():
					return
				case <-ticker.C:
					n, err := s.analytics.RecomputeAllLessonPerformance(a.ctx)
					if err != nil {
						logger.Log.Error("Scheduled lesson performance recompute failed", zap.Error(err))
						continue
					}
					logger.Log.Debug("Lesson performance recomputed", zap.Int("lessons", n))
				}
			}
		}()
	}

	go func() {
		err := configwatcher.WatchConfig(a.ctx, filepath.Clean(configFile), func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher not started", zap.Error(err))
		}
	}()
}

// registerReloaders 热更新只覆盖积分规则、时区与限流，其余配置需重启生效
func (a *App) registerReloaders(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.settings.Store(service.SettingsFromConfig(cfg))
		logger.Log.Info("Gamification settings reloaded",
			zap.Int("xp_fast_answer", cfg.Gamification.XPFastAnswer),
			zap.Int("xp_slow_answer", cfg.Gamification.XPSlowAnswer),
			zap.Int("fast_answer_ms", cfg.Gamification.FastAnswerMs),
			zap.Int("xp_per_level", cfg.Gamification.XPPerLevel))
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.limiter.Update(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// release 模式默认不自动迁移，需显式 -migrate
	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migrated")
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb
	app.ctx, app.cancel = context.WithCancel(context.Background())
	app.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("logicfy-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.registerReloaders(services)
	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 请求处理完后再停后台任务，保证最后一批修复任务已入队
	a.cancel()
	a.services.repairs.Wait()
	if n := a.services.repairs.Len(); n > 0 {
		logger.Log.Warn("Repair tasks left unprocessed at shutdown", zap.Int("pending", n))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
