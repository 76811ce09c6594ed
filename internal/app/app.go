package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"chainedu_backend/internal/config"
	"chainedu_backend/internal/controller"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/service"
	"chainedu_backend/pkg/database"
	"chainedu_backend/pkg/logger"
	"chainedu_backend/pkg/monitoring"
	"chainedu_backend/pkg/security"
	"chainedu_backend/pkg/tracing"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	module       *repository.ModuleRepository
	progress     *repository.ProgressRepository
	assessment   *repository.AssessmentRepository
	achievement  *repository.AchievementRepository
	cohort       *repository.CohortRepository
	forum        *repository.ForumRepository
	notification *repository.NotificationRepository
	assistant    *repository.AssistantRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	module       *service.ModuleService
	progress     *service.ProgressService
	assessment   *service.AssessmentService
	grading      *service.GradingService
	achievement  *service.AchievementService
	cohort       *service.CohortService
	forum        *service.ForumService
	notification *service.NotificationService
	assistant    *service.AssistantService
}

type controllers struct {
	auth         *controller.AuthController
	module       *controller.ModuleController
	progress     *controller.ProgressController
	assessment   *controller.AssessmentController
	grading      *controller.GradingController
	achievement  *controller.AchievementController
	cohort       *controller.CohortController
	forum        *controller.ForumController
	notification *controller.NotificationController
	assistant    *controller.AssistantController
	upload       *controller.UploadController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置文件变更后由监听协程调用
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		module:       repository.NewModuleRepository(db),
		progress:     repository.NewProgressRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
		achievement:  repository.NewAchievementRepository(db, rdb),
		cohort:       repository.NewCohortRepository(db),
		forum:        repository.NewForumRepository(db),
		notification: repository.NewNotificationRepository(db),
		assistant:    repository.NewAssistantRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.notification = service.NewNotificationService(repos.notification)
	s.achievement = service.NewAchievementService(
		db,
		repos.achievement,
		repos.progress,
		repos.assessment,
		repos.module,
		repos.forum,
		s.notification,
	)
	s.module = service.NewModuleService(repos.module, repos.progress)
	s.progress = service.NewProgressService(repos.progress, repos.module, s.achievement)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.module, s.achievement)
	s.grading = service.NewGradingService(repos.assessment, s.notification)
	s.cohort = service.NewCohortService(repos.cohort, repos.user)
	s.forum = service.NewForumService(repos.forum, repos.module, s.achievement, s.notification)
	s.assistant = service.NewAssistantService(cfg.AI, repos.assistant, repos.module)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		module:       controller.NewModuleController(s.module),
		progress:     controller.NewProgressController(s.progress),
		assessment:   controller.NewAssessmentController(s.assessment),
		grading:      controller.NewGradingController(s.grading),
		achievement:  controller.NewAchievementController(s.achievement),
		cohort:       controller.NewCohortController(s.cohort),
		forum:        controller.NewForumController(s.forum),
		notification: controller.NewNotificationController(s.notification),
		assistant:    controller.NewAssistantController(s.assistant),
		upload:       controller.NewUploadController(s.storage),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1200
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 只承担缓存职责，连不上降级为直查数据库
		logger.Log.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("chainedu-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
