package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studycoach_backend/internal/config"
	"studycoach_backend/internal/controller"
	"studycoach_backend/internal/repository"
	"studycoach_backend/internal/service"
	"studycoach_backend/pkg/configwatcher"
	"studycoach_backend/pkg/database"
	"studycoach_backend/pkg/logger"
	"studycoach_backend/pkg/monitoring"
	"studycoach_backend/pkg/security"
	"studycoach_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user      *repository.UserRepository
	student   *repository.StudentRepository
	catalog   *repository.CatalogRepository
	template  *repository.TemplateRepository
	plan      *repository.PlanRepository
	session   *repository.SessionRepository
	evidence  *repository.EvidenceRepository
	reviewLog *repository.ReviewLogRepository
	score     *repository.ScoreRepository
}

type services struct {
	auth     *service.AuthService
	user     *service.UserService
	access   *service.AccessService
	storage  *service.StorageService
	student  *service.StudentService
	catalog  *service.CatalogService
	template *service.TemplateService
	plan     *service.PlanService
	planItem *service.PlanItemService
	evidence *service.EvidenceService
	review   *service.ReviewService
	report   *service.ReportService
	score    *service.ScoreService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	student  *controller.StudentController
	catalog  *controller.CatalogController
	template *controller.TemplateController
	plan     *controller.PlanController
	planItem *controller.PlanItemController
	review   *controller.ReviewController
	report   *controller.ReportController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		student:   repository.NewStudentRepository(db),
		catalog:   repository.NewCatalogRepository(db),
		template:  repository.NewTemplateRepository(db),
		plan:      repository.NewPlanRepository(db),
		session:   repository.NewSessionRepository(db),
		evidence:  repository.NewEvidenceRepository(db),
		reviewLog: repository.NewReviewLogRepository(db),
		score:     repository.NewScoreRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.access = service.NewAccessService(repos.student)
	s.student = service.NewStudentService(repos.student, repos.user, s.access)
	s.catalog = service.NewCatalogService(repos.catalog, rdb)
	s.template = service.NewTemplateService(repos.template)
	s.plan = service.NewPlanService(s.access, repos.plan, repos.catalog, repos.template)
	s.planItem = service.NewPlanItemService(s.access, repos.plan, repos.session, repos.evidence)
	s.evidence = service.NewEvidenceService(s.access, repos.plan, repos.evidence, s.storage, cfg)
	s.review = service.NewReviewService(s.access, repos.plan, repos.reviewLog)
	s.report = service.NewReportService(s.access, repos.plan, repos.score, repos.student)
	s.score = service.NewScoreService(repos.score, s.access)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.user),
		student:  controller.NewStudentController(s.student),
		catalog:  controller.NewCatalogController(s.catalog),
		template: controller.NewTemplateController(s.template),
		plan:     controller.NewPlanController(s.plan),
		planItem: controller.NewPlanItemController(s.planItem, s.evidence),
		review:   controller.NewReviewController(s.review),
		report:   controller.NewReportController(s.report, s.score),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期锁定超过保留期的已发布计划
func (a *App) startBackgroundTasks(s *services) {
	if a.Config.Plan.AutoLockAfterDays <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			s.plan.AutoLockSweep(a.Config.Plan.AutoLockAfterDays)
		}
	}()
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
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("studycoach-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	// 配置热更新：只吸收运行期可安全替换的段
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		reloaded, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config.Plan = reloaded.Plan
		app.Config.CORS = reloaded.CORS
		logger.Log.Info("config reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

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
