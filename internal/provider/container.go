package provider

import (
	"github.com/promokod-next/internal/cache"
	"github.com/promokod-next/internal/config"
	"github.com/promokod-next/internal/logger"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/queue"
	"github.com/promokod-next/internal/repository"
	"github.com/promokod-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	CodeRepo          repository.CodeRepository
	GiftRepo          repository.GiftRepository
	RedemptionLogRepo repository.RedemptionLogRepository
	SettingRepo       repository.SettingRepository

	// Services
	AuthService          *service.AuthService
	UserService          *service.UserService
	SettingService       *service.SettingService
	RedemptionService    *service.RedemptionService
	IngestService        *service.IngestService
	CodeAdminService     *service.CodeAdminService
	GiftService          *service.GiftService
	RedemptionLogService *service.RedemptionLogService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CodeRepo = repository.NewCodeRepository(db)
	c.GiftRepo = repository.NewGiftRepository(db)
	c.RedemptionLogRepo = repository.NewRedemptionLogRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.AuthService = service.NewAuthService(cfg, c.AdminRepo)
	c.UserService = service.NewUserService(c.UserRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo, cfg.Redemption.LimitEnabled, cfg.Redemption.LimitValue)
	c.RedemptionService = service.NewRedemptionService(
		c.CodeRepo, c.GiftRepo, c.RedemptionLogRepo, c.UserRepo,
		c.SettingService, c.QueueClient,
	)
	c.IngestService = service.NewIngestService(c.CodeRepo, c.GiftRepo, cfg.Ingest.BatchSize)
	c.CodeAdminService = service.NewCodeAdminService(c.CodeRepo, c.GiftRepo)
	c.GiftService = service.NewGiftService(c.GiftRepo)
	c.RedemptionLogService = service.NewRedemptionLogService(c.RedemptionLogRepo)
}
