package app

import (
	"fmt"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/config"
	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/internal/auth"
	"github.com/anoixa/comic-tracker/internal/collections"
	"github.com/anoixa/comic-tracker/internal/comics"
	"github.com/anoixa/comic-tracker/internal/dashboard"
	"github.com/anoixa/comic-tracker/internal/ingest"
	"github.com/anoixa/comic-tracker/internal/releases"
	"github.com/anoixa/comic-tracker/internal/repositories"
	"github.com/anoixa/comic-tracker/internal/schedule"
	"github.com/anoixa/comic-tracker/internal/status"
	"github.com/anoixa/comic-tracker/internal/strips"
	"github.com/anoixa/comic-tracker/internal/worker"
	"github.com/anoixa/comic-tracker/storage"
	"github.com/anoixa/comic-tracker/utils"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	provider        database.Provider
	storageFactory  *storage.Factory
	cacheProvider   cache.Provider
	warmer          *worker.Pool

	Repos       *repositories.Repositories
	CacheHelper *cache.Helper

	Comics      *comics.Registry
	Collections *collections.Service
	Strips      *strips.Store
	Ledger      *releases.Ledger
	Schedules   *schedule.Inferencer
	Status      *status.Service
	Ingest      *ingest.Service
	Dashboard   *dashboard.Service

	// JWT 未配置 jwt_secret 时为 nil
	JWT  *auth.JWTService
	Keys *auth.KeyService
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 初始化数据库和全部服务
func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	return c.InitServices()
}

// InitDatabase 初始化数据库、迁移表结构并创建只依赖数据库的服务
func (c *Container) InitDatabase() error {
	utils.LogIfDev("Initializing DI container...")

	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	if err := factory.AutoMigrate(); err != nil {
		_ = factory.Close()
		return err
	}
	c.databaseFactory = factory
	c.wireDatabase(factory.GetProvider())

	utils.LogIfDev("DI container initialized successfully")
	return nil
}

// InitServices 初始化存储、缓存和依赖它们的服务
func (c *Container) InitServices() error {
	storageFactory, err := storage.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage factory: %w", err)
	}

	cacheProvider, err := cache.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	locker, err := strips.NewFileLocker(c.config.StorageLockDir)
	if err != nil {
		return fmt.Errorf("failed to initialize strip locker: %w", err)
	}

	return c.wireServices(storageFactory, cacheProvider, locker)
}

// Wire 使用已创建的依赖组装容器，供测试和嵌入使用
func (c *Container) Wire(provider database.Provider, storageFactory *storage.Factory, cacheProvider cache.Provider, locker strips.Locker) error {
	c.wireDatabase(provider)
	return c.wireServices(storageFactory, cacheProvider, locker)
}

func (c *Container) wireDatabase(provider database.Provider) {
	c.provider = provider
	c.Repos = repositories.NewRepositories(provider)
	c.Comics = comics.NewRegistry(c.Repos.Comics)
	c.Collections = collections.NewService(c.Repos.Collections, c.Comics)
	utils.LogIfDev("Repositories initialized")
}

func (c *Container) wireServices(storageFactory *storage.Factory, cacheProvider cache.Provider, locker strips.Locker) error {
	c.storageFactory = storageFactory
	c.cacheProvider = cacheProvider
	c.CacheHelper = cache.NewHelper(cacheProvider, cache.HelperConfig{
		StatusReportTTL: c.config.StatusCacheTTL,
		StripMetaTTL:    cache.DefaultStripMetaExpiration,
	})

	c.Strips = strips.NewStore(c.Repos.Strips, storageFactory, locker)
	c.Ledger = releases.NewLedger(c.Repos.Releases, c.Repos.Comics, c.Repos.Strips, c.Strips)
	c.Schedules = schedule.NewInferencer(c.Repos.Releases, schedule.Policy{
		LookbackDays: c.config.ScheduleLookbackDays,
		MinReleases:  c.config.ScheduleMinReleases,
	})

	builder := status.NewBuilder(c.Repos.Comics, c.Repos.Releases, c.Schedules, status.WithLocation(c.config.Location()))
	c.Status = status.NewService(builder, c.CacheHelper, c.config.StatusDefaultDays)
	if cacheProvider != nil {
		c.warmer = worker.NewPool(1, 4)
		c.Status.WarmWith(c.warmer)
	}
	c.Ingest = ingest.NewService(c.Comics, c.Strips, c.Ledger, c.Status, c.config.UploadMaxSizeMB<<20)
	c.Dashboard = dashboard.NewService(c.Repos.Stats, cacheProvider)

	c.Keys = auth.NewKeyService(c.config.APIKeyHash)
	if c.config.JWTSecret != "" {
		jwtService, err := auth.NewJWTService(c.config.JWTSecret, c.config.JWTExpiresIn)
		if err != nil {
			return fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		c.JWT = jwtService
	}

	utils.LogIfDev("Services initialized")
	return nil
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	return c.provider
}

// GetStorageFactory 获取存储工厂
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storageFactory
}

// GetCacheProvider 获取缓存提供者
func (c *Container) GetCacheProvider() cache.Provider {
	return c.cacheProvider
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDev("Closing DI container...")

	if c.warmer != nil {
		c.warmer.Stop()
	}

	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			utils.LogIfDevf("Error closing cache provider: %v", err)
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			utils.LogIfDevf("Error closing database factory: %v", err)
		}
	}

	utils.LogIfDev("DI container closed")
	return nil
}
