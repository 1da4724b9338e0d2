package core

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/anoixa/comic-tracker/api/handler/collections"
	"github.com/anoixa/comic-tracker/api/handler/comics"
	"github.com/anoixa/comic-tracker/api/handler/dashboard"
	"github.com/anoixa/comic-tracker/api/handler/releases"
	"github.com/anoixa/comic-tracker/api/handler/status"
	"github.com/anoixa/comic-tracker/api/handler/strips"
	"github.com/anoixa/comic-tracker/api/handler/token"
	"github.com/anoixa/comic-tracker/api/middleware"
	"github.com/anoixa/comic-tracker/config"
	"github.com/anoixa/comic-tracker/docs"
	"github.com/anoixa/comic-tracker/internal/app"
)

var startTime = time.Now()

// multipartOverhead 上传表单中除文件以外的字段余量
const multipartOverhead = 1 << 20

// 启动gin
func setupRouter(c *app.Container) (*gin.Engine, func()) {
	cfg := c.GetConfig()

	// 仅在开发版本时启用 gin 日志
	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	// 限制上传文件大小
	maxUpload := int64(cfg.UploadMaxSizeMB) << 20
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	router.MaxMultipartMemory = maxUpload + multipartOverhead

	// 并发限制（100并发，避免内存过载）
	concurrencyLimiter := middleware.NewConcurrencyLimiter("requests", 100)
	router.Use(concurrencyLimiter.Middleware())

	// 入库涉及解码和写存储，单独排队
	uploadLimiter := middleware.NewConcurrencyLimiter("strip uploads", 8)

	router.Use(middleware.MaxBytesReader(maxUpload + multipartOverhead))
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	// 速率限制
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	stripRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitStripRPS, cfg.RateLimitStripBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		apiRateLimiter.StopCleanup()
		stripRateLimiter.StopCleanup()
	}

	registerBasicRoutes(router, c)

	baseURL := cfg.BaseURL()
	statusHandler := status.NewHandler(c.Status)
	comicHandler := comics.NewHandler(c.Comics, c.Ledger, c.Schedules, c.Status, baseURL)
	releaseHandler := releases.NewHandler(c.Ingest, c.Ledger, c.Status, c.CacheHelper, baseURL, maxUpload)
	stripHandler := strips.NewHandler(c.Strips, c.CacheHelper)
	collectionHandler := collections.NewHandler(c.Collections)
	statsHandler := dashboard.NewHandler(c.Dashboard)
	tokenHandler := token.NewHandler(c.JWT)

	// 公共接口
	publicGroup := router.Group("/strips")
	publicGroup.Use(stripRateLimiter.Middleware())
	{
		publicGroup.GET("/:id", stripHandler.GetStrip) // GET /strips/{id}
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.NoStore()) // 所有API禁止缓存
	{
		// c.JWT 为 nil 时不能直接赋给接口，否则接口非 nil
		var tokens middleware.TokenParser
		if c.JWT != nil {
			tokens = c.JWT
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		v1.Use(middleware.CombinedAuth(tokens, c.Keys))
		{
			v1.GET("/status", statusHandler.GetStatus)              // GET /api/v1/status?days=
			v1.POST("/status/refresh", statusHandler.RefreshStatus) // POST /api/v1/status/refresh

			releasesGroup := v1.Group("/releases")
			{
				releasesGroup.POST("", uploadLimiter.MiddlewareWithBlock(30*time.Second), releaseHandler.Upload) // POST /api/v1/releases
				releasesGroup.DELETE("/:id", releaseHandler.Delete)                                              // DELETE /api/v1/releases/{id}
			}

			v1.DELETE("/strips/:id", stripHandler.DeleteStrip) // DELETE /api/v1/strips/{id}

			comicsGroup := v1.Group("/comics")
			{
				comicsGroup.GET("", comicHandler.ListComics)                        // GET /api/v1/comics
				comicsGroup.POST("", comicHandler.CreateComic)                      // POST /api/v1/comics
				comicsGroup.GET("/:slug", comicHandler.GetComic)                    // GET /api/v1/comics/{slug}
				comicsGroup.PUT("/:slug", comicHandler.UpdateComic)                 // PUT /api/v1/comics/{slug}
				comicsGroup.DELETE("/:slug", comicHandler.DeleteComic)              // DELETE /api/v1/comics/{slug}
				comicsGroup.POST("/:slug/deactivate", comicHandler.DeactivateComic) // POST /api/v1/comics/{slug}/deactivate
				comicsGroup.POST("/:slug/activate", comicHandler.ActivateComic)     // POST /api/v1/comics/{slug}/activate
				comicsGroup.GET("/:slug/latest", comicHandler.GetLatest)            // GET /api/v1/comics/{slug}/latest
				comicsGroup.GET("/:slug/schedule", comicHandler.GetSchedule)        // GET /api/v1/comics/{slug}/schedule
				comicsGroup.GET("/:slug/releases", comicHandler.ListReleases)       // GET /api/v1/comics/{slug}/releases?from=&to=
			}

			collectionsGroup := v1.Group("/collections")
			{
				collectionsGroup.GET("", collectionHandler.ListCollections)                 // GET /api/v1/collections
				collectionsGroup.POST("", collectionHandler.CreateCollection)               // POST /api/v1/collections
				collectionsGroup.GET("/:id", collectionHandler.GetCollection)               // GET /api/v1/collections/{id}
				collectionsGroup.DELETE("/:id", collectionHandler.DeleteCollection)         // DELETE /api/v1/collections/{id}
				collectionsGroup.POST("/:id/comics", collectionHandler.AddComics)           // POST /api/v1/collections/{id}/comics
				collectionsGroup.DELETE("/:id/comics/:slug", collectionHandler.RemoveComic) // DELETE /api/v1/collections/{id}/comics/{slug}
			}

			statsHandler.SetupRoutes(v1) // GET /api/v1/stats

			// 只有 API Key 可以换取令牌，令牌不能续签自身
			tokenGroup := v1.Group("/token")
			tokenGroup.Use(middleware.Authorize(middleware.AuthTypeAPIKey))
			{
				tokenGroup.POST("", tokenHandler.CreateToken) // POST /api/v1/token
			}
		}
	}

	return router, cleanup
}

// registerBasicRoutes 注册健康检查、版本、指标和文档路由
func registerBasicRoutes(router *gin.Engine, c *app.Container) {
	router.GET("/health", func(context *gin.Context) {
		ctx := context.Request.Context()
		checks := gin.H{
			"database": checkDatabaseHealth(ctx, c.GetDatabaseProvider()),
			"cache":    checkCacheHealth(ctx, c.GetCacheProvider()),
			"storage":  checkStorageHealth(ctx, c.GetStorageFactory()),
		}
		httpStatus := http.StatusOK
		for _, checkResult := range checks {
			if result, ok := checkResult.(string); ok && !healthy(result) {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		context.JSON(httpStatus, gin.H{
			"status":  http.StatusText(httpStatus),
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks":  checks,
		})
	})
	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, middleware.GetMetrics())
	})

	docs.SwaggerInfo.Version = config.Version
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// NewHandler 创建完整的 HTTP 处理器，返回的 cleanup 停止后台清理任务
func NewHandler(c *app.Container) (http.Handler, func()) {
	return setupRouter(c)
}

// StartServer 创建 http.Server
func StartServer(c *app.Container) (*http.Server, func()) {
	cfg := c.GetConfig()
	router, clean := setupRouter(c)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.ServerReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return srv, clean
}
