package router

import (
	"fmt"
	"strings"

	"github.com/promokod-next/internal/cache"
	"github.com/promokod-next/internal/config"
	adminhandlers "github.com/promokod-next/internal/http/handlers/admin"
	publichandlers "github.com/promokod-next/internal/http/handlers/public"
	"github.com/promokod-next/internal/logger"
	"github.com/promokod-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pk"
	}
	redisClient := cache.Client()
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: cfg.Security.RedeemRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RedeemRateLimit.MaxAttempts,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 奖品占位图等静态资源
	r.Static("/files", "./files")

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口（聊天端网关调用）
		apiV1.POST("/redeem",
			RateLimitMiddleware(redisClient, redeemRule, KeyByIP),
			publicHandler.Redeem)
		apiV1.GET("/codes/check", publicHandler.CheckCode)
		apiV1.GET("/codes/month", publicHandler.CodeMonth)

		// 管理端
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			authed := admin.Group("")
			authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authed.GET("/codes", adminHandler.ListCodes)
				authed.POST("/codes/import", adminHandler.ImportCodes)
				authed.POST("/codes/import-file", adminHandler.ImportCodesFile)
				authed.PATCH("/codes/:id/reset", adminHandler.ResetCode)
				authed.POST("/codes/reset-by-value", adminHandler.ResetCodeByValue)
				authed.POST("/codes/:id/gift-given", adminHandler.MarkGiftGiven)
				authed.DELETE("/codes/:id", adminHandler.DeleteCode)
				authed.DELETE("/codes", adminHandler.ClearCodes)

				authed.GET("/gifts", adminHandler.ListGifts)
				authed.PUT("/gifts/:id", adminHandler.UpdateGift)

				authed.GET("/users", adminHandler.ListUsers)

				authed.GET("/redemption-logs", adminHandler.ListRedemptionLogs)

				authed.GET("/settings/redemption", adminHandler.GetRedemptionSetting)
				authed.PUT("/settings/redemption", adminHandler.UpdateRedemptionSetting)
			}
		}
	}

	return r
}
