package main

import (
	"fmt"

	"github.com/promokod-next/internal/config"
	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/logger"
	"github.com/promokod-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("admin", "admin123"); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 默认兑换策略
	var existing models.Setting
	if err := models.DB.Where("key = ?", constants.SettingKeyRedemptionConfig).First(&existing).Error; err != nil {
		setting := models.Setting{
			Key: constants.SettingKeyRedemptionConfig,
			ValueJSON: models.JSON{
				constants.SettingFieldCodeLimitPerUser: map[string]interface{}{
					constants.SettingFieldLimitStatus: cfg.Redemption.LimitEnabled,
					constants.SettingFieldLimitValue:  cfg.Redemption.LimitValue,
				},
			},
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Printf("Failed to create redemption setting: %v", err)
		} else {
			stdLog.Printf("Created redemption setting")
		}
	} else {
		stdLog.Printf("Redemption setting already exists")
	}

	// 预置各档位奖品
	for _, tier := range constants.GiftTiers {
		var gift models.Gift
		if err := models.DB.Where("tier = ?", tier).First(&gift).Error; err == nil {
			stdLog.Printf("Gift already exists: %s", tier)
			continue
		}
		gift = models.Gift{
			Name:  tier,
			Tier:  tier,
			Image: fmt.Sprintf("/files/gift-images/placeholder_%s.jpg", tier),
		}
		if err := models.DB.Create(&gift).Error; err != nil {
			stdLog.Printf("Failed to create gift %s: %v", tier, err)
		} else {
			stdLog.Printf("Created gift: %s", tier)
		}
	}

	stdLog.Printf("Seed finished")
}
