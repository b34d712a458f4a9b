package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/promokod-next/internal/cache"
	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/logger"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"
)

const (
	redemptionSettingCacheKey = "setting:redemption"
	redemptionSettingCacheTTL = 30 * time.Second

	codeLimitValueMax = 100000
)

// CodeLimitSetting 普通码人均兑换上限配置
type CodeLimitSetting struct {
	Status bool `json:"status"`
	Value  int  `json:"value"`
}

// RedemptionSetting 兑换策略配置
type RedemptionSetting struct {
	CodeLimitPerUser CodeLimitSetting `json:"code_limit_per_user"`
}

// SettingService 设置服务
type SettingService struct {
	settingRepo repository.SettingRepository

	defaultLimitEnabled bool
	defaultLimitValue   int
}

// NewSettingService 创建设置服务
func NewSettingService(settingRepo repository.SettingRepository, defaultEnabled bool, defaultValue int) *SettingService {
	return &SettingService{
		settingRepo:         settingRepo,
		defaultLimitEnabled: defaultEnabled,
		defaultLimitValue:   defaultValue,
	}
}

// DefaultRedemptionSetting 默认兑换策略
func (s *SettingService) DefaultRedemptionSetting() RedemptionSetting {
	return NormalizeRedemptionSetting(RedemptionSetting{
		CodeLimitPerUser: CodeLimitSetting{
			Status: s.defaultLimitEnabled,
			Value:  s.defaultLimitValue,
		},
	})
}

// NormalizeRedemptionSetting 归一化兑换策略配置
func NormalizeRedemptionSetting(setting RedemptionSetting) RedemptionSetting {
	if setting.CodeLimitPerUser.Value < 0 {
		setting.CodeLimitPerUser.Value = 0
	}
	if setting.CodeLimitPerUser.Value > codeLimitValueMax {
		setting.CodeLimitPerUser.Value = codeLimitValueMax
	}
	if setting.CodeLimitPerUser.Value == 0 {
		setting.CodeLimitPerUser.Status = false
	}
	return setting
}

// GetRedemptionSetting 获取兑换策略，缓存优先
func (s *SettingService) GetRedemptionSetting(ctx context.Context) (RedemptionSetting, error) {
	var cached RedemptionSetting
	if ok, err := cache.GetJSON(ctx, redemptionSettingCacheKey, &cached); err == nil && ok {
		return NormalizeRedemptionSetting(cached), nil
	}

	setting, err := s.settingRepo.GetByKey(constants.SettingKeyRedemptionConfig)
	if err != nil {
		return RedemptionSetting{}, ErrSettingFetchFailed
	}
	result := s.DefaultRedemptionSetting()
	if setting != nil && setting.ValueJSON != nil {
		raw, err := json.Marshal(setting.ValueJSON)
		if err != nil {
			return RedemptionSetting{}, ErrSettingFetchFailed
		}
		if err := json.Unmarshal(raw, &result); err != nil {
			return RedemptionSetting{}, ErrSettingFetchFailed
		}
		result = NormalizeRedemptionSetting(result)
	}

	if err := cache.SetJSON(ctx, redemptionSettingCacheKey, result, redemptionSettingCacheTTL); err != nil {
		logger.Warnw("cache redemption setting failed", "error", err)
	}
	return result, nil
}

// UpdateRedemptionSetting 更新兑换策略并失效缓存。
// 读取路径对历史数据做钳制，写入路径对超界值直接拒绝。
func (s *SettingService) UpdateRedemptionSetting(ctx context.Context, setting RedemptionSetting) (RedemptionSetting, error) {
	if setting.CodeLimitPerUser.Value < 0 || setting.CodeLimitPerUser.Value > codeLimitValueMax {
		return RedemptionSetting{}, ErrSettingInvalid
	}
	normalized := NormalizeRedemptionSetting(setting)
	value := models.JSON{
		constants.SettingFieldCodeLimitPerUser: map[string]interface{}{
			constants.SettingFieldLimitStatus: normalized.CodeLimitPerUser.Status,
			constants.SettingFieldLimitValue:  normalized.CodeLimitPerUser.Value,
		},
	}
	if _, err := s.settingRepo.Upsert(constants.SettingKeyRedemptionConfig, value); err != nil {
		return RedemptionSetting{}, ErrSettingUpdateFailed
	}
	if err := cache.Del(ctx, redemptionSettingCacheKey); err != nil {
		logger.Warnw("invalidate redemption setting cache failed", "error", err)
	}
	return normalized, nil
}
