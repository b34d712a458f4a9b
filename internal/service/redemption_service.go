package service

import (
	"context"
	"strings"
	"time"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/logger"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/queue"
	"github.com/promokod-next/internal/repository"

	"gorm.io/gorm"
)

// RedemptionService 兑换引擎。
// 按固定状态机处理单个用户提交的一段兑换码文本：
// 限额闸门 → 归一化 → 中奖库优先查找 → 尝试日志 → 条件认领 → 奖品结算。
type RedemptionService struct {
	codeRepo       repository.CodeRepository
	giftRepo       repository.GiftRepository
	logRepo        repository.RedemptionLogRepository
	userRepo       repository.UserRepository
	settingService *SettingService
	queueClient    *queue.Client
}

// NewRedemptionService 创建兑换引擎
func NewRedemptionService(
	codeRepo repository.CodeRepository,
	giftRepo repository.GiftRepository,
	logRepo repository.RedemptionLogRepository,
	userRepo repository.UserRepository,
	settingService *SettingService,
	queueClient *queue.Client,
) *RedemptionService {
	return &RedemptionService{
		codeRepo:       codeRepo,
		giftRepo:       giftRepo,
		logRepo:        logRepo,
		userRepo:       userRepo,
		settingService: settingService,
		queueClient:    queueClient,
	}
}

// RedeemInput 兑换输入
type RedeemInput struct {
	UserID  uint
	RawText string
}

// RedeemResult 兑换结果。Tier 仅在 won_gift 时有值。
type RedeemResult struct {
	Outcome string       `json:"outcome"`
	Tier    string       `json:"tier,omitempty"`
	Gift    *models.Gift `json:"gift,omitempty"`
}

// Redeem 处理一次兑换尝试。
// 业务性失败（格式错误、不存在、已用、限额）体现在 Outcome 上而非 error；
// error 仅表示存储层故障。
func (s *RedemptionService) Redeem(ctx context.Context, input RedeemInput) (RedeemResult, error) {
	if input.UserID == 0 {
		return RedeemResult{}, ErrUserNotFound
	}

	now := time.Now()
	if err := s.userRepo.TouchLastUse(input.UserID, now); err != nil {
		logger.Warnw("redeem_touch_last_use_failed", "user_id", input.UserID, "error", err)
	}

	// 1. 限额闸门：仅约束普通码，先于查找执行
	limited, err := s.limitReached(ctx, input.UserID)
	if err != nil {
		return RedeemResult{}, err
	}
	if limited {
		return RedeemResult{Outcome: constants.RedeemOutcomeLimitReached}, nil
	}

	// 2. 归一化
	canonical, err := Canonicalize(input.RawText)
	if err != nil {
		return RedeemResult{Outcome: constants.RedeemOutcomeInvalidFormat}, nil
	}

	// 3. 查找：中奖库优先，避免被同值普通码遮蔽
	code, err := s.codeRepo.FindByAnyForm(constants.CodeKindWinner, canonical.MatchForms)
	if err != nil {
		return RedeemResult{}, ErrCodeFetchFailed
	}
	if code == nil {
		code, err = s.codeRepo.FindByAnyForm(constants.CodeKindOrdinary, canonical.MatchForms)
		if err != nil {
			return RedeemResult{}, ErrCodeFetchFailed
		}
	}

	// 4. 尝试日志：尽力而为，不影响结果
	s.logAttempt(ctx, strings.TrimSpace(input.RawText), code, input.UserID, now)

	if code == nil {
		return RedeemResult{Outcome: constants.RedeemOutcomeFake}, nil
	}
	if code.IsUsed {
		return RedeemResult{Outcome: constants.RedeemOutcomeAlreadyUsed}, nil
	}

	// 5. 条件认领 + 奖品结算，同一事务内完成
	return s.claimAndResolve(code, input.UserID, now)
}

// limitReached 判断用户是否已达普通码兑换上限
func (s *RedemptionService) limitReached(ctx context.Context, userID uint) (bool, error) {
	setting, err := s.settingService.GetRedemptionSetting(ctx)
	if err != nil {
		return false, err
	}
	limit := setting.CodeLimitPerUser
	if !limit.Status || limit.Value <= 0 {
		return false, nil
	}
	used, err := s.codeRepo.CountUsedByUser(constants.CodeKindOrdinary, userID)
	if err != nil {
		return false, ErrCodeFetchFailed
	}
	return used >= int64(limit.Value), nil
}

// claimAndResolve 执行条件认领并结算奖品。
// 认领以存储层条件更新为唯一竞态原语；影响行数为 0 视为竞争失败。
// 奖品计数累加与认领同事务提交，避免出现认领成功但计数缺失的中间态。
func (s *RedemptionService) claimAndResolve(code *models.Code, userID uint, now time.Time) (RedeemResult, error) {
	var result RedeemResult
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		codeRepo := s.codeRepo.WithTx(tx)
		giftRepo := s.giftRepo.WithTx(tx)

		claimed, err := codeRepo.Claim(code.ID, userID, now)
		if err != nil {
			return ErrCodeUpdateFailed
		}
		if !claimed {
			result = RedeemResult{Outcome: constants.RedeemOutcomeAlreadyUsed}
			return nil
		}

		gift, err := s.resolveGift(giftRepo, code)
		if err != nil {
			return err
		}
		if gift == nil {
			result = RedeemResult{Outcome: constants.RedeemOutcomeRedeemed}
			return nil
		}
		if err := giftRepo.IncrementUsedCount(gift.ID); err != nil {
			return ErrGiftUpdateFailed
		}
		result = RedeemResult{
			Outcome: constants.RedeemOutcomeWonGift,
			Tier:    gift.Tier,
			Gift:    gift,
		}
		return nil
	})
	if err != nil {
		return RedeemResult{}, err
	}
	return result, nil
}

// resolveGift 查找认领记录关联的奖品；无档位且无关联则为普通兑换
func (s *RedemptionService) resolveGift(giftRepo *repository.GormGiftRepository, code *models.Code) (*models.Gift, error) {
	if code.GiftID != nil && *code.GiftID > 0 {
		gift, err := giftRepo.GetByID(*code.GiftID)
		if err != nil {
			return nil, ErrGiftFetchFailed
		}
		if gift != nil {
			return gift, nil
		}
	}
	if code.Tier != nil && *code.Tier != "" {
		gift, err := giftRepo.GetByTier(*code.Tier)
		if err != nil {
			return nil, ErrGiftFetchFailed
		}
		return gift, nil
	}
	return nil, nil
}

// logAttempt 记录兑换尝试。队列可用时异步写入，否则同步尽力写入。
func (s *RedemptionService) logAttempt(ctx context.Context, value string, code *models.Code, userID uint, now time.Time) {
	_ = ctx
	if value == "" || userID == 0 {
		return
	}
	var codeID *uint
	if code != nil {
		id := code.ID
		codeID = &id
	}
	if s.queueClient.Enabled() {
		payload := queue.RedemptionLogPayload{
			Value:       value,
			CodeID:      codeID,
			UserID:      userID,
			AttemptedAt: now,
		}
		if err := s.queueClient.EnqueueRedemptionLog(payload); err == nil {
			return
		} else { // 入队失败降级为同步写
			logger.Warnw("redeem_log_enqueue_failed", "user_id", userID, "error", err)
		}
	}
	entry := &models.RedemptionLog{
		Value:     value,
		CodeID:    codeID,
		UserID:    userID,
		CreatedAt: now,
	}
	if err := s.logRepo.Create(entry); err != nil {
		logger.Warnw("redeem_log_write_failed", "user_id", userID, "error", err)
	}
}
