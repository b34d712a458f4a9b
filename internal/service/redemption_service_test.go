package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/queue"
	"github.com/promokod-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRedemptionServiceTest(t *testing.T) (*RedemptionService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:redemption_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Gift{},
		&models.Code{},
		&models.RedemptionLog{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	models.DB = db

	codeRepo := repository.NewCodeRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	logRepo := repository.NewRedemptionLogRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingSvc := NewSettingService(repository.NewSettingRepository(db), false, 0)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	svc := NewRedemptionService(codeRepo, giftRepo, logRepo, userRepo, settingSvc, queueClient)
	return svc, db
}

func seedRedemptionUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		ID:        id,
		TgID:      int64(1000 + id),
		FirstName: fmt.Sprintf("user%d", id),
		Status:    constants.UserStatusActive,
		Role:      constants.UserRoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func seedCode(t *testing.T, db *gorm.DB, kind, value string, seqID int, tier string, giftID *uint) *models.Code {
	t.Helper()
	code := models.Code{
		Kind:      kind,
		SeqID:     seqID,
		Value:     value,
		GiftID:    giftID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if tier != "" {
		code.Tier = &tier
	}
	if err := db.Create(&code).Error; err != nil {
		t.Fatalf("create code failed: %v", err)
	}
	return &code
}

func seedGift(t *testing.T, db *gorm.DB, tier string) *models.Gift {
	t.Helper()
	gift := models.Gift{
		Name:      "奖品 " + tier,
		Tier:      tier,
		Image:     "/files/gift-images/placeholder_" + tier + ".jpg",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&gift).Error; err != nil {
		t.Fatalf("create gift failed: %v", err)
	}
	return &gift
}

func TestRedeemPlainOrdinaryCode(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	seedRedemptionUser(t, db, 1)
	seedCode(t, db, constants.CodeKindOrdinary, "ABCDEF-1234", 1, "", nil)

	result, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "abcdef1234"})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.Outcome != constants.RedeemOutcomeRedeemed {
		t.Fatalf("outcome = %q, want %q", result.Outcome, constants.RedeemOutcomeRedeemed)
	}

	var stored models.Code
	if err := db.Where("value = ?", "ABCDEF-1234").First(&stored).Error; err != nil {
		t.Fatalf("reload code failed: %v", err)
	}
	if !stored.IsUsed || stored.UsedByID == nil || *stored.UsedByID != 1 {
		t.Fatalf("claim state not persisted: %+v", stored)
	}
	if stored.UsedAt == nil {
		t.Fatalf("used_at not set")
	}
}

func TestRedeemWinnerCodeIncrementsGiftCounter(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	seedRedemptionUser(t, db, 1)
	gift := seedGift(t, db, constants.GiftTierPremium)
	seedCode(t, db, constants.CodeKindWinner, "WINNER-0001", 1, constants.GiftTierPremium, &gift.ID)

	result, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "WINNER-0001"})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.Outcome != constants.RedeemOutcomeWonGift {
		t.Fatalf("outcome = %q, want %q", result.Outcome, constants.RedeemOutcomeWonGift)
	}
	if result.Tier != constants.GiftTierPremium {
		t.Fatalf("tier = %q, want %q", result.Tier, constants.GiftTierPremium)
	}

	var stored models.Gift
	if err := db.First(&stored, gift.ID).Error; err != nil {
		t.Fatalf("reload gift failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("used_count = %d, want 1", stored.UsedCount)
	}
}

func TestRedeemWinnerStoreTakesPrecedence(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	seedRedemptionUser(t, db, 1)
	gift := seedGift(t, db, constants.GiftTierStandard)
	// 同值同时存在于两个库：中奖库必须先命中
	seedCode(t, db, constants.CodeKindOrdinary, "SHADOW-7777", 1, "", nil)
	seedCode(t, db, constants.CodeKindWinner, "SHADOW-7777", 1, constants.GiftTierStandard, &gift.ID)

	result, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "shadow7777"})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.Outcome != constants.RedeemOutcomeWonGift {
		t.Fatalf("outcome = %q, want %q", result.Outcome, constants.RedeemOutcomeWonGift)
	}

	var ordinary models.Code
	if err := db.Where("kind = ? AND value = ?", constants.CodeKindOrdinary, "SHADOW-7777").First(&ordinary).Error; err != nil {
		t.Fatalf("reload ordinary failed: %v", err)
	}
	if ordinary.IsUsed {
		t.Fatalf("ordinary twin must stay unused")
	}
}

func TestRedeemOutcomesForBadInput(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	seedRedemptionUser(t, db, 1)
	used := seedCode(t, db, constants.CodeKindOrdinary, "USEDUP-1111", 1, "", nil)
	now := time.Now()
	userID := uint(2)
	seedRedemptionUser(t, db, 2)
	if err := db.Model(used).Updates(map[string]interface{}{
		"is_used": true, "used_at": now, "used_by_id": userID,
	}).Error; err != nil {
		t.Fatalf("mark used failed: %v", err)
	}

	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "malformed", text: "???", want: constants.RedeemOutcomeInvalidFormat},
		{name: "unknown", text: "NOSUCH-0000", want: constants.RedeemOutcomeFake},
		{name: "already used", text: "USEDUP-1111", want: constants.RedeemOutcomeAlreadyUsed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: tc.text})
			if err != nil {
				t.Fatalf("redeem failed: %v", err)
			}
			if result.Outcome != tc.want {
				t.Fatalf("outcome = %q, want %q", result.Outcome, tc.want)
			}
		})
	}
}

func TestRedeemSameUserReclaimBlocked(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	seedRedemptionUser(t, db, 1)
	seedCode(t, db, constants.CodeKindOrdinary, "REPEAT-2222", 1, "", nil)

	first, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "REPEAT-2222"})
	if err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if first.Outcome != constants.RedeemOutcomeRedeemed {
		t.Fatalf("first outcome = %q", first.Outcome)
	}

	second, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "REPEAT-2222"})
	if err != nil {
		t.Fatalf("second redeem failed: %v", err)
	}
	if second.Outcome != constants.RedeemOutcomeAlreadyUsed {
		t.Fatalf("second outcome = %q, want %q", second.Outcome, constants.RedeemOutcomeAlreadyUsed)
	}
}

func TestRedeemLimitGate(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	seedRedemptionUser(t, db, 1)

	if _, err := svc.settingService.UpdateRedemptionSetting(context.Background(), RedemptionSetting{
		CodeLimitPerUser: CodeLimitSetting{Status: true, Value: 1},
	}); err != nil {
		t.Fatalf("update setting failed: %v", err)
	}

	seedCode(t, db, constants.CodeKindOrdinary, "FIRSTT-0001", 1, "", nil)
	seedCode(t, db, constants.CodeKindOrdinary, "SECOND-0002", 2, "", nil)

	first, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "FIRSTT-0001"})
	if err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if first.Outcome != constants.RedeemOutcomeRedeemed {
		t.Fatalf("first outcome = %q", first.Outcome)
	}

	second, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "SECOND-0002"})
	if err != nil {
		t.Fatalf("second redeem failed: %v", err)
	}
	if second.Outcome != constants.RedeemOutcomeLimitReached {
		t.Fatalf("second outcome = %q, want %q", second.Outcome, constants.RedeemOutcomeLimitReached)
	}

	// 限额不约束中奖码
	gift := seedGift(t, db, constants.GiftTierEconomy)
	seedCode(t, db, constants.CodeKindWinner, "WINWIN-0003", 1, constants.GiftTierEconomy, &gift.ID)
	third, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "WINWIN-0003"})
	if err != nil {
		t.Fatalf("third redeem failed: %v", err)
	}
	if third.Outcome != constants.RedeemOutcomeLimitReached {
		t.Fatalf("limit gate runs before lookup, got %q", third.Outcome)
	}
}

func TestRedeemWritesAttemptLog(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	seedRedemptionUser(t, db, 1)
	seedCode(t, db, constants.CodeKindOrdinary, "LOGGED-5555", 1, "", nil)

	if _, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "LOGGED-5555"}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "NOSUCH-9999"}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	var logs []models.RedemptionLog
	if err := db.Order("id asc").Find(&logs).Error; err != nil {
		t.Fatalf("load logs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("log count = %d, want 2", len(logs))
	}
	if logs[0].CodeID == nil {
		t.Fatalf("matched attempt must carry code reference")
	}
	if logs[1].CodeID != nil {
		t.Fatalf("fake attempt must carry null code reference")
	}

	// 格式错误不产生日志
	if _, err := svc.Redeem(context.Background(), RedeemInput{UserID: 1, RawText: "!!"}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.RedemptionLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count logs failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("invalid-format attempt must not be logged, count = %d", count)
	}
}

func TestRedeemConcurrentClaimSingleWinner(t *testing.T) {
	svc, db := setupRedemptionServiceTest(t)
	const attempts = 8
	for i := uint(1); i <= attempts; i++ {
		seedRedemptionUser(t, db, i)
	}
	seedCode(t, db, constants.CodeKindOrdinary, "RACERX-4321", 1, "", nil)

	var wg sync.WaitGroup
	outcomes := make([]string, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			result, err := svc.Redeem(context.Background(), RedeemInput{
				UserID:  uint(idx + 1),
				RawText: "RACERX-4321",
			})
			outcomes[idx] = result.Outcome
			errs[idx] = err
		}(i)
	}
	wg.Wait()

	var won, lost int
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("attempt %d errored: %v", i, errs[i])
		}
		switch outcomes[i] {
		case constants.RedeemOutcomeRedeemed:
			won++
		case constants.RedeemOutcomeAlreadyUsed:
			lost++
		default:
			t.Fatalf("unexpected outcome %q", outcomes[i])
		}
	}
	if won != 1 {
		t.Fatalf("exactly one claim must win, got %d", won)
	}
	if lost != attempts-1 {
		t.Fatalf("losers = %d, want %d", lost, attempts-1)
	}
}
