package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCodeAdminServiceTest(t *testing.T) (*CodeAdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:code_admin_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Gift{}, &models.Code{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	svc := NewCodeAdminService(repository.NewCodeRepository(db), repository.NewGiftRepository(db))
	return svc, db
}

func markCodeUsed(t *testing.T, db *gorm.DB, code *models.Code, userID uint) {
	t.Helper()
	now := time.Now()
	if err := db.Model(code).Updates(map[string]interface{}{
		"is_used": true, "used_at": now, "used_by_id": userID,
	}).Error; err != nil {
		t.Fatalf("mark used failed: %v", err)
	}
}

func TestCheckCodeReturnsLinkedGift(t *testing.T) {
	svc, db := setupCodeAdminServiceTest(t)
	gift := seedGift(t, db, constants.GiftTierStandard)
	seedCode(t, db, constants.CodeKindWinner, "CHECKM-0001", 1, constants.GiftTierStandard, &gift.ID)

	code, err := svc.CheckCode("checkm0001")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if code.Gift == nil || code.Gift.ID != gift.ID {
		t.Fatalf("gift not resolved: %+v", code)
	}
	if code.IsUsed {
		t.Fatalf("check must not claim")
	}
}

func TestCheckCodeNotFound(t *testing.T) {
	svc, _ := setupCodeAdminServiceTest(t)
	if _, err := svc.CheckCode("NOSUCH-0404"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("error = %v, want ErrCodeNotFound", err)
	}
}

func TestCodeMonth(t *testing.T) {
	svc, db := setupCodeAdminServiceTest(t)
	code := seedCode(t, db, constants.CodeKindOrdinary, "MONTHY-0001", 1, "", nil)
	if err := db.Model(code).Update("month", "dekabr").Error; err != nil {
		t.Fatalf("set month failed: %v", err)
	}

	month, err := svc.CodeMonth("MONTHY0001")
	if err != nil {
		t.Fatalf("code month failed: %v", err)
	}
	if month != "dekabr" {
		t.Fatalf("month = %q, want dekabr", month)
	}
}

func TestResetUsageByValue(t *testing.T) {
	svc, db := setupCodeAdminServiceTest(t)
	code := seedCode(t, db, constants.CodeKindOrdinary, "RESETS-0001", 1, "", nil)
	markCodeUsed(t, db, code, 5)

	if err := svc.ResetUsageByValue("", "resets-0001"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	var stored models.Code
	if err := db.First(&stored, code.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.IsUsed || stored.UsedAt != nil || stored.UsedByID != nil {
		t.Fatalf("claim fields not cleared: %+v", stored)
	}
}

func TestResetUsageByIDNotFound(t *testing.T) {
	svc, _ := setupCodeAdminServiceTest(t)
	if err := svc.ResetUsageByID(404); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("error = %v, want ErrCodeNotFound", err)
	}
}

func TestMarkGiftGiven(t *testing.T) {
	svc, db := setupCodeAdminServiceTest(t)
	gift := seedGift(t, db, constants.GiftTierEconomy)
	code := seedCode(t, db, constants.CodeKindWinner, "GIVENN-0001", 1, constants.GiftTierEconomy, &gift.ID)
	markCodeUsed(t, db, code, 5)

	if err := svc.MarkGiftGiven(code.ID, 9); err != nil {
		t.Fatalf("mark gift given failed: %v", err)
	}

	var stored models.Code
	if err := db.First(&stored, code.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.GiftGivenAt == nil {
		t.Fatalf("gift_given_at not set")
	}
	if stored.GiftGivenBy == nil || *stored.GiftGivenBy != 9 {
		t.Fatalf("gift_given_by = %v, want 9", stored.GiftGivenBy)
	}
}

func TestClearAllRemovesOnlyOneKind(t *testing.T) {
	svc, db := setupCodeAdminServiceTest(t)
	seedCode(t, db, constants.CodeKindOrdinary, "ORDONE-0001", 1, "", nil)
	seedCode(t, db, constants.CodeKindOrdinary, "ORDTWO-0002", 2, "", nil)
	seedCode(t, db, constants.CodeKindWinner, "WINONE-0001", 1, "", nil)

	removed, err := svc.ClearAll(constants.CodeKindOrdinary)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	var ordinary, winner int64
	if err := db.Unscoped().Model(&models.Code{}).Where("kind = ?", constants.CodeKindOrdinary).Count(&ordinary).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if err := db.Model(&models.Code{}).Where("kind = ?", constants.CodeKindWinner).Count(&winner).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if ordinary != 0 {
		t.Fatalf("ordinary rows must be hard-deleted, left %d", ordinary)
	}
	if winner != 1 {
		t.Fatalf("winner store must be untouched, left %d", winner)
	}
}

func TestSoftDeleteKeepsRowAndSeq(t *testing.T) {
	svc, db := setupCodeAdminServiceTest(t)
	code := seedCode(t, db, constants.CodeKindOrdinary, "SOFTLY-0001", 3, "", nil)

	if err := svc.SoftDelete(code.ID, 7); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	var visible int64
	if err := db.Model(&models.Code{}).Count(&visible).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if visible != 0 {
		t.Fatalf("soft-deleted row still visible")
	}

	var raw models.Code
	if err := db.Unscoped().First(&raw, code.ID).Error; err != nil {
		t.Fatalf("raw reload failed: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Fatalf("deleted_at not set")
	}
	if raw.DeletedBy == nil || *raw.DeletedBy != 7 {
		t.Fatalf("deleted_by = %v, want 7", raw.DeletedBy)
	}

	// 软删后序号不回收
	repo := repository.NewCodeRepository(db)
	maxSeq, err := repo.MaxSeqID(constants.CodeKindOrdinary)
	if err != nil {
		t.Fatalf("max seq failed: %v", err)
	}
	if maxSeq != 3 {
		t.Fatalf("max seq = %d, want 3", maxSeq)
	}
}
