package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCodeRepositoryTest(t *testing.T) (*GormCodeRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Code{}, &models.Gift{}, &models.User{}); err != nil {
		t.Fatalf("migrate code models failed: %v", err)
	}
	return NewCodeRepository(db), db
}

func seedRepoCode(t *testing.T, db *gorm.DB, kind, value string, seq int) *models.Code {
	t.Helper()
	code := &models.Code{
		Kind:  kind,
		SeqID: seq,
		Value: value,
		Month: "dekabr",
		Year:  "2024",
	}
	if err := db.Create(code).Error; err != nil {
		t.Fatalf("create code failed: %v", err)
	}
	return code
}

func TestFindByAnyFormMatchesLegacyValue(t *testing.T) {
	repo, db := setupCodeRepositoryTest(t)

	seedRepoCode(t, db, constants.CodeKindOrdinary, "ABCDEF1234", 1)
	seedRepoCode(t, db, constants.CodeKindOrdinary, "GHIJKL-5678", 2)

	code, err := repo.FindByAnyForm(constants.CodeKindOrdinary, []string{"ABCDEF-1234", "ABCDEF1234"})
	if err != nil {
		t.Fatalf("find by any form failed: %v", err)
	}
	if code == nil || code.Value != "ABCDEF1234" {
		t.Fatalf("expected legacy unhyphenated row, got %+v", code)
	}

	code, err = repo.FindByAnyForm(constants.CodeKindWinner, []string{"ABCDEF-1234", "ABCDEF1234"})
	if err != nil {
		t.Fatalf("find by any form failed: %v", err)
	}
	if code != nil {
		t.Fatalf("kind mismatch should return nil, got %+v", code)
	}

	code, err = repo.FindByAnyForm(constants.CodeKindOrdinary, nil)
	if err != nil {
		t.Fatalf("find with empty forms failed: %v", err)
	}
	if code != nil {
		t.Fatalf("empty forms should return nil, got %+v", code)
	}
}

func TestClaimIsConditionalOnUnused(t *testing.T) {
	repo, db := setupCodeRepositoryTest(t)

	code := seedRepoCode(t, db, constants.CodeKindOrdinary, "ABCDEF-1234", 1)
	now := time.Now()

	claimed, err := repo.Claim(code.ID, 11, now)
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if !claimed {
		t.Fatalf("first claim should win")
	}

	claimed, err = repo.Claim(code.ID, 12, now)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if claimed {
		t.Fatalf("second claim on used row should lose")
	}

	var stored models.Code
	if err := db.First(&stored, code.ID).Error; err != nil {
		t.Fatalf("load code failed: %v", err)
	}
	if !stored.IsUsed || stored.UsedByID == nil || *stored.UsedByID != 11 {
		t.Fatalf("first claimer should own the row, got %+v", stored)
	}

	rows, err := repo.ResetUsage(code.ID)
	if err != nil {
		t.Fatalf("reset usage failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("reset rows want 1 got %d", rows)
	}
	stored = models.Code{}
	if err := db.First(&stored, code.ID).Error; err != nil {
		t.Fatalf("reload code failed: %v", err)
	}
	if stored.IsUsed || stored.UsedAt != nil || stored.UsedByID != nil {
		t.Fatalf("reset should clear usage fields, got %+v", stored)
	}

	// 复位后重新可认领
	claimed, err = repo.Claim(code.ID, 12, time.Now())
	if err != nil {
		t.Fatalf("claim after reset failed: %v", err)
	}
	if !claimed {
		t.Fatalf("claim after reset should win")
	}
	if err := db.First(&stored, code.ID).Error; err != nil {
		t.Fatalf("reload code failed: %v", err)
	}
	if !stored.IsUsed || stored.UsedByID == nil || *stored.UsedByID != 12 {
		t.Fatalf("new claimer should own the row after reset, got %+v", stored)
	}
}

func TestMaxSeqIDIncludesSoftDeleted(t *testing.T) {
	repo, db := setupCodeRepositoryTest(t)

	seedRepoCode(t, db, constants.CodeKindOrdinary, "ABCDEF-1234", 1)
	high := seedRepoCode(t, db, constants.CodeKindOrdinary, "GHIJKL-5678", 9)
	seedRepoCode(t, db, constants.CodeKindWinner, "MNOPQR-1111", 3)

	if err := repo.SoftDelete(high.ID, 7); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	max, err := repo.MaxSeqID(constants.CodeKindOrdinary)
	if err != nil {
		t.Fatalf("max seq failed: %v", err)
	}
	if max != 9 {
		t.Fatalf("max seq should count soft deleted rows, want 9 got %d", max)
	}

	max, err = repo.MaxSeqID("missing-kind")
	if err != nil {
		t.Fatalf("max seq of empty kind failed: %v", err)
	}
	if max != 0 {
		t.Fatalf("empty kind max seq want 0 got %d", max)
	}
}

func TestClearAllSparesSoftDeletedRows(t *testing.T) {
	repo, db := setupCodeRepositoryTest(t)

	seedRepoCode(t, db, constants.CodeKindOrdinary, "ABCDEF-1234", 1)
	removed := seedRepoCode(t, db, constants.CodeKindOrdinary, "GHIJKL-5678", 2)
	seedRepoCode(t, db, constants.CodeKindWinner, "MNOPQR-1111", 1)

	if err := repo.SoftDelete(removed.ID, 7); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	rows, err := repo.ClearAll(constants.CodeKindOrdinary)
	if err != nil {
		t.Fatalf("clear all failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("clear should remove only live rows, want 1 got %d", rows)
	}

	var liveCount int64
	if err := db.Model(&models.Code{}).Where("kind = ?", constants.CodeKindOrdinary).Count(&liveCount).Error; err != nil {
		t.Fatalf("count live failed: %v", err)
	}
	if liveCount != 0 {
		t.Fatalf("live ordinary count want 0 got %d", liveCount)
	}

	var totalOrdinary int64
	if err := db.Unscoped().Model(&models.Code{}).Where("kind = ?", constants.CodeKindOrdinary).Count(&totalOrdinary).Error; err != nil {
		t.Fatalf("count unscoped failed: %v", err)
	}
	if totalOrdinary != 1 {
		t.Fatalf("soft deleted row should survive clear, want 1 got %d", totalOrdinary)
	}

	winnerCount, err := repo.CountByKind(constants.CodeKindWinner)
	if err != nil {
		t.Fatalf("count winner failed: %v", err)
	}
	if winnerCount != 1 {
		t.Fatalf("other kind should be untouched, want 1 got %d", winnerCount)
	}
}

func TestListFiltersAndSearch(t *testing.T) {
	repo, db := setupCodeRepositoryTest(t)

	a := seedRepoCode(t, db, constants.CodeKindOrdinary, "ABCDEF-1234", 1)
	seedRepoCode(t, db, constants.CodeKindOrdinary, "GHIJKL-5678", 9)
	seedRepoCode(t, db, constants.CodeKindWinner, "MNOPQR-1111", 1)

	now := time.Now()
	if _, err := repo.Claim(a.ID, 11, now); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	used := true
	codes, total, err := repo.List(CodeListFilter{Kind: constants.CodeKindOrdinary, Used: &used, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list used failed: %v", err)
	}
	if total != 1 || len(codes) != 1 || codes[0].ID != a.ID {
		t.Fatalf("used filter want single claimed row, got total=%d rows=%d", total, len(codes))
	}

	codes, total, err = repo.List(CodeListFilter{Kind: constants.CodeKindOrdinary, Search: "9", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by seq failed: %v", err)
	}
	if total != 1 || codes[0].Value != "GHIJKL-5678" {
		t.Fatalf("seq search want GHIJKL-5678, got total=%d", total)
	}

	codes, total, err = repo.List(CodeListFilter{Search: "MNOP", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by value failed: %v", err)
	}
	if total != 1 || codes[0].Kind != constants.CodeKindWinner {
		t.Fatalf("value search want winner row, got total=%d", total)
	}
}
