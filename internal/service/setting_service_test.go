package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSettingServiceTest(t *testing.T) *SettingService {
	t.Helper()
	dsn := fmt.Sprintf("file:setting_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewSettingService(repository.NewSettingRepository(db), true, 3)
}

func TestUpdateRedemptionSettingRoundTrip(t *testing.T) {
	svc := setupSettingServiceTest(t)
	ctx := context.Background()

	saved, err := svc.UpdateRedemptionSetting(ctx, RedemptionSetting{
		CodeLimitPerUser: CodeLimitSetting{Status: true, Value: 5},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !saved.CodeLimitPerUser.Status || saved.CodeLimitPerUser.Value != 5 {
		t.Fatalf("saved = %+v", saved)
	}

	loaded, err := svc.GetRedemptionSetting(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !loaded.CodeLimitPerUser.Status || loaded.CodeLimitPerUser.Value != 5 {
		t.Fatalf("loaded = %+v", loaded)
	}

	// 上限为 0 等价于关闭限制
	saved, err = svc.UpdateRedemptionSetting(ctx, RedemptionSetting{
		CodeLimitPerUser: CodeLimitSetting{Status: true, Value: 0},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if saved.CodeLimitPerUser.Status {
		t.Fatalf("zero limit must disable the gate: %+v", saved)
	}
}

func TestUpdateRedemptionSettingRejectsOutOfRange(t *testing.T) {
	svc := setupSettingServiceTest(t)
	ctx := context.Background()

	for _, value := range []int{-1, codeLimitValueMax + 1} {
		if _, err := svc.UpdateRedemptionSetting(ctx, RedemptionSetting{
			CodeLimitPerUser: CodeLimitSetting{Status: true, Value: value},
		}); err != ErrSettingInvalid {
			t.Fatalf("value %d: error = %v, want ErrSettingInvalid", value, err)
		}
	}
}

func TestGetRedemptionSettingDefaults(t *testing.T) {
	svc := setupSettingServiceTest(t)

	setting, err := svc.GetRedemptionSetting(context.Background())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !setting.CodeLimitPerUser.Status || setting.CodeLimitPerUser.Value != 3 {
		t.Fatalf("defaults = %+v", setting)
	}
}
