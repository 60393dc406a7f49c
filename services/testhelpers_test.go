package services

import (
	"testing"
	"time"

	"backend/models"
	"backend/utils"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.RefreshSession{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestIssuer() *utils.TokenIssuer {
	return &utils.TokenIssuer{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func mustCreateUser(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", user.Username, err)
	}
}

func floatPtr(v float64) *float64 { return &v }

func nopLogger() *zap.Logger { return zap.NewNop() }
