// Package testutil 测试用的内存 SQLite 数据库和种子数据
package testutil

import (
	"context"
	"fmt"
	"lingua_backend/internal/model"
	"lingua_backend/pkg/database"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 每个测试一个独立的内存库（单连接，事务之间不会互相锁表）
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, email string) *model.User {
	tb.Helper()
	u := &model.User{Name: "learner", Email: email, NativeLanguage: "en"}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPath(tb testing.TB, db *gorm.DB, languageID string, level model.LearningLevel, weeks int) *model.LearningPath {
	tb.Helper()
	p := &model.LearningPath{
		LanguageID:    languageID,
		Level:         level,
		Title:         "path",
		DurationWeeks: weeks,
	}
	if err := db.WithContext(context.Background()).Create(p).Error; err != nil {
		tb.Fatalf("seed learning path: %v", err)
	}
	return p
}
