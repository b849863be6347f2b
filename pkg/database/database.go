package database

import (
	"fmt"
	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector 按 driver 构造 gorm 方言
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
				cfg.User,
				cfg.Password,
				cfg.Host,
				cfg.Port,
				cfg.DBName,
				cfg.Charset,
				cfg.ParseTime,
			)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.DBName + ".db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Info
	if mode == "release" {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

// binaryKeyColumns 按字面值区分的键列。MySQL 默认排序规则 (utf8mb4_0900_ai_ci)
// 忽略大小写和重音，"si" 与 "sí" 会落到同一个主键上
var binaryKeyColumns = []struct {
	table    string
	column   string
	dataType string
}{
	{"vocabulary_words", "word", "VARCHAR(191)"},
	{"lesson_completions", "lesson_id", "VARCHAR(64)"},
}

// binaryCollationStatements 返回把键列改为二进制排序规则的 DDL。
// postgres 的默认排序规则和 sqlite 的 BINARY 本身按字节比较，不需要处理
func binaryCollationStatements(dialect string) []string {
	if dialect != "mysql" {
		return nil
	}
	stmts := make([]string, 0, len(binaryKeyColumns))
	for _, c := range binaryKeyColumns {
		stmts = append(stmts, fmt.Sprintf(
			"ALTER TABLE `%s` MODIFY `%s` %s CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL",
			c.table, c.column, c.dataType))
	}
	return stmts
}

// Migrate 建表。子表使用复合主键，保证 (progress, key) 唯一
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.UserLanguage{},
		&model.LearningPath{},
		&model.Progress{},
		&model.LessonCompletion{},
		&model.WeeklyAssessment{},
		&model.VocabularyWord{},
	); err != nil {
		return err
	}

	for _, stmt := range binaryCollationStatements(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("set binary collation: %w", err)
		}
	}
	return nil
}
