package repository

import (
	"context"
	"errors"
	"lingua_backend/internal/model"
	"lingua_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Preload("LearningLanguages").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddLearningLanguage 学习者尚未学习该语言时追加一条语言记录，已存在则不做任何修改。
// 返回是否新增
func (r *UserRepository) AddLearningLanguage(ctx context.Context, userID uint, languageID string, level model.LearningLevel, startedAt time.Time) (bool, error) {
	db := r.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, util.ErrUserNotFound
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserLanguage{
		UserID:     userID,
		LanguageID: languageID,
		Level:      level,
		StartedAt:  startedAt,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
