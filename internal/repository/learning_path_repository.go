package repository

import (
	"context"
	"errors"
	"lingua_backend/internal/model"
	"lingua_backend/internal/util"

	"gorm.io/gorm"
)

// LearningPathRepository 只读访问内容目录中的学习路径
type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) Create(ctx context.Context, path *model.LearningPath) error {
	return r.DB.WithContext(ctx).Create(path).Error
}

// FindByID 不存在时返回 util.ErrPathNotFound
func (r *LearningPathRepository) FindByID(ctx context.Context, id string) (*model.LearningPath, error) {
	var p model.LearningPath
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPathNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
