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

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// WithTx 返回绑定到事务 tx 的仓库
func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("LessonsCompleted", func(db *gorm.DB) *gorm.DB { return db.Order("completed_at asc") }).
		Preload("WeeklyAssessments", func(db *gorm.DB) *gorm.DB { return db.Order("week asc") }).
		Preload("VocabularyMastered", func(db *gorm.DB) *gorm.DB { return db.Order("word asc") })
}

// FindByUserAndPath 不存在时返回 util.ErrProgressNotFound
func (r *ProgressRepository) FindByUserAndPath(ctx context.Context, userID uint, pathID string) (*model.Progress, error) {
	var p model.Progress
	err := r.withChildren(ctx).
		Where("user_id = ? AND learning_path_id = ?", userID, pathID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) ExistsByUserAndPath(ctx context.Context, userID uint, pathID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Progress{}).
		Where("user_id = ? AND learning_path_id = ?", userID, pathID).
		Count(&count).Error
	return count > 0, err
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID uint) ([]model.Progress, error) {
	ps := make([]model.Progress, 0)
	err := r.withChildren(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&ps).Error
	return ps, err
}

// Create 唯一索引冲突时返回 util.ErrAlreadyEnrolled（需要开启 TranslateError）
func (r *ProgressRepository) Create(ctx context.Context, p *model.Progress) error {
	err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyEnrolled
	}
	return err
}

// Save 以 version 做乐观锁写回聚合，然后 upsert 所有子记录。
// 版本不匹配返回 util.ErrVersionConflict；应在事务中调用
func (r *ProgressRepository) Save(ctx context.Context, p *model.Progress) error {
	db := r.DB.WithContext(ctx)

	res := db.Model(&model.Progress{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]interface{}{
			"current_week":             p.CurrentWeek,
			"total_time_spent_minutes": p.TotalTimeSpentMinutes,
			"streak_days":              p.StreakDays,
			"last_active_at":           p.LastActiveAt,
			"is_completed":             p.IsCompleted,
			"completed_at":             p.CompletedAt,
			"version":                  p.Version + 1,
			"updated_at":               time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrVersionConflict
	}
	p.Version++

	if len(p.LessonsCompleted) > 0 {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "progress_id"}, {Name: "lesson_id"}},
			UpdateAll: true,
		}).Create(&p.LessonsCompleted).Error; err != nil {
			return err
		}
	}
	if len(p.WeeklyAssessments) > 0 {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "progress_id"}, {Name: "week"}},
			UpdateAll: true,
		}).Create(&p.WeeklyAssessments).Error; err != nil {
			return err
		}
	}
	if len(p.VocabularyMastered) > 0 {
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "progress_id"}, {Name: "word"}},
			UpdateAll: true,
		}).Create(&p.VocabularyMastered).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListDueWords 返回 nextReviewAt <= now 的单词，按到期时间排序
func (r *ProgressRepository) ListDueWords(ctx context.Context, progressID uint, now time.Time) ([]model.VocabularyWord, error) {
	words := make([]model.VocabularyWord, 0)
	err := r.DB.WithContext(ctx).
		Where("progress_id = ? AND next_review_at <= ?", progressID, now).
		Order("next_review_at asc").
		Find(&words).Error
	return words, err
}
