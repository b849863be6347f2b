package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"lingua_backend/pkg/tracing"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressPolicy 进度引擎的运行策略，可热更新
type ProgressPolicy struct {
	Location     *time.Location
	StoreTimeout time.Duration
	MaxAttempts  int
	PassingScore int
	Review       model.ReviewPolicy
}

func NewProgressPolicy(cfg config.ProgressConfig) (ProgressPolicy, error) {
	if err := cfg.Validate(); err != nil {
		return ProgressPolicy{}, err
	}
	loc, _ := time.LoadLocation(cfg.Timezone)
	return ProgressPolicy{
		Location:     loc,
		StoreTimeout: cfg.StoreTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		PassingScore: cfg.PassingScore,
		Review:       model.ReviewPolicy{MaxIntervalDays: cfg.MaxReviewIntervalDays},
	}, nil
}

type CompleteLessonRequest struct {
	PathID           string `json:"pathId" binding:"required,max=36"`
	LessonID         string `json:"lessonId" binding:"required,max=64"`
	Score            *int   `json:"score" binding:"omitempty,min=0,max=100"`
	TimeSpentMinutes *int   `json:"timeSpentMinutes" binding:"omitempty,min=0"`
	Notes            string `json:"notes" binding:"max=2000"`
}

type WeeklyAssessmentRequest struct {
	PathID         string   `json:"pathId" binding:"required,max=36"`
	Week           int      `json:"week" binding:"required,min=1"`
	Score          *int     `json:"score" binding:"required,min=0,max=100"`
	Feedback       string   `json:"feedback" binding:"max=2000"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areasToImprove"`
}

type VocabularyRequest struct {
	PathID      string `json:"pathId" binding:"required,max=36"`
	Word        string `json:"word" binding:"required,max=191"`
	Translation string `json:"translation" binding:"max=255"`
	Mastered    *bool  `json:"mastered"`
}

// ProgressService 学习进度与间隔重复引擎。
// 同一 (user, path) 的写操作通过 version 乐观锁串行化，冲突或超时会在有限次数内重试
type ProgressService struct {
	DB       *gorm.DB
	Repo     *repository.ProgressRepository
	UserRepo *repository.UserRepository
	Catalog  *CatalogService
	Now      func() time.Time // 测试中注入时钟

	policy   atomic.Pointer[ProgressPolicy]
	validate *validator.Validate

	// beforeSave 在写回前于同一事务内调用，测试中用于制造版本冲突
	beforeSave func(tx *gorm.DB, p *model.Progress) error
}

func NewProgressService(
	db *gorm.DB,
	repo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	catalog *CatalogService,
	policy ProgressPolicy,
) *ProgressService {
	s := &ProgressService{
		DB:       db,
		Repo:     repo,
		UserRepo: userRepo,
		Catalog:  catalog,
		validate: util.NewValidator(),
	}
	s.SetPolicy(policy)
	return s
}

func (s *ProgressService) Policy() ProgressPolicy {
	return *s.policy.Load()
}

// SetPolicy 配置热加载时调用，进行中的操作继续使用旧策略
func (s *ProgressService) SetPolicy(p ProgressPolicy) {
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.StoreTimeout <= 0 {
		p.StoreTimeout = 3 * time.Second
	}
	s.policy.Store(&p)
}

func (s *ProgressService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Millisecond)
	}
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ListProgress 学习者的全部进度
func (s *ProgressService) ListProgress(ctx context.Context, userID uint) ([]model.Progress, error) {
	return runOp(ctx, s, "ListProgress", userID, "", func(ctx context.Context) ([]model.Progress, error) {
		return s.Repo.ListByUser(ctx, userID)
	})
}

// GetProgress 不存在时返回 util.ErrProgressNotFound
func (s *ProgressService) GetProgress(ctx context.Context, userID uint, pathID string) (*model.Progress, error) {
	return runOp(ctx, s, "GetProgress", userID, pathID, func(ctx context.Context) (*model.Progress, error) {
		return s.Repo.FindByUserAndPath(ctx, userID, pathID)
	})
}

// ListDueWords 到期需要复习的单词 (nextReviewAt <= now)
func (s *ProgressService) ListDueWords(ctx context.Context, userID uint, pathID string) ([]model.VocabularyWord, error) {
	return runOp(ctx, s, "ListDueWords", userID, pathID, func(ctx context.Context) ([]model.VocabularyWord, error) {
		p, err := s.Repo.FindByUserAndPath(ctx, userID, pathID)
		if err != nil {
			return nil, err
		}
		return s.Repo.ListDueWords(ctx, p.ID, s.now())
	})
}

// StartPath 开始一条学习路径：创建进度，并在同一事务中把路径语言加入学习者的语言组合
func (s *ProgressService) StartPath(ctx context.Context, userID uint, pathID string) (*model.Progress, error) {
	path, err := s.Catalog.GetPath(ctx, pathID)
	if err != nil {
		return nil, s.fail(ctx, "StartPath", userID, pathID, err)
	}

	return runOp(ctx, s, "StartPath", userID, pathID, func(ctx context.Context) (*model.Progress, error) {
		var created *model.Progress
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.Repo.WithTx(tx)
			exists, err := repo.ExistsByUserAndPath(ctx, userID, pathID)
			if err != nil {
				return err
			}
			if exists {
				return util.ErrAlreadyEnrolled
			}

			now := s.now()
			p := model.NewProgress(userID, pathID, now)
			if err := repo.Create(ctx, p); err != nil {
				return err
			}
			added, err := s.UserRepo.WithTx(tx).AddLearningLanguage(ctx, userID, path.LanguageID, path.Level, now)
			if err != nil {
				return err
			}
			if added {
				logger.Log.Info("learning language added",
					zap.Uint("userId", userID),
					zap.String("languageId", path.LanguageID),
					zap.String("level", string(path.Level)))
			}
			created = p
			return nil
		})
		return created, err
	})
}

// CompleteLesson 记录课程完成并推进连续天数
func (s *ProgressService) CompleteLesson(ctx context.Context, userID uint, req CompleteLessonRequest) (*model.Progress, error) {
	const op = "CompleteLesson"
	if err := s.check(req); err != nil {
		return nil, s.fail(ctx, op, userID, req.PathID, err)
	}

	loc := s.Policy().Location
	return s.mutate(ctx, op, userID, req.PathID, func(p *model.Progress, now time.Time) error {
		p.CompleteLesson(model.LessonResult{
			LessonID:         req.LessonID,
			Score:            req.Score,
			TimeSpentMinutes: req.TimeSpentMinutes,
			Notes:            req.Notes,
		}, now, loc)
		return nil
	})
}

// SubmitWeeklyAssessment 记录周测；提交当前周时推进到下一周或完成整条路径
func (s *ProgressService) SubmitWeeklyAssessment(ctx context.Context, userID uint, req WeeklyAssessmentRequest) (*model.Progress, error) {
	const op = "SubmitWeeklyAssessment"
	if err := s.check(req); err != nil {
		return nil, s.fail(ctx, op, userID, req.PathID, err)
	}

	duration, err := s.Catalog.GetPathDuration(ctx, req.PathID)
	if err != nil {
		return nil, s.fail(ctx, op, userID, req.PathID, err)
	}

	passing := s.Policy().PassingScore
	return s.mutate(ctx, op, userID, req.PathID, func(p *model.Progress, now time.Time) error {
		// 路径缩短后 currentWeek 可能超过总周数，仍允许提交当前周以完成路径
		if req.Week > duration && req.Week != p.CurrentWeek {
			return util.NewValidationError("week", fmt.Sprintf("must be at most %d", duration))
		}
		advanced := p.SubmitAssessment(model.AssessmentResult{
			Week:           req.Week,
			Score:          *req.Score,
			Feedback:       req.Feedback,
			Strengths:      req.Strengths,
			AreasToImprove: req.AreasToImprove,
		}, duration, passing, now)
		if advanced {
			logger.Log.Debug("checkpoint advanced",
				zap.Uint("userId", userID),
				zap.String("pathId", req.PathID),
				zap.Int("currentWeek", p.CurrentWeek),
				zap.Bool("completed", p.IsCompleted))
		}
		return nil
	})
}

// ReviewVocabulary 新增或复习一个单词，按 2^n 天安排下一次复习
func (s *ProgressService) ReviewVocabulary(ctx context.Context, userID uint, req VocabularyRequest) (*model.Progress, error) {
	const op = "ReviewVocabulary"
	if err := s.check(req); err != nil {
		return nil, s.fail(ctx, op, userID, req.PathID, err)
	}

	review := s.Policy().Review
	return s.mutate(ctx, op, userID, req.PathID, func(p *model.Progress, now time.Time) error {
		if p.FindWord(req.Word) == nil && strings.TrimSpace(req.Translation) == "" {
			return util.NewValidationError("translation", "is required for a new word")
		}
		p.ReviewVocabulary(model.VocabularyReview{
			Word:        req.Word,
			Translation: req.Translation,
			Mastered:    req.Mastered,
		}, now, review)
		return nil
	})
}

func (s *ProgressService) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		if verr := util.AsValidationError(err); verr != nil {
			return verr
		}
		return err
	}
	return nil
}

// mutate 读取-修改-写回，整个周期在一个事务内完成，失败时已持久化的聚合保持不变
func (s *ProgressService) mutate(ctx context.Context, op string, userID uint, pathID string, apply func(p *model.Progress, now time.Time) error) (*model.Progress, error) {
	return runOp(ctx, s, op, userID, pathID, func(ctx context.Context) (*model.Progress, error) {
		var out *model.Progress
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.Repo.WithTx(tx)
			p, err := repo.FindByUserAndPath(ctx, userID, pathID)
			if err != nil {
				return err
			}
			if err := apply(p, s.now()); err != nil {
				return err
			}
			if s.beforeSave != nil {
				if err := s.beforeSave(tx, p); err != nil {
					return err
				}
			}
			if err := repo.Save(ctx, p); err != nil {
				return err
			}
			out = p
			return nil
		})
		return out, err
	})
}

// runOp 每次尝试都有独立的超时；只有瞬时错误会重试，重试耗尽后返回 util.ErrStorageUnavailable
func runOp[T any](ctx context.Context, s *ProgressService, op string, userID uint, pathID string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := tracing.Tracer.Start(ctx, "progress."+op, trace.WithAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.String("path.id", pathID),
	))
	defer span.End()

	policy := s.Policy()
	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, policy.StoreTimeout)
		defer cancel()

		res, err := fn(attemptCtx)
		if err != nil && !util.IsTransient(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(newRetryBackOff()),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			monitoring.StoreRetries.WithLabelValues(op).Inc()
			logger.Log.Warn("progress store retry",
				zap.String("operation", op),
				zap.Uint("userId", userID),
				zap.String("pathId", pathID),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, util.ErrorKind(err))
		var zero T
		return zero, s.fail(ctx, op, userID, pathID, err)
	}

	monitoring.ProgressOperations.WithLabelValues(op, "ok").Inc()
	return result, nil
}

func newRetryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

// fail 记录失败日志和指标。瞬时错误统一包装为 util.ErrStorageUnavailable
func (s *ProgressService) fail(ctx context.Context, op string, userID uint, pathID string, err error) error {
	kind := util.ErrorKind(err)
	if kind == util.KindTransient && !errors.Is(err, util.ErrStorageUnavailable) {
		err = fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	monitoring.ProgressOperations.WithLabelValues(op, kind).Inc()

	fields := []zap.Field{
		zap.String("operation", op),
		zap.Uint("userId", userID),
		zap.String("pathId", pathID),
		zap.String("kind", kind),
		zap.Error(err),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields = append(fields, zap.String("traceId", sc.TraceID().String()))
	}
	switch kind {
	case util.KindTransient, util.KindInternal:
		logger.Log.Error("progress operation failed", fields...)
	default:
		logger.Log.Info("progress operation rejected", fields...)
	}
	return err
}
