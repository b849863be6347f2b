package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/testutil"
	"lingua_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *ProgressService
	user  *model.User
	path  *model.LearningPath
	clock time.Time
}

func newFixture(t *testing.T, weeks int) *fixture {
	t.Helper()
	db := testutil.DB(t)
	f := &fixture{
		db:    db,
		user:  testutil.SeedUser(t, db, "ana@example.com"),
		path:  testutil.SeedPath(t, db, "es", model.LevelBeginner, weeks),
		clock: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	catalog := NewCatalogService(repository.NewLearningPathRepository(db), nil, 0)
	f.svc = NewProgressService(db,
		repository.NewProgressRepository(db),
		repository.NewUserRepository(db),
		catalog,
		ProgressPolicy{Location: time.UTC, StoreTimeout: 2 * time.Second, MaxAttempts: 3},
	)
	f.svc.Now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func intRef(v int) *int { return &v }

func TestStartPath(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	p, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentWeek)
	assert.Equal(t, 0, p.StreakDays)
	assert.False(t, p.IsCompleted)
	assert.Empty(t, p.LessonsCompleted)

	u, err := f.svc.UserRepo.FindByID(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, u.LearningLanguages, 1)
	assert.Equal(t, "es", u.LearningLanguages[0].LanguageID)
	assert.Equal(t, model.LevelBeginner, u.LearningLanguages[0].Level)

	// 同一语言的另一条路径不会重复加入语言组合
	other := testutil.SeedPath(t, f.db, "es", model.LevelIntermediate, 6)
	_, err = f.svc.StartPath(ctx, f.user.ID, other.ID)
	require.NoError(t, err)
	u, err = f.svc.UserRepo.FindByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, u.LearningLanguages, 1)

	all, err := f.svc.ListProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStartPathTwiceKeepsOriginal(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	_, err = f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID, LessonID: "L1"})
	require.NoError(t, err)

	f.advance(48 * time.Hour)
	_, err = f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
	assert.Equal(t, util.KindConflict, util.ErrorKind(err))

	p, err := f.svc.GetProgress(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	assert.Len(t, p.LessonsCompleted, 1)
	assert.Equal(t, 2, p.Version)
}

func TestStartPathNotFound(t *testing.T) {
	f := newFixture(t, 4)
	_, err := f.svc.StartPath(context.Background(), f.user.ID, "missing-path")
	assert.ErrorIs(t, err, util.ErrPathNotFound)

	_, err = f.svc.StartPath(context.Background(), 9999, f.path.ID)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	// 失败的注册不留下进度记录
	_, err = f.svc.GetProgress(context.Background(), 9999, f.path.ID)
	assert.ErrorIs(t, err, util.ErrProgressNotFound)
}

func TestMutationsRequireEnrollment(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	_, err := f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID, LessonID: "L1"})
	assert.ErrorIs(t, err, util.ErrProgressNotFound)

	_, err = f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: 1, Score: intRef(90)})
	assert.ErrorIs(t, err, util.ErrProgressNotFound)

	_, err = f.svc.ReviewVocabulary(ctx, f.user.ID, VocabularyRequest{PathID: f.path.ID, Word: "casa", Translation: "house"})
	assert.ErrorIs(t, err, util.ErrProgressNotFound)

	_, err = f.svc.ListDueWords(ctx, f.user.ID, f.path.ID)
	assert.ErrorIs(t, err, util.ErrProgressNotFound)
}

func TestTwoWeekPathToCompletion(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	p, err := f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{
		PathID: f.path.ID, LessonID: "L1", Score: intRef(85), TimeSpentMinutes: intRef(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, p.StreakDays)
	assert.Equal(t, 20, p.TotalTimeSpentMinutes)

	f.advance(24 * time.Hour)
	p, err = f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{
		PathID: f.path.ID, LessonID: "L2", TimeSpentMinutes: intRef(15),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.StreakDays)
	assert.Equal(t, 35, p.TotalTimeSpentMinutes)

	p, err = f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{
		PathID: f.path.ID, Week: 1, Score: intRef(80), Strengths: []string{"listening"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentWeek)
	assert.False(t, p.IsCompleted)

	f.advance(7 * 24 * time.Hour)
	p, err = f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{
		PathID: f.path.ID, Week: 2, Score: intRef(90),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentWeek)
	assert.True(t, p.IsCompleted)
	require.NotNil(t, p.CompletedAt)
	completedAt := *p.CompletedAt

	f.advance(24 * time.Hour)
	p, err = f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{
		PathID: f.path.ID, Week: 2, Score: intRef(95), Feedback: "retake",
	})
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	assert.Equal(t, 2, p.CurrentWeek)

	got, err := f.svc.GetProgress(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, completedAt.Equal(*got.CompletedAt))
	require.Len(t, got.WeeklyAssessments, 2)
	assert.Equal(t, 95, got.WeeklyAssessments[1].Score)
	assert.Equal(t, "retake", got.WeeklyAssessments[1].Feedback)
	assert.Len(t, got.LessonsCompleted, 2)
}

func TestPassingScoreGate(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	policy := f.svc.Policy()
	policy.PassingScore = 60
	f.svc.SetPolicy(policy)

	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	p, err := f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: 1, Score: intRef(50)})
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentWeek)
	require.Len(t, p.WeeklyAssessments, 1)

	p, err = f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: 1, Score: intRef(60)})
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentWeek)
	assert.Len(t, p.WeeklyAssessments, 1)
}

func TestShrunkPathStillCompletes(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	for week := 1; week <= 2; week++ {
		_, err := f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: week, Score: intRef(80)})
		require.NoError(t, err)
	}

	// 目录把路径缩短到 2 周，学习者已经在第 3 周
	require.NoError(t, f.db.Model(&model.LearningPath{}).Where("id = ?", f.path.ID).Update("duration_weeks", 2).Error)

	_, err = f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: 4, Score: intRef(80)})
	verr := util.AsValidationError(err)
	require.NotNil(t, verr, "expected validation error, got %v", err)
	assert.Equal(t, "week", verr.Fields[0].Field)

	p, err := f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: 3, Score: intRef(85)})
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	assert.Equal(t, 3, p.CurrentWeek)
	require.NotNil(t, p.CompletedAt)
	assert.Len(t, p.WeeklyAssessments, 3)
}

func TestVersionConflictIsRetried(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	attempts := 0
	f.svc.beforeSave = func(tx *gorm.DB, p *model.Progress) error {
		attempts++
		if attempts > 1 {
			return nil
		}
		// 另一个写入者在读取之后推进了版本
		return tx.Model(&model.Progress{}).Where("id = ?", p.ID).
			Update("version", gorm.Expr("version + 1")).Error
	}

	p, err := f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID, LessonID: "L1", TimeSpentMinutes: intRef(10)})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Len(t, p.LessonsCompleted, 1)
	assert.Equal(t, 10, p.TotalTimeSpentMinutes)

	got, err := f.svc.GetProgress(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	require.Len(t, got.LessonsCompleted, 1)
	assert.Equal(t, 10, got.TotalTimeSpentMinutes)
}

func TestPersistentVersionConflictExhaustsRetries(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	attempts := 0
	f.svc.beforeSave = func(tx *gorm.DB, p *model.Progress) error {
		attempts++
		return tx.Model(&model.Progress{}).Where("id = ?", p.ID).
			Update("version", gorm.Expr("version + 1")).Error
	}

	_, err = f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID, LessonID: "L1", TimeSpentMinutes: intRef(10)})
	assert.ErrorIs(t, err, util.ErrStorageUnavailable)
	assert.Equal(t, util.KindTransient, util.ErrorKind(err))
	assert.Equal(t, f.svc.Policy().MaxAttempts, attempts)

	f.svc.beforeSave = nil
	got, err := f.svc.GetProgress(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Empty(t, got.LessonsCompleted)
	assert.Zero(t, got.TotalTimeSpentMinutes)
}

func TestVocabularySchedule(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	start := f.clock
	p, err := f.svc.ReviewVocabulary(ctx, f.user.ID, VocabularyRequest{PathID: f.path.ID, Word: "casa", Translation: "house"})
	require.NoError(t, err)
	w := p.FindWord("casa")
	require.NotNil(t, w)
	assert.Equal(t, 0, w.RepetitionCount)
	assert.True(t, start.AddDate(0, 0, 1).Equal(w.NextReviewAt))

	due, err := f.svc.ListDueWords(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	assert.Empty(t, due)

	f.advance(24 * time.Hour)
	due, err = f.svc.ListDueWords(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "casa", due[0].Word)

	mastered := true
	p, err = f.svc.ReviewVocabulary(ctx, f.user.ID, VocabularyRequest{PathID: f.path.ID, Word: "casa", Mastered: &mastered})
	require.NoError(t, err)
	w = p.FindWord("casa")
	assert.Equal(t, 1, w.RepetitionCount)
	assert.Equal(t, "house", w.Translation)
	assert.True(t, w.Mastered)
	assert.True(t, f.clock.AddDate(0, 0, 2).Equal(w.NextReviewAt))

	f.advance(2 * 24 * time.Hour)
	p, err = f.svc.ReviewVocabulary(ctx, f.user.ID, VocabularyRequest{PathID: f.path.ID, Word: "casa"})
	require.NoError(t, err)
	w = p.FindWord("casa")
	assert.Equal(t, 2, w.RepetitionCount)
	assert.True(t, w.Mastered)
	assert.True(t, f.clock.AddDate(0, 0, 4).Equal(w.NextReviewAt))
	assert.Len(t, p.VocabularyMastered, 1)
}

func TestValidationRejectsBeforeMutation(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	cases := []struct {
		name  string
		field string
		call  func() error
	}{
		{"missing lesson", "lessonId", func() error {
			_, err := f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID})
			return err
		}},
		{"lesson score too high", "score", func() error {
			_, err := f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID, LessonID: "L1", Score: intRef(101)})
			return err
		}},
		{"negative time", "timeSpentMinutes", func() error {
			_, err := f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID, LessonID: "L1", TimeSpentMinutes: intRef(-5)})
			return err
		}},
		{"missing assessment score", "score", func() error {
			_, err := f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: 1})
			return err
		}},
		{"week zero", "week", func() error {
			_, err := f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Score: intRef(70)})
			return err
		}},
		{"week beyond duration", "week", func() error {
			_, err := f.svc.SubmitWeeklyAssessment(ctx, f.user.ID, WeeklyAssessmentRequest{PathID: f.path.ID, Week: 5, Score: intRef(70)})
			return err
		}},
		{"new word without translation", "translation", func() error {
			_, err := f.svc.ReviewVocabulary(ctx, f.user.ID, VocabularyRequest{PathID: f.path.ID, Word: "perro"})
			return err
		}},
		{"missing word", "word", func() error {
			_, err := f.svc.ReviewVocabulary(ctx, f.user.ID, VocabularyRequest{PathID: f.path.ID, Translation: "dog"})
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			verr := util.AsValidationError(err)
			require.NotNil(t, verr, "expected validation error, got %v", err)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
		})
	}

	p, err := f.svc.GetProgress(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
	assert.Empty(t, p.LessonsCompleted)
	assert.Empty(t, p.WeeklyAssessments)
	assert.Empty(t, p.VocabularyMastered)
}

func TestConcurrentLessonsAllRecorded(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	_, err := f.svc.StartPath(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)

	lessons := []string{"L1", "L2", "L3", "L4", "L5"}
	var wg sync.WaitGroup
	errs := make(chan error, len(lessons))
	for _, id := range lessons {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.CompleteLesson(ctx, f.user.ID, CompleteLessonRequest{PathID: f.path.ID, LessonID: id, TimeSpentMinutes: intRef(10)})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := f.svc.GetProgress(ctx, f.user.ID, f.path.ID)
	require.NoError(t, err)
	assert.Len(t, p.LessonsCompleted, len(lessons))
	assert.Equal(t, 50, p.TotalTimeSpentMinutes)
	assert.Equal(t, 1+len(lessons), p.Version)
}

func TestRunOpRetriesTransientErrors(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	calls := 0
	got, err := runOp(ctx, f.svc, "Test", 1, "p", func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, util.ErrVersionConflict
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = runOp(ctx, f.svc, "Test", 1, "p", func(ctx context.Context) (int, error) {
		calls++
		return 0, util.ErrVersionConflict
	})
	assert.ErrorIs(t, err, util.ErrStorageUnavailable)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = runOp(ctx, f.svc, "Test", 1, "p", func(ctx context.Context) (int, error) {
		calls++
		return 0, util.ErrProgressNotFound
	})
	assert.ErrorIs(t, err, util.ErrProgressNotFound)
	assert.Equal(t, 1, calls)
}
