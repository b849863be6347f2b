package model

import (
	"time"

	"gorm.io/datatypes"
)

// Progress 学习者在一条学习路径上的进度聚合，(user, learning path) 唯一
// swagger:model Progress
type Progress struct {
	ID                    uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                uint               `gorm:"not null;uniqueIndex:idx_progress_user_path" json:"userId"`
	LearningPathID        string             `gorm:"size:36;not null;uniqueIndex:idx_progress_user_path" json:"learningPathId"`
	CurrentWeek           int                `gorm:"not null;default:1" json:"currentWeek"`
	LessonsCompleted      []LessonCompletion `gorm:"foreignKey:ProgressID" json:"lessonsCompleted"`
	WeeklyAssessments     []WeeklyAssessment `gorm:"foreignKey:ProgressID" json:"weeklyAssessments"`
	VocabularyMastered    []VocabularyWord   `gorm:"foreignKey:ProgressID" json:"vocabularyMastered"`
	TotalTimeSpentMinutes int                `gorm:"not null;default:0" json:"totalTimeSpentMinutes"`
	StreakDays            int                `gorm:"not null;default:0" json:"streakDays"`
	LastActiveAt          time.Time          `json:"lastActiveAt"`
	IsCompleted           bool               `gorm:"not null;default:false" json:"isCompleted"`
	CompletedAt           *time.Time         `json:"completedAt,omitempty"`
	Version               int                `gorm:"not null;default:1" json:"-"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

func (Progress) TableName() string {
	return "progresses"
}

// LessonCompletion 课程完成记录，(progress, lesson) 唯一
// swagger:model LessonCompletion
type LessonCompletion struct {
	ProgressID       uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	LessonID         string    `gorm:"primaryKey;size:64" json:"lessonId"`
	CompletedAt      time.Time `json:"completedAt"`
	Score            *int      `json:"score,omitempty"`
	TimeSpentMinutes *int      `json:"timeSpentMinutes,omitempty"`
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}

// WeeklyAssessment 周测记录，(progress, week) 唯一
// swagger:model WeeklyAssessment
type WeeklyAssessment struct {
	ProgressID     uint                        `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Week           int                         `gorm:"primaryKey;autoIncrement:false" json:"week"`
	Score          int                         `gorm:"not null" json:"score"`
	CompletedAt    time.Time                   `json:"completedAt"`
	Feedback       string                      `gorm:"type:text" json:"feedback,omitempty"`
	Strengths      datatypes.JSONSlice[string] `json:"strengths"`
	AreasToImprove datatypes.JSONSlice[string] `json:"areasToImprove"`
}

func (WeeklyAssessment) TableName() string {
	return "weekly_assessments"
}

// LessonResult 一次完成课程的提交，指针为 nil / Notes 为空表示未提供
type LessonResult struct {
	LessonID         string
	Score            *int
	TimeSpentMinutes *int
	Notes            string
}

// AssessmentResult 一次周测提交。Strengths / AreasToImprove 为 nil 表示未提供
type AssessmentResult struct {
	Week           int
	Score          int
	Feedback       string
	Strengths      []string
	AreasToImprove []string
}

// NewProgress 开始一条学习路径时的初始进度
func NewProgress(userID uint, pathID string, now time.Time) *Progress {
	return &Progress{
		UserID:             userID,
		LearningPathID:     pathID,
		CurrentWeek:        1,
		LessonsCompleted:   []LessonCompletion{},
		WeeklyAssessments:  []WeeklyAssessment{},
		VocabularyMastered: []VocabularyWord{},
		LastActiveAt:       now,
		Version:            1,
	}
}

func (p *Progress) FindLesson(lessonID string) *LessonCompletion {
	for i := range p.LessonsCompleted {
		if p.LessonsCompleted[i].LessonID == lessonID {
			return &p.LessonsCompleted[i]
		}
	}
	return nil
}

func (p *Progress) FindAssessment(week int) *WeeklyAssessment {
	for i := range p.WeeklyAssessments {
		if p.WeeklyAssessments[i].Week == week {
			return &p.WeeklyAssessments[i]
		}
	}
	return nil
}

func (p *Progress) FindWord(word string) *VocabularyWord {
	for i := range p.VocabularyMastered {
		if p.VocabularyMastered[i].Word == word {
			return &p.VocabularyMastered[i]
		}
	}
	return nil
}

// CompleteLesson 记录课程完成。重复提交同一课程原地更新，时长累加到总时长，
// 每次调用都会推进一次连续天数
func (p *Progress) CompleteLesson(r LessonResult, now time.Time, loc *time.Location) {
	if existing := p.FindLesson(r.LessonID); existing != nil {
		existing.CompletedAt = now
		if r.Score != nil {
			existing.Score = intPtr(*r.Score)
		}
		if r.TimeSpentMinutes != nil {
			existing.TimeSpentMinutes = intPtr(*r.TimeSpentMinutes)
		}
		if r.Notes != "" {
			existing.Notes = r.Notes
		}
	} else {
		c := LessonCompletion{
			ProgressID:  p.ID,
			LessonID:    r.LessonID,
			CompletedAt: now,
			Notes:       r.Notes,
		}
		if r.Score != nil {
			c.Score = intPtr(*r.Score)
		}
		if r.TimeSpentMinutes != nil {
			c.TimeSpentMinutes = intPtr(*r.TimeSpentMinutes)
		}
		p.LessonsCompleted = append(p.LessonsCompleted, c)
	}

	if r.TimeSpentMinutes != nil && *r.TimeSpentMinutes > 0 {
		p.TotalTimeSpentMinutes += *r.TimeSpentMinutes
	}

	p.StreakDays, p.LastActiveAt = AdvanceStreak(p.LastActiveAt, now, p.StreakDays, loc)
}

// SubmitAssessment 记录周测并在提交当前周时推进检查点。
// 返回 true 表示 currentWeek 前进或路径完成。
// 分数低于 passingScore 时只记录不推进；passingScore 为 0 时任何分数都推进
func (p *Progress) SubmitAssessment(r AssessmentResult, durationWeeks, passingScore int, now time.Time) bool {
	if existing := p.FindAssessment(r.Week); existing != nil {
		existing.Score = r.Score
		existing.CompletedAt = now
		if r.Feedback != "" {
			existing.Feedback = r.Feedback
		}
		if r.Strengths != nil {
			existing.Strengths = datatypes.JSONSlice[string](r.Strengths)
		}
		if r.AreasToImprove != nil {
			existing.AreasToImprove = datatypes.JSONSlice[string](r.AreasToImprove)
		}
	} else {
		p.WeeklyAssessments = append(p.WeeklyAssessments, WeeklyAssessment{
			ProgressID:     p.ID,
			Week:           r.Week,
			Score:          r.Score,
			CompletedAt:    now,
			Feedback:       r.Feedback,
			Strengths:      datatypes.JSONSlice[string](nonNil(r.Strengths)),
			AreasToImprove: datatypes.JSONSlice[string](nonNil(r.AreasToImprove)),
		})
	}

	if p.IsCompleted || r.Week != p.CurrentWeek || r.Score < passingScore {
		return false
	}

	if r.Week < durationWeeks {
		p.CurrentWeek = r.Week + 1
	} else {
		completedAt := now
		p.IsCompleted = true
		p.CompletedAt = &completedAt
	}
	return true
}

// ReviewVocabulary 复习（或新增）一个单词，返回更新后的记录
func (p *Progress) ReviewVocabulary(r VocabularyReview, now time.Time, policy ReviewPolicy) VocabularyWord {
	existing := p.FindWord(r.Word)
	w := ReviewWord(existing, r, now, policy)
	w.ProgressID = p.ID
	if existing != nil {
		*existing = w
	} else {
		p.VocabularyMastered = append(p.VocabularyMastered, w)
	}
	return w
}

// DueWords 返回 nextReviewAt <= now 的单词
func (p *Progress) DueWords(now time.Time) []VocabularyWord {
	due := make([]VocabularyWord, 0)
	for _, w := range p.VocabularyMastered {
		if w.IsDue(now) {
			due = append(due, w)
		}
	}
	return due
}

func intPtr(v int) *int {
	return &v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
