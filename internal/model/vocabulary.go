package model

import "time"

// maxReviewExponent 防止 2^n 溢出，2^30 天已远超任何合理的复习间隔
const maxReviewExponent = 30

// VocabularyWord 一个学习路径下的单词复习记录，(progress, word) 唯一
// swagger:model VocabularyWord
type VocabularyWord struct {
	ProgressID      uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Word            string    `gorm:"primaryKey;size:191" json:"word"`
	Translation     string    `gorm:"size:255;not null" json:"translation"`
	Mastered        bool      `gorm:"not null;default:false" json:"mastered"`
	LastReviewedAt  time.Time `json:"lastReviewedAt"`
	NextReviewAt    time.Time `gorm:"index" json:"nextReviewAt"`
	RepetitionCount int       `gorm:"not null;default:0" json:"repetitionCount"`
}

func (VocabularyWord) TableName() string {
	return "vocabulary_words"
}

// VocabularyReview 一次复习提交。Translation 为空表示沿用旧值，Mastered 为 nil 同理
type VocabularyReview struct {
	Word        string
	Translation string
	Mastered    *bool
}

// ReviewPolicy 间隔重复策略。MaxIntervalDays <= 0 表示只受 maxReviewExponent 限制
type ReviewPolicy struct {
	MaxIntervalDays int
}

// IntervalDays 第 repetitionCount 次复习之后的间隔：0 次为 1 天，之后为 2^n 天
func (p ReviewPolicy) IntervalDays(repetitionCount int) int {
	if repetitionCount <= 0 {
		return 1
	}
	exp := repetitionCount
	if exp > maxReviewExponent {
		exp = maxReviewExponent
	}
	days := 1 << uint(exp)
	if p.MaxIntervalDays > 0 && days > p.MaxIntervalDays {
		return p.MaxIntervalDays
	}
	return days
}

// ReviewWord 计算复习后的单词记录，不修改 existing
func ReviewWord(existing *VocabularyWord, review VocabularyReview, now time.Time, policy ReviewPolicy) VocabularyWord {
	if existing == nil {
		w := VocabularyWord{
			Word:            review.Word,
			Translation:     review.Translation,
			LastReviewedAt:  now,
			RepetitionCount: 0,
		}
		if review.Mastered != nil {
			w.Mastered = *review.Mastered
		}
		w.NextReviewAt = now.AddDate(0, 0, policy.IntervalDays(0))
		return w
	}

	w := *existing
	w.RepetitionCount++
	w.LastReviewedAt = now
	if review.Translation != "" {
		w.Translation = review.Translation
	}
	if review.Mastered != nil {
		w.Mastered = *review.Mastered
	}
	w.NextReviewAt = now.AddDate(0, 0, policy.IntervalDays(w.RepetitionCount))
	return w
}

// IsDue 是否到了复习时间
func (w *VocabularyWord) IsDue(now time.Time) bool {
	return !w.NextReviewAt.After(now)
}
