package model

// DefaultPathDurationWeeks 未设置时长的学习路径默认 8 周
const DefaultPathDurationWeeks = 8

// LearningPath 内容目录中的学习路径，进度引擎只读取它
// swagger:model LearningPath
type LearningPath struct {
	UUIDBase
	LanguageID    string        `gorm:"size:36;not null;index" json:"languageId"`
	Level         LearningLevel `gorm:"size:20;not null" json:"level"`
	Title         string        `gorm:"size:255;not null" json:"title"`
	Description   string        `gorm:"type:text" json:"description"`
	DurationWeeks int           `gorm:"not null;default:8" json:"durationWeeks"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

func (p *LearningPath) Duration() int {
	if p.DurationWeeks <= 0 {
		return DefaultPathDurationWeeks
	}
	return p.DurationWeeks
}
