package model

import (
	"time"
)

type LearningLevel string

const (
	LevelBeginner     LearningLevel = "beginner"
	LevelIntermediate LearningLevel = "intermediate"
	LevelAdvanced     LearningLevel = "advanced"
)

// User 学习者档案。身份认证在外部完成，这里只保存进度相关的引用数据
// swagger:model User
type User struct {
	BaseModel
	Name              string         `gorm:"size:100;not null" json:"name"`
	Email             string         `gorm:"size:100;unique;not null" json:"email"`
	NativeLanguage    string         `gorm:"size:36" json:"nativeLanguage"`
	LearningLanguages []UserLanguage `gorm:"foreignKey:UserID" json:"learningLanguages"`
}

func (User) TableName() string {
	return "users"
}

// UserLanguage 学习者的语言组合条目，每个 (user, language) 只有一条
// swagger:model UserLanguage
type UserLanguage struct {
	ID         uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint          `gorm:"not null;uniqueIndex:idx_user_language" json:"userId"`
	LanguageID string        `gorm:"size:36;not null;uniqueIndex:idx_user_language" json:"languageId"`
	Level      LearningLevel `gorm:"size:20;not null;default:'beginner'" json:"level"`
	StartedAt  time.Time     `json:"startedAt"`
}

func (UserLanguage) TableName() string {
	return "user_languages"
}
