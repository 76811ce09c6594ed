package model

import (
	"time"

	"gorm.io/datatypes"
)

type AchievementCategory string

const (
	CategoryCompletion AchievementCategory = "completion"
	CategoryScore      AchievementCategory = "score"
	CategoryEngagement AchievementCategory = "engagement"
	CategoryHelper     AchievementCategory = "helper"
)

// Achievement 成就目录项，由种子数据维护，引擎只读
// swagger:model
type Achievement struct {
	BaseModel
	Name        string              `gorm:"size:100;not null" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	Icon        string              `gorm:"size:50" json:"icon"`
	Category    AchievementCategory `gorm:"size:50" json:"category"`

	Criteria         datatypes.JSON `json:"criteria"`         // 解锁条件，见 criteria.go
	ProgressTracking datatypes.JSON `json:"progressTracking"` // 多步成就的进度模板
	Points           int            `gorm:"default:0" json:"points"`

	// 不挂列默认值：gorm 会在 INSERT 时忽略带 default 标签的零值字段，
	// 显式创建的停用行会被悄悄翻成启用
	IsActive bool `json:"isActive"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户已解锁成就，(user_id, achievement_id) 联合主键，只插入不更新
// swagger:model
type UserAchievement struct {
	UserID        uint `gorm:"primaryKey" json:"userId"`
	AchievementID uint `gorm:"primaryKey" json:"achievementId"`

	Progress datatypes.JSON `json:"progress"`
	EarnedAt time.Time      `gorm:"not null" json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
