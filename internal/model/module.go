package model

import "gorm.io/datatypes"

// Track 课程方向
type Track string

const (
	TrackUser      Track = "user"
	TrackAnalyst   Track = "analyst"
	TrackDeveloper Track = "developer"
	TrackArchitect Track = "architect"
)

// AllTracks 全部课程方向，用于"全方向大师"类成就判定
func AllTracks() []Track {
	return []Track{TrackUser, TrackAnalyst, TrackDeveloper, TrackArchitect}
}

// swagger:model
type Module struct {
	BaseModel
	Title              string         `gorm:"size:255;not null;index" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Track              Track          `gorm:"size:20;not null;index" json:"track"`
	OrderIndex         int            `gorm:"not null;index" json:"orderIndex"`
	DurationHours      float64        `gorm:"not null" json:"durationHours"`
	Prerequisites      datatypes.JSON `json:"prerequisites"`      // 前置模块ID数组
	LearningObjectives datatypes.JSON `json:"learningObjectives"` // 学习目标数组
	IsActive           bool           `json:"isActive"`
	IsPublished        bool           `gorm:"default:false" json:"isPublished"`

	Lessons     []Lesson     `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Assessments []Assessment `gorm:"constraint:OnDelete:CASCADE" json:"assessments,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// swagger:model
type Lesson struct {
	BaseModel
	ModuleID         uint   `gorm:"not null;index" json:"moduleId"`
	Title            string `gorm:"size:255;not null" json:"title"`
	Content          string `gorm:"type:longtext" json:"content"` // Markdown
	OrderIndex       int    `gorm:"not null" json:"orderIndex"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	LessonType       string `gorm:"size:50;default:'reading'" json:"lessonType"` // 'reading', 'video', 'interactive', 'code'
	MediaURL         string `gorm:"size:500" json:"mediaUrl"`
	IsActive         bool   `json:"isActive"`
}

func (Lesson) TableName() string {
	return "lessons"
}
