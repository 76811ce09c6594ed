package model

import "gorm.io/datatypes"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	CodingTask     QuestionType = "coding_task"
)

// AutoGradable 选择/判断题可自动判分，简答和编程题走人工评分队列
func (t QuestionType) AutoGradable() bool {
	return t == MultipleChoice || t == TrueFalse
}

// swagger:model
type Assessment struct {
	BaseModel
	ModuleID uint `gorm:"not null;index" json:"moduleId"`

	QuestionText string       `gorm:"type:text;not null" json:"questionText"`
	QuestionType QuestionType `gorm:"size:20;not null;index" json:"questionType"`
	OrderIndex   int          `gorm:"not null" json:"orderIndex"`
	Points       int          `gorm:"default:10" json:"points"`

	Options       datatypes.JSON `json:"options"` // {"A": "...", "B": "...", ...}
	CorrectAnswer string         `gorm:"type:text;not null" json:"-"`
	Explanation   string         `gorm:"type:text" json:"explanation,omitempty"`

	IsActive bool `json:"isActive"`
}

func (Assessment) TableName() string {
	return "assessments"
}
