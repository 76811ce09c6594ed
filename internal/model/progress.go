package model

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

type ReviewStatus string

const (
	ReviewPending     ReviewStatus = "pending"
	ReviewNeedsReview ReviewStatus = "needs_review"
	ReviewGraded      ReviewStatus = "graded"
)

// UserProgress 用户模块学习进度，(user_id, module_id) 唯一
// swagger:model
type UserProgress struct {
	BaseModel
	UserID   uint           `gorm:"not null;uniqueIndex:uq_user_module" json:"userId"`
	ModuleID uint           `gorm:"not null;uniqueIndex:uq_user_module" json:"moduleId"`
	Status   ProgressStatus `gorm:"size:20;default:'not_started';index" json:"status"`

	CompletionPercentage float64 `gorm:"default:0" json:"completionPercentage"` // 0-100

	StartedAt      *time.Time `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
	LastAccessedAt *time.Time `json:"lastAccessedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// QuizAttempt 测验作答记录；review_status=graded 后评分字段不可再改
// swagger:model
type QuizAttempt struct {
	BaseModel
	UserID       uint `gorm:"not null;index" json:"userId"`
	AssessmentID uint `gorm:"not null;index" json:"assessmentId"`

	UserAnswer      string       `gorm:"type:text" json:"userAnswer"`
	IsCorrect       *bool        `json:"isCorrect"`
	PointsEarned    *int         `json:"pointsEarned"`
	ScorePercentage float64      `gorm:"default:0" json:"scorePercentage"`
	ReviewStatus    ReviewStatus `gorm:"size:20;default:'pending';index" json:"reviewStatus"`

	GradedBy      *uint      `gorm:"index" json:"gradedBy"`
	Feedback      string     `gorm:"type:text" json:"feedback"`
	PartialCredit bool       `gorm:"default:false" json:"partialCredit"`
	GradedAt      *time.Time `json:"gradedAt"`

	AttemptedAt      time.Time `gorm:"index" json:"attemptedAt"`
	TimeSpentSeconds *int      `json:"timeSpentSeconds"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
