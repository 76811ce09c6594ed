package model

import "time"

type CohortRole string

const (
	CohortStudent    CohortRole = "student"
	CohortInstructor CohortRole = "instructor"
)

// Cohort 班级/期次。is_active 是 (start_date, end_date, cancelled_at, today)
// 的派生值，读取时重算；一旦 cancelled_at 非空则恒为 false。
// swagger:model
type Cohort struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	StartDate *time.Time `gorm:"type:date" json:"startDate"`
	EndDate   *time.Time `gorm:"type:date" json:"endDate"`

	IsActive    bool       `gorm:"index" json:"isActive"`
	CancelledAt *time.Time `json:"cancelledAt"`

	CreatedBy uint `json:"createdBy"`
}

func (Cohort) TableName() string {
	return "cohorts"
}

// CohortMember (cohort_id, user_id) 唯一；班级必须始终保留至少一名 instructor
// swagger:model
type CohortMember struct {
	BaseModel
	CohortID uint       `gorm:"not null;uniqueIndex:uq_cohort_user" json:"cohortId"`
	UserID   uint       `gorm:"not null;uniqueIndex:uq_cohort_user" json:"userId"`
	Role     CohortRole `gorm:"size:20;not null" json:"role"`
	JoinedAt time.Time  `gorm:"not null" json:"joinedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CohortMember) TableName() string {
	return "cohort_members"
}

// swagger:model
type CohortDeadline struct {
	BaseModel
	CohortID     uint       `gorm:"not null;index" json:"cohortId"`
	ModuleID     *uint      `json:"moduleId"`
	DeadlineDate time.Time  `gorm:"type:date;not null;index" json:"deadlineDate"`
	Description  string     `gorm:"type:text" json:"description"`
	IsMandatory  bool       `json:"isMandatory"`
	CreatedBy    uint       `json:"createdBy"`
}

func (CohortDeadline) TableName() string {
	return "cohort_deadlines"
}

// swagger:model
type Announcement struct {
	BaseModel
	CohortID *uint  `gorm:"index" json:"cohortId"` // 为空表示全站公告
	AuthorID uint   `gorm:"not null" json:"authorId"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	IsPinned bool   `gorm:"default:false;index" json:"isPinned"`
	Priority string `gorm:"size:20;default:'normal'" json:"priority"` // 'low', 'normal', 'high', 'urgent'
}

func (Announcement) TableName() string {
	return "announcements"
}
