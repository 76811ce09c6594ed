package model

// AssistantSession AI 助教会话
// swagger:model
type AssistantSession struct {
	UUIDBase
	UserID uint   `gorm:"not null;index" json:"userId"`
	Title  string `gorm:"size:200" json:"title"`
}

func (AssistantSession) TableName() string {
	return "assistant_sessions"
}

// swagger:model
type AssistantMessage struct {
	BaseModel
	SessionID string `gorm:"type:varchar(36);not null;index" json:"sessionId"`
	Role      string `gorm:"size:20;not null" json:"role"` // 'user', 'assistant'
	Content   string `gorm:"type:longtext" json:"content"`
}

func (AssistantMessage) TableName() string {
	return "assistant_messages"
}
