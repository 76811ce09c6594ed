package model

// swagger:model
type Notification struct {
	BaseModel
	UserID  uint   `gorm:"not null;index" json:"userId"`
	Type    string `gorm:"size:50;not null" json:"type"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	Link    string `gorm:"size:255" json:"link"`
	IsRead  bool   `gorm:"default:false;index" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
