package model

import "time"

// ForumPost 模块讨论区帖子；parent_post_id 为空表示主帖
// swagger:model
type ForumPost struct {
	BaseModel
	ModuleID     *uint `gorm:"index" json:"moduleId"`
	UserID       uint  `gorm:"not null;index" json:"userId"`
	ParentPostID *uint `gorm:"index" json:"parentPostId"`

	Title    string `gorm:"size:200" json:"title"` // 回帖为空
	Content  string `gorm:"type:text;not null" json:"content"`
	IsPinned bool   `gorm:"default:false;index" json:"isPinned"`
	IsSolved bool   `gorm:"default:false" json:"isSolved"`
	Upvotes  int    `gorm:"default:0" json:"upvotes"`
}

func (ForumPost) TableName() string {
	return "forum_posts"
}

// ForumVote (post_id, user_id) 联合主键，一人一票
// swagger:model
type ForumVote struct {
	PostID    uint      `gorm:"primaryKey" json:"postId"`
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	VoteType  string    `gorm:"size:10;not null" json:"voteType"` // 'upvote', 'downvote'
	CreatedAt time.Time `json:"createdAt"`
}

func (ForumVote) TableName() string {
	return "forum_votes"
}
