package repository

import (
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
)

type ForumRepository struct {
	DB *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{DB: db}
}

func (r *ForumRepository) Create(post *model.ForumPost) error {
	return r.DB.Create(post).Error
}

func (r *ForumRepository) FindByID(id uint) (*model.ForumPost, error) {
	var post model.ForumPost
	err := r.DB.First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *ForumRepository) Update(post *model.ForumPost) error {
	return r.DB.Save(post).Error
}

func (r *ForumRepository) Delete(id uint) error {
	return r.DB.Delete(&model.ForumPost{}, id).Error
}

// ListThreads 主帖列表，置顶优先
func (r *ForumRepository) ListThreads(moduleID *uint, offset, limit int) ([]model.ForumPost, int64, error) {
	var posts []model.ForumPost
	var total int64

	query := r.DB.Model(&model.ForumPost{}).Where("parent_post_id IS NULL")
	if moduleID != nil {
		query = query.Where("module_id = ?", *moduleID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("is_pinned desc, created_at desc").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *ForumRepository) ListReplies(parentID uint) ([]model.ForumPost, error) {
	var replies []model.ForumPost
	err := r.DB.Where("parent_post_id = ?", parentID).
		Order("created_at asc").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *ForumRepository) FindVote(postID, userID uint) (*model.ForumVote, error) {
	var vote model.ForumVote
	err := r.DB.Where("post_id = ? AND user_id = ?", postID, userID).First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *ForumRepository) CreateVote(vote *model.ForumVote) error {
	return r.DB.Create(vote).Error
}

func (r *ForumRepository) DeleteVote(postID, userID uint) error {
	return r.DB.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.ForumVote{}).Error
}

func (r *ForumRepository) SetUpvotes(postID uint, count int64) error {
	return r.DB.Model(&model.ForumPost{}).Where("id = ?", postID).
		Update("upvotes", count).Error
}

func (r *ForumRepository) CountUpvotes(postID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ForumVote{}).
		Where("post_id = ? AND vote_type = ?", postID, "upvote").
		Count(&count).Error
	return count, err
}

// CountHelpfulPosts 互助贡献数：被标记解决的帖子，或至少收到一个赞的帖子
func (r *ForumRepository) CountHelpfulPosts(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ForumPost{}).
		Where("forum_posts.user_id = ?", userID).
		Where("forum_posts.is_solved = ? OR EXISTS (SELECT 1 FROM forum_votes WHERE forum_votes.post_id = forum_posts.id AND forum_votes.vote_type = ?)",
			true, "upvote").
		Count(&count).Error
	return count, err
}
