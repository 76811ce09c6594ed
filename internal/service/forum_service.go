package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
	"chainedu_backend/pkg/logger"
)

type ForumService struct {
	ForumRepo           *repository.ForumRepository
	ModuleRepo          *repository.ModuleRepository
	AchievementService  *AchievementService
	NotificationService *NotificationService
}

func NewForumService(
	forumRepo *repository.ForumRepository,
	moduleRepo *repository.ModuleRepository,
	achievementService *AchievementService,
	notificationService *NotificationService,
) *ForumService {
	return &ForumService{
		ForumRepo:           forumRepo,
		ModuleRepo:          moduleRepo,
		AchievementService:  achievementService,
		NotificationService: notificationService,
	}
}

type ThreadInput struct {
	ModuleID *uint  `json:"moduleId"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// CreateThread 发主帖并触发 forum_post 成就检查
func (s *ForumService) CreateThread(ctx context.Context, userID uint, input *ThreadInput) (*model.ForumPost, error) {
	if input.ModuleID != nil {
		if _, err := s.ModuleRepo.FindByID(*input.ModuleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrModuleNotFound
			}
			return nil, err
		}
	}

	post := &model.ForumPost{
		ModuleID: input.ModuleID,
		UserID:   userID,
		Title:    input.Title,
		Content:  input.Content,
	}
	if err := s.ForumRepo.Create(post); err != nil {
		return nil, err
	}

	s.checkForumAchievements(ctx, userID)
	return post, nil
}

type ReplyInput struct {
	Content string `json:"content" binding:"required"`
}

// Reply 回帖；通知主帖作者，并触发 forum_post 成就检查
func (s *ForumService) Reply(ctx context.Context, userID, parentID uint, input *ReplyInput) (*model.ForumPost, error) {
	parent, err := s.ForumRepo.FindByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}
	if parent.ParentPostID != nil {
		return nil, util.Policyf("Cannot reply to a reply, reply to the thread instead")
	}

	reply := &model.ForumPost{
		ModuleID:     parent.ModuleID,
		UserID:       userID,
		ParentPostID: &parentID,
		Content:      input.Content,
	}
	if err := s.ForumRepo.Create(reply); err != nil {
		return nil, err
	}

	if parent.UserID != userID {
		s.NotificationService.Notify(
			parent.UserID,
			"forum_reply",
			"你的帖子有新回复",
			"有人回复了你的帖子「"+parent.Title+"」",
			"/forum",
		)
	}

	s.checkForumAchievements(ctx, userID)
	return reply, nil
}

func (s *ForumService) checkForumAchievements(ctx context.Context, userID uint) {
	if _, err := s.AchievementService.CheckAchievements(ctx, userID, model.EventForumPost); err != nil {
		logger.Log.Warn("achievement check failed after forum post",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *ForumService) GetThread(id uint) (*model.ForumPost, []model.ForumPost, error) {
	post, err := s.ForumRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrPostNotFound
		}
		return nil, nil, err
	}
	replies, err := s.ForumRepo.ListReplies(id)
	if err != nil {
		return nil, nil, err
	}
	return post, replies, nil
}

func (s *ForumService) ListThreads(moduleID *uint, page, pageSize int) ([]model.ForumPost, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.ForumRepo.ListThreads(moduleID, (page-1)*pageSize, pageSize)
}

// Vote 投票，一人一票；重复投同类型票视为撤销
func (s *ForumService) Vote(postID, userID uint, voteType string) (*model.ForumPost, error) {
	if voteType != "upvote" && voteType != "downvote" {
		return nil, util.Policyf("vote_type must be 'upvote' or 'downvote'")
	}

	post, err := s.ForumRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}

	existing, err := s.ForumRepo.FindVote(postID, userID)
	switch {
	case err == nil:
		if err := s.ForumRepo.DeleteVote(postID, userID); err != nil {
			return nil, err
		}
		if existing.VoteType != voteType {
			if err := s.ForumRepo.CreateVote(&model.ForumVote{
				PostID:   postID,
				UserID:   userID,
				VoteType: voteType,
			}); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.ForumRepo.CreateVote(&model.ForumVote{
			PostID:   postID,
			UserID:   userID,
			VoteType: voteType,
		}); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	count, err := s.ForumRepo.CountUpvotes(postID)
	if err != nil {
		return nil, err
	}
	if err := s.ForumRepo.SetUpvotes(postID, count); err != nil {
		return nil, err
	}
	post.Upvotes = int(count)
	return post, nil
}

// MarkSolved 标记解决：仅主帖作者、instructor 或 admin
func (s *ForumService) MarkSolved(ctx context.Context, postID, userID uint, role model.UserRole) (*model.ForumPost, error) {
	post, err := s.ForumRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}
	if post.ParentPostID != nil {
		return nil, util.Policyf("Only threads can be marked as solved")
	}
	if post.UserID != userID && role != model.Instructor && role != model.Admin {
		return nil, util.ErrPermissionDenied
	}

	post.IsSolved = true
	if err := s.ForumRepo.Update(post); err != nil {
		return nil, err
	}

	// 被解决可能使作者达到互助成就
	s.checkForumAchievements(ctx, post.UserID)
	return post, nil
}

// Pin 置顶（讲师/管理员）
func (s *ForumService) Pin(postID uint, pinned bool) (*model.ForumPost, error) {
	post, err := s.ForumRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}
	post.IsPinned = pinned
	if err := s.ForumRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ForumService) Delete(postID, userID uint, role model.UserRole) error {
	post, err := s.ForumRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPostNotFound
		}
		return err
	}
	if post.UserID != userID && role != model.Instructor && role != model.Admin {
		return util.ErrPermissionDenied
	}
	return s.ForumRepo.Delete(postID)
}
