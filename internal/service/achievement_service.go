package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
	"chainedu_backend/pkg/logger"
)

// streakLookbackRows 判定连续打卡时回看的进度记录条数上限
const streakLookbackRows = 365

type AchievementService struct {
	DB                  *gorm.DB
	AchievementRepo     *repository.AchievementRepository
	ProgressRepo        *repository.ProgressRepository
	AssessmentRepo      *repository.AssessmentRepository
	ModuleRepo          *repository.ModuleRepository
	ForumRepo           *repository.ForumRepository
	NotificationService *NotificationService
}

func NewAchievementService(
	db *gorm.DB,
	achievementRepo *repository.AchievementRepository,
	progressRepo *repository.ProgressRepository,
	assessmentRepo *repository.AssessmentRepository,
	moduleRepo *repository.ModuleRepository,
	forumRepo *repository.ForumRepository,
	notificationService *NotificationService,
) *AchievementService {
	return &AchievementService{
		DB:                  db,
		AchievementRepo:     achievementRepo,
		ProgressRepo:        progressRepo,
		AssessmentRepo:      assessmentRepo,
		ModuleRepo:          moduleRepo,
		ForumRepo:           forumRepo,
		NotificationService: notificationService,
	}
}

// CheckAchievements 按领域事件检查并解锁成就，返回本次新解锁的成就。
// 单个成就的条件损坏或求值失败只影响它自己，其余成就照常检查。
func (s *AchievementService) CheckAchievements(ctx context.Context, userID uint, event model.EventType) ([]model.Achievement, error) {
	catalog, err := s.AchievementRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	earned, err := s.AchievementRepo.EarnedIDs(userID)
	if err != nil {
		return nil, err
	}

	var met []model.Achievement
	for _, achievement := range catalog {
		if earned[achievement.ID] {
			continue
		}

		criteria, err := model.ParseCriteria(achievement.Criteria)
		if err != nil {
			if !errors.Is(err, model.ErrEmptyCriteria) {
				logger.Log.Warn("achievement has invalid criteria JSON",
					zap.Uint("achievement_id", achievement.ID),
					zap.Error(err),
				)
			}
			continue
		}
		if criteria.Empty() || !criteria.RelevantTo(event) {
			continue
		}

		ok, err := s.evaluate(userID, criteria)
		if err != nil {
			logger.Log.Warn("achievement evaluation failed",
				zap.Uint("achievement_id", achievement.ID),
				zap.Uint("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			met = append(met, achievement)
		}
	}

	if len(met) == 0 {
		return nil, nil
	}

	// 批量写入一个事务；并发重复解锁依赖联合主键去重
	var unlocked []model.Achievement
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, achievement := range met {
			ua := model.UserAchievement{
				UserID:        userID,
				AchievementID: achievement.ID,
				EarnedAt:      time.Now().UTC(),
			}
			if err := tx.Create(&ua).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return err
			}
			unlocked = append(unlocked, achievement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, achievement := range unlocked {
		s.NotificationService.Notify(
			userID,
			"achievement_unlocked",
			"Achievement Unlocked! 🏆",
			fmt.Sprintf("You've earned the '%s' achievement!", achievement.Name),
			"/achievements",
		)
		logger.Log.Info("achievement unlocked",
			zap.Uint("user_id", userID),
			zap.String("achievement", achievement.Name),
		)
	}

	return unlocked, nil
}

func (s *AchievementService) evaluate(userID uint, c *model.Criteria) (bool, error) {
	if c.ModuleCompletion != nil {
		return s.evalModuleCompletion(userID, c.ModuleCompletion)
	}
	if c.PerfectScore != nil {
		return s.evalPerfectScore(userID, c.PerfectScore)
	}
	if c.ScoreThreshold != nil {
		return s.evalScoreThreshold(userID, c.ScoreThreshold)
	}
	if c.ForumHelp != nil {
		return s.evalForumHelp(userID, c.ForumHelp)
	}
	if c.TrackCompletion != nil {
		return s.evalTrackCompletion(userID, c.TrackCompletion)
	}
	if c.Streak != nil {
		return s.evalStreak(userID, c.Streak)
	}
	return false, nil
}

func (s *AchievementService) evalModuleCompletion(userID uint, c *model.ModuleCompletionCriteria) (bool, error) {
	if c.ModuleID != nil {
		return s.ProgressRepo.HasCompleted(userID, *c.ModuleID)
	}
	if c.AnyModule {
		count, err := s.ProgressRepo.CountCompleted(userID)
		return count > 0, err
	}
	return false, nil
}

func (s *AchievementService) evalPerfectScore(userID uint, c *model.PerfectScoreCriteria) (bool, error) {
	if c.AnyAssessment {
		return s.AssessmentRepo.HasPerfectScore(userID, nil)
	}
	if c.ModuleID != nil {
		return s.AssessmentRepo.HasPerfectScore(userID, c.ModuleID)
	}
	return false, nil
}

func (s *AchievementService) evalScoreThreshold(userID uint, c *model.ScoreThresholdCriteria) (bool, error) {
	threshold := c.MinScore
	if threshold == 0 {
		threshold = 70
	}
	max, err := s.AssessmentRepo.MaxScore(userID)
	if err != nil {
		return false, err
	}
	return max != nil && *max >= threshold, nil
}

func (s *AchievementService) evalForumHelp(userID uint, c *model.ForumHelpCriteria) (bool, error) {
	target := c.Posts
	if target == 0 {
		target = 10
	}
	count, err := s.ForumRepo.CountHelpfulPosts(userID)
	if err != nil {
		return false, err
	}
	return count >= int64(target), nil
}

func (s *AchievementService) evalTrackCompletion(userID uint, c *model.TrackCompletionCriteria) (bool, error) {
	if c.TrackName != nil {
		return s.trackCompleted(userID, *c.TrackName, false)
	}
	if c.AllTracks {
		for _, track := range model.AllTracks() {
			done, err := s.trackCompleted(userID, track, true)
			if err != nil {
				return false, err
			}
			if !done {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

// trackCompleted 方向下全部启用模块是否都已完成。
// skipEmpty 控制空方向的语义：单方向成就视为不可满足，全方向证书则跳过。
func (s *AchievementService) trackCompleted(userID uint, track model.Track, skipEmpty bool) (bool, error) {
	ids, err := s.ModuleRepo.ActiveIDsByTrack(track)
	if err != nil {
		return false, err
	}
	if len(ids) == 0 {
		return skipEmpty, nil
	}
	completed, err := s.ProgressRepo.CountCompletedIn(userID, ids)
	if err != nil {
		return false, err
	}
	return completed == int64(len(ids)), nil
}

func (s *AchievementService) evalStreak(userID uint, c *model.StreakCriteria) (bool, error) {
	target := c.Days
	if target == 0 {
		target = 7
	}

	recent, err := s.ProgressRepo.RecentActivityTimes(userID, streakLookbackRows)
	if err != nil {
		return false, err
	}

	// 按 UTC 自然日去重后，从今天往前逐日核对
	activeDays := make(map[string]bool, len(recent))
	for _, p := range recent {
		activeDays[p.UpdatedAt.UTC().Format("2006-01-02")] = true
	}

	check := time.Now().UTC()
	for i := 0; i < target; i++ {
		if !activeDays[check.Format("2006-01-02")] {
			return false, nil
		}
		check = check.AddDate(0, 0, -1)
	}
	return true, nil
}

type AchievementInput struct {
	Name        string                    `json:"name" binding:"required"`
	Description string                    `json:"description"`
	Icon        string                    `json:"icon"`
	Category    model.AchievementCategory `json:"category" binding:"required"`
	Criteria    datatypes.JSON            `json:"criteria" binding:"required"`
	Points      int                       `json:"points"`
	IsActive    *bool                     `json:"isActive"`
}

// CreateAchievement 新增成就（管理员）。条件 JSON 必须可解析且至少含一个变体。
func (s *AchievementService) CreateAchievement(ctx context.Context, input *AchievementInput) (*model.Achievement, error) {
	criteria, err := model.ParseCriteria(input.Criteria)
	if err != nil || criteria.Empty() {
		return nil, util.Policyf("criteria must contain at least one recognized condition")
	}

	achievement := &model.Achievement{
		Name:        input.Name,
		Description: input.Description,
		Icon:        input.Icon,
		Category:    input.Category,
		Criteria:    input.Criteria,
		Points:      input.Points,
		IsActive:    true,
	}
	if input.IsActive != nil {
		achievement.IsActive = *input.IsActive
	}
	if err := s.AchievementRepo.Create(achievement); err != nil {
		return nil, err
	}
	s.AchievementRepo.InvalidateCatalog(ctx)
	return achievement, nil
}

func (s *AchievementService) UpdateAchievement(ctx context.Context, id uint, input *AchievementInput) (*model.Achievement, error) {
	achievement, err := s.AchievementRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.Policyf("achievement %d not found", id)
		}
		return nil, err
	}

	criteria, err := model.ParseCriteria(input.Criteria)
	if err != nil || criteria.Empty() {
		return nil, util.Policyf("criteria must contain at least one recognized condition")
	}

	achievement.Name = input.Name
	achievement.Description = input.Description
	achievement.Icon = input.Icon
	achievement.Category = input.Category
	achievement.Criteria = input.Criteria
	achievement.Points = input.Points
	if input.IsActive != nil {
		achievement.IsActive = *input.IsActive
	}

	if err := s.AchievementRepo.Update(achievement); err != nil {
		return nil, err
	}
	s.AchievementRepo.InvalidateCatalog(ctx)
	return achievement, nil
}

// AchievementView 成就目录视图，带用户获得状态
type AchievementView struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Category    string      `json:"category"`
	Points      int         `json:"points"`
	Earned      bool        `json:"earned"`
	EarnedAt    *time.Time  `json:"earnedAt,omitempty"`
	Progress    interface{} `json:"progress,omitempty"`
}

// ListForUser 完整目录 + 获得标记
func (s *AchievementService) ListForUser(ctx context.Context, userID uint) ([]AchievementView, error) {
	catalog, err := s.AchievementRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.AchievementRepo.ListEarned(userID)
	if err != nil {
		return nil, err
	}
	earnedByID := make(map[uint]*model.UserAchievement, len(earned))
	for i := range earned {
		earnedByID[earned[i].AchievementID] = &earned[i]
	}

	views := make([]AchievementView, 0, len(catalog))
	for _, achievement := range catalog {
		view := AchievementView{
			ID:          achievement.ID,
			Name:        achievement.Name,
			Description: achievement.Description,
			Icon:        achievement.Icon,
			Category:    string(achievement.Category),
			Points:      achievement.Points,
		}
		if ua, ok := earnedByID[achievement.ID]; ok {
			view.Earned = true
			view.EarnedAt = &ua.EarnedAt
			if len(ua.Progress) > 0 {
				view.Progress = ua.Progress
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// AchievementStats 成就统计
type AchievementStats struct {
	TotalAchievements    int64            `json:"totalAchievements"`
	EarnedCount          int64            `json:"earnedCount"`
	CompletionPercentage float64          `json:"completionPercentage"`
	TotalPoints          int64            `json:"totalPoints"`
	ByCategory           map[string]int64 `json:"byCategory"`
}

func (s *AchievementService) Stats(ctx context.Context, userID uint) (*AchievementStats, error) {
	var total int64
	if err := s.DB.Model(&model.Achievement{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, err
	}

	var earnedCount int64
	if err := s.DB.Model(&model.UserAchievement{}).Where("user_id = ?", userID).Count(&earnedCount).Error; err != nil {
		return nil, err
	}

	var points *int64
	err := s.DB.Model(&model.Achievement{}).
		Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Select("SUM(achievements.points)").
		Scan(&points).Error
	if err != nil {
		return nil, err
	}

	type categoryRow struct {
		Category string
		Count    int64
	}
	var rows []categoryRow
	err = s.DB.Model(&model.Achievement{}).
		Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Select("achievements.category AS category, COUNT(*) AS count").
		Group("achievements.category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string]int64, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = row.Count
	}

	stats := &AchievementStats{
		TotalAchievements: total,
		EarnedCount:       earnedCount,
		ByCategory:        byCategory,
	}
	if points != nil {
		stats.TotalPoints = *points
	}
	if total > 0 {
		stats.CompletionPercentage = float64(int(float64(earnedCount)/float64(total)*1000+0.5)) / 10
	}
	return stats, nil
}
