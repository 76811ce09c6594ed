package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
	"chainedu_backend/pkg/logger"
)

type ProgressService struct {
	ProgressRepo       *repository.ProgressRepository
	ModuleRepo         *repository.ModuleRepository
	AchievementService *AchievementService
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	moduleRepo *repository.ModuleRepository,
	achievementService *AchievementService,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:       progressRepo,
		ModuleRepo:         moduleRepo,
		AchievementService: achievementService,
	}
}

func (s *ProgressService) ListByUser(userID uint) ([]model.UserProgress, error) {
	return s.ProgressRepo.ListByUser(userID)
}

func (s *ProgressService) GetModuleProgress(userID, moduleID uint) (*model.UserProgress, error) {
	progress, err := s.ProgressRepo.FindByUserAndModule(userID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProgressNotFound
		}
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) activeModule(moduleID uint) (*model.Module, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if !module.IsActive {
		return nil, util.ErrModuleNotFound
	}
	return module, nil
}

// StartModule 开始学习模块，进度不存在则创建
func (s *ProgressService) StartModule(userID, moduleID uint) (*model.UserProgress, error) {
	if _, err := s.activeModule(moduleID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	progress, err := s.ProgressRepo.FindByUserAndModule(userID, moduleID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		progress = &model.UserProgress{
			UserID:         userID,
			ModuleID:       moduleID,
			Status:         model.StatusInProgress,
			StartedAt:      &now,
			LastAccessedAt: &now,
		}
		if err := s.ProgressRepo.Create(progress); err != nil {
			return nil, err
		}
		return progress, nil
	}

	if progress.Status == model.StatusNotStarted {
		progress.Status = model.StatusInProgress
	}
	if progress.StartedAt == nil {
		progress.StartedAt = &now
	}
	progress.LastAccessedAt = &now
	if err := s.ProgressRepo.Update(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// CompleteModule 完成模块并触发成就检查。返回进度和本次新解锁的成就。
func (s *ProgressService) CompleteModule(ctx context.Context, userID, moduleID uint) (*model.UserProgress, []model.Achievement, error) {
	module, err := s.activeModule(moduleID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	progress, err := s.ProgressRepo.FindByUserAndModule(userID, moduleID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		progress = &model.UserProgress{
			UserID:               userID,
			ModuleID:             moduleID,
			Status:               model.StatusCompleted,
			CompletionPercentage: 100,
			StartedAt:            &now,
			CompletedAt:          &now,
			LastAccessedAt:       &now,
		}
		if err := s.ProgressRepo.Create(progress); err != nil {
			return nil, nil, err
		}
	} else {
		progress.Status = model.StatusCompleted
		progress.CompletionPercentage = 100
		if progress.StartedAt == nil {
			progress.StartedAt = &now
		}
		progress.CompletedAt = &now
		progress.LastAccessedAt = &now
		if err := s.ProgressRepo.Update(progress); err != nil {
			return nil, nil, err
		}
	}

	unlocked := s.fireCompletionEvents(ctx, userID, module.Track)
	return progress, unlocked, nil
}

// fireCompletionEvents 模块完成后的成就检查：module_completed 必发，
// 所在方向全部完成时追加 track_completed，最后检查连续打卡。
// 成就检查失败不阻断进度更新。
func (s *ProgressService) fireCompletionEvents(ctx context.Context, userID uint, track model.Track) []model.Achievement {
	var unlocked []model.Achievement

	events := []model.EventType{model.EventModuleCompleted}

	trackDone, err := s.AchievementService.trackCompleted(userID, track, false)
	if err != nil {
		logger.Log.Warn("track completion check failed",
			zap.Uint("user_id", userID),
			zap.String("track", string(track)),
			zap.Error(err),
		)
	} else if trackDone {
		events = append(events, model.EventTrackCompleted)
	}
	events = append(events, model.EventStreak)

	for _, event := range events {
		batch, err := s.AchievementService.CheckAchievements(ctx, userID, event)
		if err != nil {
			logger.Log.Warn("achievement check failed",
				zap.Uint("user_id", userID),
				zap.String("event", string(event)),
				zap.Error(err),
			)
			continue
		}
		unlocked = append(unlocked, batch...)
	}
	return unlocked
}

type ProgressUpdateInput struct {
	Status               *model.ProgressStatus `json:"status"`
	CompletionPercentage *float64              `json:"completionPercentage"`
	LastAccessedAt       *time.Time            `json:"lastAccessedAt"`
}

// UpdateProgress 部分更新进度；百分比到 100 时自动置为完成
func (s *ProgressService) UpdateProgress(ctx context.Context, userID, moduleID uint, input *ProgressUpdateInput) (*model.UserProgress, []model.Achievement, error) {
	progress, err := s.ProgressRepo.FindByUserAndModule(userID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrProgressNotFound
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	wasCompleted := progress.Status == model.StatusCompleted

	if input.Status != nil {
		progress.Status = *input.Status
		if *input.Status == model.StatusCompleted && progress.CompletedAt == nil {
			progress.CompletedAt = &now
			progress.CompletionPercentage = 100
		} else if *input.Status == model.StatusInProgress && progress.StartedAt == nil {
			progress.StartedAt = &now
		}
	}
	if input.CompletionPercentage != nil {
		progress.CompletionPercentage = *input.CompletionPercentage
		if progress.CompletionPercentage >= 100 {
			progress.Status = model.StatusCompleted
			if progress.CompletedAt == nil {
				progress.CompletedAt = &now
			}
		}
	}
	if input.LastAccessedAt != nil {
		progress.LastAccessedAt = input.LastAccessedAt
	} else {
		progress.LastAccessedAt = &now
	}

	if err := s.ProgressRepo.Update(progress); err != nil {
		return nil, nil, err
	}

	var unlocked []model.Achievement
	if !wasCompleted && progress.Status == model.StatusCompleted {
		if module, err := s.ModuleRepo.FindByID(moduleID); err == nil {
			unlocked = s.fireCompletionEvents(ctx, userID, module.Track)
		}
	}
	return progress, unlocked, nil
}
