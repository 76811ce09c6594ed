package service

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
)

type ModuleService struct {
	ModuleRepo   *repository.ModuleRepository
	ProgressRepo *repository.ProgressRepository
}

func NewModuleService(moduleRepo *repository.ModuleRepository, progressRepo *repository.ProgressRepository) *ModuleService {
	return &ModuleService{ModuleRepo: moduleRepo, ProgressRepo: progressRepo}
}

// ModuleWithProgress 模块列表项，附带当前用户的完成状态
type ModuleWithProgress struct {
	model.Module
	ProgressStatus       model.ProgressStatus `json:"progressStatus"`
	CompletionPercentage float64              `json:"completionPercentage"`
}

// List 课程目录；userID 非 0 时合并个人进度
func (s *ModuleService) List(track model.Track, userID uint) ([]ModuleWithProgress, error) {
	modules, err := s.ModuleRepo.FindActive(track)
	if err != nil {
		return nil, err
	}

	var progressByModule map[uint]*model.UserProgress
	if userID != 0 {
		list, err := s.ProgressRepo.ListByUser(userID)
		if err != nil {
			return nil, err
		}
		progressByModule = make(map[uint]*model.UserProgress, len(list))
		for i := range list {
			progressByModule[list[i].ModuleID] = &list[i]
		}
	}

	result := make([]ModuleWithProgress, 0, len(modules))
	for _, m := range modules {
		item := ModuleWithProgress{Module: m, ProgressStatus: model.StatusNotStarted}
		if p, ok := progressByModule[m.ID]; ok {
			item.ProgressStatus = p.Status
			item.CompletionPercentage = p.CompletionPercentage
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *ModuleService) Get(id uint) (*model.Module, error) {
	module, err := s.ModuleRepo.FindByIDWithLessons(id)
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

func (s *ModuleService) GetLesson(id uint) (*model.Lesson, error) {
	lesson, err := s.ModuleRepo.FindLessonByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.IsActive {
		return nil, util.ErrLessonNotFound
	}
	return lesson, nil
}

type ModuleInput struct {
	Title              string         `json:"title" binding:"required"`
	Description        string         `json:"description"`
	Track              model.Track    `json:"track" binding:"required"`
	OrderIndex         int            `json:"orderIndex"`
	DurationHours      float64        `json:"durationHours"`
	Prerequisites      datatypes.JSON `json:"prerequisites"`
	LearningObjectives datatypes.JSON `json:"learningObjectives"`
	IsPublished        bool           `json:"isPublished"`
}

func (s *ModuleService) Create(input *ModuleInput) (*model.Module, error) {
	module := &model.Module{
		Title:              input.Title,
		Description:        input.Description,
		Track:              input.Track,
		OrderIndex:         input.OrderIndex,
		DurationHours:      input.DurationHours,
		Prerequisites:      input.Prerequisites,
		LearningObjectives: input.LearningObjectives,
		IsActive:           true,
		IsPublished:        input.IsPublished,
	}
	if err := s.ModuleRepo.Create(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *ModuleService) Update(id uint, input *ModuleInput) (*model.Module, error) {
	module, err := s.ModuleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	module.Title = input.Title
	module.Description = input.Description
	module.Track = input.Track
	module.OrderIndex = input.OrderIndex
	module.DurationHours = input.DurationHours
	module.Prerequisites = input.Prerequisites
	module.LearningObjectives = input.LearningObjectives
	module.IsPublished = input.IsPublished

	if err := s.ModuleRepo.Update(module); err != nil {
		return nil, err
	}
	return module, nil
}

// Delete 下线模块（软删除）
func (s *ModuleService) Delete(id uint) error {
	if _, err := s.ModuleRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}
	return s.ModuleRepo.Delete(id)
}

type LessonInput struct {
	Title            string `json:"title" binding:"required"`
	Content          string `json:"content"`
	OrderIndex       int    `json:"orderIndex"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	LessonType       string `json:"lessonType"`
	MediaURL         string `json:"mediaUrl"`
}

func (s *ModuleService) CreateLesson(moduleID uint, input *LessonInput) (*model.Lesson, error) {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	lesson := &model.Lesson{
		ModuleID:         moduleID,
		Title:            input.Title,
		Content:          input.Content,
		OrderIndex:       input.OrderIndex,
		EstimatedMinutes: input.EstimatedMinutes,
		LessonType:       input.LessonType,
		MediaURL:         input.MediaURL,
		IsActive:         true,
	}
	if lesson.LessonType == "" {
		lesson.LessonType = "reading"
	}
	if err := s.ModuleRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *ModuleService) UpdateLesson(id uint, input *LessonInput) (*model.Lesson, error) {
	lesson, err := s.ModuleRepo.FindLessonByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	lesson.Title = input.Title
	lesson.Content = input.Content
	lesson.OrderIndex = input.OrderIndex
	lesson.EstimatedMinutes = input.EstimatedMinutes
	if input.LessonType != "" {
		lesson.LessonType = input.LessonType
	}
	lesson.MediaURL = input.MediaURL

	if err := s.ModuleRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *ModuleService) DeleteLesson(id uint) error {
	if _, err := s.ModuleRepo.FindLessonByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrLessonNotFound
		}
		return err
	}
	return s.ModuleRepo.DeleteLesson(id)
}
