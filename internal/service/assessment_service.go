package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
	"chainedu_backend/pkg/logger"
)

type AssessmentService struct {
	AssessmentRepo     *repository.AssessmentRepository
	ModuleRepo         *repository.ModuleRepository
	AchievementService *AchievementService
}

func NewAssessmentService(
	assessmentRepo *repository.AssessmentRepository,
	moduleRepo *repository.ModuleRepository,
	achievementService *AchievementService,
) *AssessmentService {
	return &AssessmentService{
		AssessmentRepo:     assessmentRepo,
		ModuleRepo:         moduleRepo,
		AchievementService: achievementService,
	}
}

// AssessmentView 学生视角的题目，不暴露正确答案
type AssessmentView struct {
	ID           uint               `json:"id"`
	ModuleID     uint               `json:"moduleId"`
	QuestionText string             `json:"questionText"`
	QuestionType model.QuestionType `json:"questionType"`
	OrderIndex   int                `json:"orderIndex"`
	Points       int                `json:"points"`
	Options      datatypes.JSON     `json:"options,omitempty"`
}

func (s *AssessmentService) ListForModule(moduleID uint) ([]AssessmentView, error) {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	assessments, err := s.AssessmentRepo.FindActiveByModule(moduleID)
	if err != nil {
		return nil, err
	}

	views := make([]AssessmentView, 0, len(assessments))
	for _, a := range assessments {
		views = append(views, AssessmentView{
			ID:           a.ID,
			ModuleID:     a.ModuleID,
			QuestionText: a.QuestionText,
			QuestionType: a.QuestionType,
			OrderIndex:   a.OrderIndex,
			Points:       a.Points,
			Options:      a.Options,
		})
	}
	return views, nil
}

type SubmitInput struct {
	UserAnswer       string `json:"userAnswer" binding:"required"`
	TimeSpentSeconds *int   `json:"timeSpentSeconds"`
}

// SubmitResult 提交结果。客观题立即给出对错并公开正确答案与解析；
// 主观题进入人工评分队列，正确答案不公开。
type SubmitResult struct {
	Attempt       *model.QuizAttempt  `json:"attempt"`
	CorrectAnswer string              `json:"correctAnswer,omitempty"`
	Explanation   string              `json:"explanation,omitempty"`
	Unlocked      []model.Achievement `json:"unlocked,omitempty"`
}

// Submit 提交答案。客观题自动评分，主观题置为 needs_review，
// 之后触发 assessment_submitted 成就检查。
func (s *AssessmentService) Submit(ctx context.Context, userID, assessmentID uint, input *SubmitInput) (*SubmitResult, error) {
	assessment, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}
	if !assessment.IsActive {
		return nil, util.ErrAssessmentNotFound
	}

	attempt := &model.QuizAttempt{
		UserID:           userID,
		AssessmentID:     assessmentID,
		UserAnswer:       input.UserAnswer,
		AttemptedAt:      time.Now().UTC(),
		TimeSpentSeconds: input.TimeSpentSeconds,
	}

	result := &SubmitResult{Attempt: attempt}

	if assessment.QuestionType.AutoGradable() {
		correct := strings.EqualFold(
			strings.TrimSpace(input.UserAnswer),
			strings.TrimSpace(assessment.CorrectAnswer),
		)
		points := 0
		score := 0.0
		if correct {
			points = assessment.Points
			score = 100
		}
		attempt.IsCorrect = &correct
		attempt.PointsEarned = &points
		attempt.ScorePercentage = score
		attempt.ReviewStatus = model.ReviewGraded
		result.CorrectAnswer = assessment.CorrectAnswer
		result.Explanation = assessment.Explanation
	} else {
		attempt.ReviewStatus = model.ReviewNeedsReview
	}

	if err := s.AssessmentRepo.CreateAttempt(attempt); err != nil {
		return nil, err
	}

	unlocked, err := s.AchievementService.CheckAchievements(ctx, userID, model.EventAssessmentSubmitted)
	if err != nil {
		logger.Log.Warn("achievement check failed after submission",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
	result.Unlocked = unlocked
	return result, nil
}

func (s *AssessmentService) ListAttempts(userID uint, moduleID *uint) ([]model.QuizAttempt, error) {
	return s.AssessmentRepo.ListAttemptsByUser(userID, moduleID)
}

type AssessmentInput struct {
	QuestionText  string             `json:"questionText" binding:"required"`
	QuestionType  model.QuestionType `json:"questionType" binding:"required"`
	OrderIndex    int                `json:"orderIndex"`
	Points        int                `json:"points"`
	Options       datatypes.JSON     `json:"options"`
	CorrectAnswer string             `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
}

// CreateAssessment 新建题目（讲师/管理员）
func (s *AssessmentService) CreateAssessment(moduleID uint, input *AssessmentInput) (*model.Assessment, error) {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	assessment := &model.Assessment{
		ModuleID:      moduleID,
		QuestionText:  input.QuestionText,
		QuestionType:  input.QuestionType,
		OrderIndex:    input.OrderIndex,
		Points:        input.Points,
		Options:       input.Options,
		CorrectAnswer: input.CorrectAnswer,
		Explanation:   input.Explanation,
		IsActive:      true,
	}
	if assessment.Points == 0 {
		assessment.Points = 10
	}
	if err := s.AssessmentRepo.Create(assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *AssessmentService) UpdateAssessment(id uint, input *AssessmentInput) (*model.Assessment, error) {
	assessment, err := s.AssessmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	assessment.QuestionText = input.QuestionText
	assessment.QuestionType = input.QuestionType
	assessment.OrderIndex = input.OrderIndex
	if input.Points > 0 {
		assessment.Points = input.Points
	}
	assessment.Options = input.Options
	if input.CorrectAnswer != "" {
		assessment.CorrectAnswer = input.CorrectAnswer
	}
	assessment.Explanation = input.Explanation

	if err := s.AssessmentRepo.Update(assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *AssessmentService) DeleteAssessment(id uint) error {
	if _, err := s.AssessmentRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAssessmentNotFound
		}
		return err
	}
	return s.AssessmentRepo.Delete(id)
}
