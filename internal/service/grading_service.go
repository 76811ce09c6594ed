package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
	"chainedu_backend/pkg/logger"
)

type GradingService struct {
	AssessmentRepo      *repository.AssessmentRepository
	NotificationService *NotificationService
}

func NewGradingService(assessmentRepo *repository.AssessmentRepository, notificationService *NotificationService) *GradingService {
	return &GradingService{
		AssessmentRepo:      assessmentRepo,
		NotificationService: notificationService,
	}
}

// QueueItem 评分队列条目，附带题目上下文
type QueueItem struct {
	Attempt    model.QuizAttempt `json:"attempt"`
	Assessment *model.Assessment `json:"assessment,omitempty"`
}

// Queue 待人工评分队列：仅主观题，按提交时间先进先出
func (s *GradingService) Queue(page, pageSize int) ([]QueueItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	attempts, total, err := s.AssessmentRepo.PendingReview((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]QueueItem, 0, len(attempts))
	for _, attempt := range attempts {
		item := QueueItem{Attempt: attempt}
		if assessment, err := s.AssessmentRepo.FindByID(attempt.AssessmentID); err == nil {
			item.Assessment = assessment
		}
		items = append(items, item)
	}
	return items, total, nil
}

type GradeInput struct {
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
	Feedback      string `json:"feedback"`
	PartialCredit bool   `json:"partialCredit"`
}

// Grade 人工评分。客观题拒绝，已评分的拒绝，二者都是业务规则错误而非 404。
func (s *GradingService) Grade(attemptID, graderID uint, input *GradeInput) (*model.QuizAttempt, error) {
	attempt, err := s.AssessmentRepo.FindAttemptByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	assessment, err := s.AssessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	if assessment.QuestionType.AutoGradable() {
		return nil, util.Policyf("This assessment is auto-graded and does not require manual grading")
	}
	if attempt.ReviewStatus == model.ReviewGraded {
		return nil, util.Policyf("This attempt has already been graded")
	}

	now := time.Now().UTC()
	isCorrect := input.IsCorrect
	points := input.PointsEarned
	attempt.IsCorrect = &isCorrect
	attempt.PointsEarned = &points
	attempt.Feedback = input.Feedback
	attempt.PartialCredit = input.PartialCredit
	attempt.ReviewStatus = model.ReviewGraded
	attempt.GradedBy = &graderID
	attempt.GradedAt = &now
	if assessment.Points > 0 {
		attempt.ScorePercentage = float64(points) / float64(assessment.Points) * 100
	}

	if err := s.AssessmentRepo.UpdateAttempt(attempt); err != nil {
		return nil, err
	}

	s.NotificationService.Notify(
		attempt.UserID,
		"attempt_graded",
		"你的答案已评分",
		"讲师已完成你提交答案的评分，点击查看反馈。",
		"/progress",
	)
	logger.Log.Info("attempt graded",
		zap.Uint("attempt_id", attemptID),
		zap.Uint("grader_id", graderID),
	)
	return attempt, nil
}

// HistoryFilter 评分历史可选过滤条件
type HistoryFilter struct {
	UserID   *uint
	ModuleID *uint
}

// History 某评分者的评分历史，按评分时间倒序
func (s *GradingService) History(graderID uint, filter HistoryFilter, page, pageSize int) ([]model.QuizAttempt, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.AssessmentRepo.GradedBy(graderID, filter.UserID, filter.ModuleID, (page-1)*pageSize, pageSize)
}
