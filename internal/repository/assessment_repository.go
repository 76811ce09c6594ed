package repository

import (
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(assessment *model.Assessment) error {
	return r.DB.Create(assessment).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) FindActiveByModule(moduleID uint) ([]model.Assessment, error) {
	var list []model.Assessment
	err := r.DB.Where("module_id = ? AND is_active = ?", moduleID, true).
		Order("order_index asc").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AssessmentRepository) Update(assessment *model.Assessment) error {
	return r.DB.Save(assessment).Error
}

func (r *AssessmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assessment{}, id).Error
}

func (r *AssessmentRepository) CreateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AssessmentRepository) FindAttemptByID(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AssessmentRepository) UpdateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AssessmentRepository) ListAttemptsByUser(userID uint, moduleID *uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	query := r.DB.Where("quiz_attempts.user_id = ?", userID)
	if moduleID != nil {
		query = query.Joins("JOIN assessments ON assessments.id = quiz_attempts.assessment_id").
			Where("assessments.module_id = ?", *moduleID)
	}
	err := query.Order("quiz_attempts.attempted_at desc").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// HasPerfectScore 是否存在 100% 的测验记录；moduleID 非空时限定模块
func (r *AssessmentRepository) HasPerfectScore(userID uint, moduleID *uint) (bool, error) {
	var count int64
	query := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_attempts.user_id = ? AND quiz_attempts.score_percentage = ?", userID, 100.0)
	if moduleID != nil {
		query = query.Joins("JOIN assessments ON assessments.id = quiz_attempts.assessment_id").
			Where("assessments.module_id = ?", *moduleID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// MaxScore 用户历史最高测验得分；没有记录时返回 nil
func (r *AssessmentRepository) MaxScore(userID uint) (*float64, error) {
	var max *float64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ?", userID).
		Select("MAX(score_percentage)").
		Scan(&max).Error
	if err != nil {
		return nil, err
	}
	return max, nil
}

// PendingReview 人工评分队列：只含主观题，按提交时间先进先出
func (r *AssessmentRepository) PendingReview(offset, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64

	base := r.DB.Model(&model.QuizAttempt{}).
		Joins("JOIN assessments ON assessments.id = quiz_attempts.assessment_id").
		Where("quiz_attempts.review_status = ?", model.ReviewNeedsReview).
		Where("assessments.question_type IN ?", []model.QuestionType{model.ShortAnswer, model.CodingTask})

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("quiz_attempts.attempted_at asc").
		Offset(offset).Limit(limit).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// GradedBy 某位评分者的历史记录，按评分时间倒序，可按学员/模块过滤
func (r *AssessmentRepository) GradedBy(graderID uint, userID, moduleID *uint, offset, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64

	base := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_attempts.review_status = ? AND quiz_attempts.graded_by = ?", model.ReviewGraded, graderID)
	if userID != nil {
		base = base.Where("quiz_attempts.user_id = ?", *userID)
	}
	if moduleID != nil {
		base = base.Joins("JOIN assessments ON assessments.id = quiz_attempts.assessment_id").
			Where("assessments.module_id = ?", *moduleID)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("quiz_attempts.graded_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}
