package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
)

func newGradingService(t *testing.T, db *gorm.DB) *GradingService {
	t.Helper()
	return NewGradingService(
		repository.NewAssessmentRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db)),
	)
}

func createAssessment(t *testing.T, db *gorm.DB, moduleID uint, qt model.QuestionType, points int) *model.Assessment {
	t.Helper()
	a := &model.Assessment{
		ModuleID:      moduleID,
		QuestionText:  "解释一下工作量证明",
		QuestionType:  qt,
		Points:        points,
		CorrectAnswer: "A",
		IsActive:      true,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func createAttempt(t *testing.T, db *gorm.DB, userID, assessmentID uint, status model.ReviewStatus, attemptedAt time.Time) *model.QuizAttempt {
	t.Helper()
	attempt := &model.QuizAttempt{
		UserID:       userID,
		AssessmentID: assessmentID,
		UserAnswer:   "矿工通过算力竞争记账权",
		ReviewStatus: status,
		AttemptedAt:  attemptedAt,
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func TestGradingQueue_SubjectiveOnlyFIFO(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	module := createTestModule(t, db, model.TrackDeveloper, "共识机制")

	shortAnswer := createAssessment(t, db, module.ID, model.ShortAnswer, 10)
	coding := createAssessment(t, db, module.ID, model.CodingTask, 20)
	choice := createAssessment(t, db, module.ID, model.MultipleChoice, 10)

	now := time.Now().UTC()
	// 倒序插入，队列必须按提交时间先进先出
	second := createAttempt(t, db, user.ID, coding.ID, model.ReviewNeedsReview, now)
	first := createAttempt(t, db, user.ID, shortAnswer.ID, model.ReviewNeedsReview, now.Add(-time.Hour))
	// 客观题即使误标 needs_review 也不进队列
	createAttempt(t, db, user.ID, choice.ID, model.ReviewNeedsReview, now.Add(-2*time.Hour))
	// 已评分的不进队列
	createAttempt(t, db, user.ID, shortAnswer.ID, model.ReviewGraded, now.Add(-3*time.Hour))

	items, total, err := svc.Queue(1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].Attempt.ID)
	assert.Equal(t, second.ID, items[1].Attempt.ID)
	require.NotNil(t, items[0].Assessment)
	assert.Equal(t, shortAnswer.ID, items[0].Assessment.ID)
}

func TestGrade_RejectsAutoGradable(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	grader := createTestUser(t, db, "teach@example.com", model.Instructor)
	module := createTestModule(t, db, model.TrackUser, "钱包安全")

	choice := createAssessment(t, db, module.ID, model.MultipleChoice, 10)
	attempt := createAttempt(t, db, user.ID, choice.ID, model.ReviewNeedsReview, time.Now().UTC())

	_, err := svc.Grade(attempt.ID, grader.ID, &GradeInput{IsCorrect: true, PointsEarned: 10})
	require.Error(t, err)
	assert.True(t, util.IsPolicyError(err))
	assert.Equal(t, "This assessment is auto-graded and does not require manual grading", err.Error())
}

func TestGrade_SetsFieldsAndRefusesRegrade(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	grader := createTestUser(t, db, "teach@example.com", model.Instructor)
	module := createTestModule(t, db, model.TrackAnalyst, "链上取证")

	task := createAssessment(t, db, module.ID, model.CodingTask, 20)
	attempt := createAttempt(t, db, user.ID, task.ID, model.ReviewNeedsReview, time.Now().UTC())

	graded, err := svc.Grade(attempt.ID, grader.ID, &GradeInput{
		IsCorrect:     true,
		PointsEarned:  15,
		Feedback:      "思路正确，边界情况没有覆盖",
		PartialCredit: true,
	})
	require.NoError(t, err)

	require.NotNil(t, graded.IsCorrect)
	assert.True(t, *graded.IsCorrect)
	require.NotNil(t, graded.PointsEarned)
	assert.Equal(t, 15, *graded.PointsEarned)
	assert.Equal(t, "思路正确，边界情况没有覆盖", graded.Feedback)
	assert.True(t, graded.PartialCredit)
	assert.Equal(t, model.ReviewGraded, graded.ReviewStatus)
	require.NotNil(t, graded.GradedBy)
	assert.Equal(t, grader.ID, *graded.GradedBy)
	require.NotNil(t, graded.GradedAt)
	assert.InDelta(t, 75.0, graded.ScorePercentage, 0.001)

	// 学生收到评分通知
	var notifications int64
	require.NoError(t, db.Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", user.ID, "attempt_graded").
		Count(&notifications).Error)
	assert.EqualValues(t, 1, notifications)

	// 评过分的不能再评
	_, err = svc.Grade(attempt.ID, grader.ID, &GradeInput{IsCorrect: false})
	require.Error(t, err)
	assert.True(t, util.IsPolicyError(err))
	assert.Equal(t, "This attempt has already been graded", err.Error())
}

func TestGrade_AttemptNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(t, db)
	grader := createTestUser(t, db, "teach@example.com", model.Instructor)

	_, err := svc.Grade(12345, grader.ID, &GradeInput{})
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestGradingHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	grader := createTestUser(t, db, "teach@example.com", model.Instructor)
	module := createTestModule(t, db, model.TrackDeveloper, "脚本语言")

	task := createAssessment(t, db, module.ID, model.ShortAnswer, 10)
	a1 := createAttempt(t, db, user.ID, task.ID, model.ReviewNeedsReview, time.Now().UTC().Add(-2*time.Hour))
	a2 := createAttempt(t, db, user.ID, task.ID, model.ReviewNeedsReview, time.Now().UTC().Add(-time.Hour))

	_, err := svc.Grade(a1.ID, grader.ID, &GradeInput{IsCorrect: true, PointsEarned: 10})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond) // 保证 graded_at 可区分先后
	_, err = svc.Grade(a2.ID, grader.ID, &GradeInput{IsCorrect: false, PointsEarned: 2})
	require.NoError(t, err)

	history, total, err := svc.History(grader.ID, HistoryFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, history, 2)
	// 按评分时间倒序，后评的在前
	assert.Equal(t, a2.ID, history[0].ID)
	assert.Equal(t, a1.ID, history[1].ID)

	// 按学员过滤
	other := createTestUser(t, db, "other@example.com", model.Student)
	history, total, err = svc.History(grader.ID, HistoryFilter{UserID: &other.ID}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, history)

	// 按模块过滤
	history, total, err = svc.History(grader.ID, HistoryFilter{ModuleID: &module.ID}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, history, 2)
}
