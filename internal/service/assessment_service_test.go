package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
)

func newAssessmentService(t *testing.T, db *gorm.DB) *AssessmentService {
	t.Helper()
	return NewAssessmentService(
		repository.NewAssessmentRepository(db),
		repository.NewModuleRepository(db),
		newAchievementService(t, db),
	)
}

func TestSubmit_AutoGradesObjectiveQuestions(t *testing.T) {
	db := newTestDB(t)
	svc := newAssessmentService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	module := createTestModule(t, db, model.TrackUser, "交易基础")

	assessment := &model.Assessment{
		ModuleID:      module.ID,
		QuestionText:  "比特币的出块间隔大约是多久？",
		QuestionType:  model.MultipleChoice,
		Points:        10,
		CorrectAnswer: "B",
		Explanation:   "目标出块间隔约为 10 分钟。",
		IsActive:      true,
	}
	require.NoError(t, db.Create(assessment).Error)

	// 答案比较忽略大小写和首尾空白
	result, err := svc.Submit(context.Background(), user.ID, assessment.ID, &SubmitInput{UserAnswer: "  b "})
	require.NoError(t, err)
	require.NotNil(t, result.Attempt.IsCorrect)
	assert.True(t, *result.Attempt.IsCorrect)
	assert.Equal(t, 10, *result.Attempt.PointsEarned)
	assert.InDelta(t, 100.0, result.Attempt.ScorePercentage, 0.001)
	assert.Equal(t, model.ReviewGraded, result.Attempt.ReviewStatus)
	assert.Equal(t, "B", result.CorrectAnswer)
	assert.Equal(t, "目标出块间隔约为 10 分钟。", result.Explanation)

	// 答错即时判零分，同样公开正确答案
	result, err = svc.Submit(context.Background(), user.ID, assessment.ID, &SubmitInput{UserAnswer: "C"})
	require.NoError(t, err)
	assert.False(t, *result.Attempt.IsCorrect)
	assert.Equal(t, 0, *result.Attempt.PointsEarned)
	assert.InDelta(t, 0.0, result.Attempt.ScorePercentage, 0.001)
	assert.Equal(t, "B", result.CorrectAnswer)
}

func TestSubmit_SubjectiveGoesToReviewQueue(t *testing.T) {
	db := newTestDB(t)
	svc := newAssessmentService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	module := createTestModule(t, db, model.TrackDeveloper, "合约安全")

	assessment := &model.Assessment{
		ModuleID:      module.ID,
		QuestionText:  "描述一次重入攻击的流程",
		QuestionType:  model.ShortAnswer,
		Points:        20,
		CorrectAnswer: "参考答案",
		Explanation:   "参考解析",
		IsActive:      true,
	}
	require.NoError(t, db.Create(assessment).Error)

	result, err := svc.Submit(context.Background(), user.ID, assessment.ID, &SubmitInput{UserAnswer: "攻击者在回调中再次调用 withdraw"})
	require.NoError(t, err)
	assert.Equal(t, model.ReviewNeedsReview, result.Attempt.ReviewStatus)
	assert.Nil(t, result.Attempt.IsCorrect)
	// 主观题不提前泄露参考答案
	assert.Empty(t, result.CorrectAnswer)
	assert.Empty(t, result.Explanation)
}

func TestSubmit_PerfectScoreUnlocksAchievement(t *testing.T) {
	db := newTestDB(t)
	svc := newAssessmentService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	module := createTestModule(t, db, model.TrackUser, "密码学基础")
	createAchievement(t, db, "Perfectionist", `{"perfect_score": {"any_assessment": true}}`)

	assessment := &model.Assessment{
		ModuleID:      module.ID,
		QuestionText:  "哈希函数是否可逆？",
		QuestionType:  model.TrueFalse,
		Points:        10,
		CorrectAnswer: "false",
		IsActive:      true,
	}
	require.NoError(t, db.Create(assessment).Error)

	result, err := svc.Submit(context.Background(), user.ID, assessment.ID, &SubmitInput{UserAnswer: "false"})
	require.NoError(t, err)
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, "Perfectionist", result.Unlocked[0].Name)
}

func TestSubmit_InactiveAssessmentNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newAssessmentService(t, db)
	user := createTestUser(t, db, "stu@example.com", model.Student)
	module := createTestModule(t, db, model.TrackUser, "已下线内容")

	assessment := &model.Assessment{
		ModuleID:      module.ID,
		QuestionText:  "已下线题目",
		QuestionType:  model.MultipleChoice,
		Points:        10,
		CorrectAnswer: "A",
		IsActive:      false,
	}
	require.NoError(t, db.Create(assessment).Error)

	_, err := svc.Submit(context.Background(), user.ID, assessment.ID, &SubmitInput{UserAnswer: "A"})
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
}
