package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
)

func createAchievement(t *testing.T, db *gorm.DB, name string, criteria string) *model.Achievement {
	t.Helper()
	a := &model.Achievement{
		Name:     name,
		Category: model.CategoryCompletion,
		Criteria: datatypes.JSON(criteria),
		Points:   10,
		IsActive: true,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func TestCheckAchievements_ModuleCompletionUnlocksOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "alice@example.com", model.Student)
	module := createTestModule(t, db, model.TrackUser, "区块链基础")
	createAchievement(t, db, "First Steps", `{"module_completion": {"any_module": true}}`)

	completeModule(t, db, user.ID, module.ID)

	unlocked, err := svc.CheckAchievements(context.Background(), user.ID, model.EventModuleCompleted)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "First Steps", unlocked[0].Name)

	// 解锁即发通知
	var notifications int64
	require.NoError(t, db.Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", user.ID, "achievement_unlocked").
		Count(&notifications).Error)
	assert.EqualValues(t, 1, notifications)

	// 已获得的成就不会重复解锁
	unlocked, err = svc.CheckAchievements(context.Background(), user.ID, model.EventModuleCompleted)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestCheckAchievements_MalformedCriteriaSkipped(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "bob@example.com", model.Student)
	module := createTestModule(t, db, model.TrackUser, "钱包与密钥")

	createAchievement(t, db, "Broken", `{invalid json`)
	createAchievement(t, db, "First Steps", `{"module_completion": {"any_module": true}}`)

	completeModule(t, db, user.ID, module.ID)

	unlocked, err := svc.CheckAchievements(context.Background(), user.ID, model.EventModuleCompleted)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "First Steps", unlocked[0].Name)
}

func TestCheckAchievements_IrrelevantEventIgnored(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "carol@example.com", model.Student)
	module := createTestModule(t, db, model.TrackAnalyst, "链上数据分析")

	createAchievement(t, db, "High Achiever", `{"score_threshold": {"min_score": 90}}`)

	assessment := &model.Assessment{
		ModuleID:      module.ID,
		QuestionText:  "什么是区块高度？",
		QuestionType:  model.MultipleChoice,
		Points:        10,
		CorrectAnswer: "A",
		IsActive:      true,
	}
	require.NoError(t, db.Create(assessment).Error)
	attempt := &model.QuizAttempt{
		UserID:          user.ID,
		AssessmentID:    assessment.ID,
		UserAnswer:      "A",
		ScorePercentage: 95,
		AttemptedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(attempt).Error)

	// 分数类成就与模块完成事件无关，即使条件已满足也不触发
	unlocked, err := svc.CheckAchievements(context.Background(), user.ID, model.EventModuleCompleted)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	unlocked, err = svc.CheckAchievements(context.Background(), user.ID, model.EventAssessmentSubmitted)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "High Achiever", unlocked[0].Name)
}

func TestCheckAchievements_PerfectScoreScopedToModule(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "dave@example.com", model.Student)
	target := createTestModule(t, db, model.TrackDeveloper, "智能合约入门")
	other := createTestModule(t, db, model.TrackDeveloper, "Solidity 进阶")

	criteria := fmt.Sprintf(`{"perfect_score": {"module_id": %d}}`, target.ID)
	createAchievement(t, db, "Contract Ace", criteria)

	otherAssessment := &model.Assessment{
		ModuleID:      other.ID,
		QuestionText:  "gas 是什么？",
		QuestionType:  model.MultipleChoice,
		Points:        10,
		CorrectAnswer: "B",
		IsActive:      true,
	}
	require.NoError(t, db.Create(otherAssessment).Error)
	require.NoError(t, db.Create(&model.QuizAttempt{
		UserID:          user.ID,
		AssessmentID:    otherAssessment.ID,
		UserAnswer:      "B",
		ScorePercentage: 100,
		AttemptedAt:     time.Now().UTC(),
	}).Error)

	// 别的模块拿满分不算
	unlocked, err := svc.CheckAchievements(context.Background(), user.ID, model.EventAssessmentSubmitted)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	targetAssessment := &model.Assessment{
		ModuleID:      target.ID,
		QuestionText:  "什么是 ABI？",
		QuestionType:  model.MultipleChoice,
		Points:        10,
		CorrectAnswer: "C",
		IsActive:      true,
	}
	require.NoError(t, db.Create(targetAssessment).Error)
	require.NoError(t, db.Create(&model.QuizAttempt{
		UserID:          user.ID,
		AssessmentID:    targetAssessment.ID,
		UserAnswer:      "C",
		ScorePercentage: 100,
		AttemptedAt:     time.Now().UTC(),
	}).Error)

	unlocked, err = svc.CheckAchievements(context.Background(), user.ID, model.EventAssessmentSubmitted)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Contract Ace", unlocked[0].Name)
}

func TestCheckAchievements_ForumHelpThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "erin@example.com", model.Student)
	voter := createTestUser(t, db, "frank@example.com", model.Student)

	createAchievement(t, db, "Community Helper", `{"forum_help": {"posts": 2}}`)

	solved := &model.ForumPost{UserID: user.ID, Title: "共识机制求解", Content: "PoS 怎么理解？", IsSolved: true}
	require.NoError(t, db.Create(solved).Error)

	unlocked, err := svc.CheckAchievements(context.Background(), user.ID, model.EventForumPost)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	// 第二篇靠被点赞算作有帮助
	upvoted := &model.ForumPost{UserID: user.ID, Title: "分叉问题", Content: "硬分叉和软分叉的区别"}
	require.NoError(t, db.Create(upvoted).Error)
	require.NoError(t, db.Create(&model.ForumVote{
		PostID:   upvoted.ID,
		UserID:   voter.ID,
		VoteType: "upvote",
	}).Error)

	unlocked, err = svc.CheckAchievements(context.Background(), user.ID, model.EventForumPost)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Community Helper", unlocked[0].Name)
}

func TestEvalStreak(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "grace@example.com", model.Student)

	// 连续 7 天各留一条进度记录
	for i := 0; i < 7; i++ {
		progress := &model.UserProgress{
			UserID:   user.ID,
			ModuleID: uint(100 + i),
			Status:   model.StatusInProgress,
		}
		require.NoError(t, db.Create(progress).Error)
		stamp := time.Now().UTC().AddDate(0, 0, -i)
		require.NoError(t, db.Model(&model.UserProgress{}).
			Where("id = ?", progress.ID).
			UpdateColumn("updated_at", stamp).Error)
	}

	ok, err := svc.evalStreak(user.ID, &model.StreakCriteria{Days: 7})
	require.NoError(t, err)
	assert.True(t, ok)

	// 断一天就不算连续
	require.NoError(t, db.Model(&model.UserProgress{}).
		Where("user_id = ? AND module_id = ?", user.ID, 103).
		UpdateColumn("updated_at", time.Now().UTC().AddDate(0, 0, -30)).Error)

	ok, err = svc.evalStreak(user.ID, &model.StreakCriteria{Days: 7})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrackCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "heidi@example.com", model.Student)

	m1 := createTestModule(t, db, model.TrackDeveloper, "合约开发一")
	m2 := createTestModule(t, db, model.TrackDeveloper, "合约开发二")

	track := model.TrackDeveloper
	done, err := svc.evalTrackCompletion(user.ID, &model.TrackCompletionCriteria{TrackName: &track})
	require.NoError(t, err)
	assert.False(t, done)

	completeModule(t, db, user.ID, m1.ID)
	completeModule(t, db, user.ID, m2.ID)

	done, err = svc.evalTrackCompletion(user.ID, &model.TrackCompletionCriteria{TrackName: &track})
	require.NoError(t, err)
	assert.True(t, done)

	// 没有模块的方向：单方向成就不可满足，全方向证书跳过空方向
	empty := model.TrackArchitect
	done, err = svc.evalTrackCompletion(user.ID, &model.TrackCompletionCriteria{TrackName: &empty})
	require.NoError(t, err)
	assert.False(t, done)

	done, err = svc.evalTrackCompletion(user.ID, &model.TrackCompletionCriteria{AllTracks: true})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCreateAchievement_InactiveStaysInactive(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)
	user := createTestUser(t, db, "ivan@example.com", model.Student)
	module := createTestModule(t, db, model.TrackUser, "共识入门")
	completeModule(t, db, user.ID, module.ID)

	inactive := false
	created, err := svc.CreateAchievement(context.Background(), &AchievementInput{
		Name:     "Hidden",
		Category: model.CategoryCompletion,
		Criteria: datatypes.JSON(`{"module_completion": {"any_module": true}}`),
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	// 落库后的行必须同样是停用状态
	var stored model.Achievement
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.False(t, stored.IsActive)

	// 停用的成就不参与解锁
	unlocked, err := svc.CheckAchievements(context.Background(), user.ID, model.EventModuleCompleted)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestCreateAchievement_RejectsUnrecognizedCriteria(t *testing.T) {
	db := newTestDB(t)
	svc := newAchievementService(t, db)

	_, err := svc.CreateAchievement(context.Background(), &AchievementInput{
		Name:     "Mystery",
		Category: model.CategoryEngagement,
		Criteria: datatypes.JSON(`{"unknown_condition": {"x": 1}}`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one recognized condition")
}
