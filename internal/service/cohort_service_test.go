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

func newCohortService(t *testing.T, db *gorm.DB) *CohortService {
	t.Helper()
	return NewCohortService(repository.NewCohortRepository(db), repository.NewUserRepository(db))
}

func daysFromNow(days int) *time.Time {
	d := time.Now().UTC().AddDate(0, 0, days)
	return &d
}

func TestComputeIsActive(t *testing.T) {
	today := time.Now().UTC()

	cases := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  bool
	}{
		{"无起止日期视为长期有效", nil, nil, true},
		{"已开始无结束", daysFromNow(-5), nil, true},
		{"未开始无结束", daysFromNow(5), nil, false},
		{"未过期无开始", nil, daysFromNow(5), true},
		{"已过期无开始", nil, daysFromNow(-5), false},
		{"在周期内", daysFromNow(-2), daysFromNow(2), true},
		{"周期未开始", daysFromNow(1), daysFromNow(10), false},
		{"周期已结束", daysFromNow(-10), daysFromNow(-1), false},
		{"起止都是今天", daysFromNow(0), daysFromNow(0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeIsActive(tc.start, tc.end, today))
		})
	}
}

func TestCohortCreate_CreatorBecomesInstructor(t *testing.T) {
	db := newTestDB(t)
	svc := newCohortService(t, db)
	creator := createTestUser(t, db, "teach@example.com", model.Instructor)

	cohort, err := svc.Create(&CohortInput{Name: "2026 春季班"}, creator.ID)
	require.NoError(t, err)
	assert.True(t, cohort.IsActive)

	members, err := svc.ListMembers(cohort.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, creator.ID, members[0].UserID)
	assert.Equal(t, model.CohortInstructor, members[0].Role)
}

func TestCohortCancel(t *testing.T) {
	db := newTestDB(t)
	svc := newCohortService(t, db)
	creator := createTestUser(t, db, "teach@example.com", model.Instructor)

	t.Run("进行中的班级拒绝取消", func(t *testing.T) {
		active, err := svc.Create(&CohortInput{
			Name:      "进行中",
			StartDate: daysFromNow(-2),
			EndDate:   daysFromNow(30),
		}, creator.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(active.ID)
		require.Error(t, err)
		assert.True(t, util.IsPolicyError(err))
		assert.Equal(t, "Cannot cancel an active cohort. Only future or inactive cohorts can be canceled.", err.Error())
	})

	t.Run("未开始的班级可以取消", func(t *testing.T) {
		future, err := svc.Create(&CohortInput{
			Name:      "未开始",
			StartDate: daysFromNow(7),
			EndDate:   daysFromNow(60),
		}, creator.ID)
		require.NoError(t, err)

		cancelled, err := svc.Cancel(future.ID)
		require.NoError(t, err)
		assert.False(t, cancelled.IsActive)
		require.NotNil(t, cancelled.CancelledAt)

		// 取消后即使日期进入周期也保持不活跃
		fetched, err := svc.Get(future.ID)
		require.NoError(t, err)
		assert.False(t, fetched.IsActive)
	})

	t.Run("重复取消不重置取消时间", func(t *testing.T) {
		student := createTestUser(t, db, "stu-cancel@example.com", model.Student)
		cohort, err := svc.Create(&CohortInput{Name: "重复取消", StartDate: daysFromNow(7)}, creator.ID)
		require.NoError(t, err)
		_, err = svc.AddMember(cohort.ID, student.ID, model.CohortStudent)
		require.NoError(t, err)

		_, err = svc.Cancel(cohort.ID)
		require.NoError(t, err)

		fifteenDaysAgo := time.Now().UTC().AddDate(0, 0, -15)
		require.NoError(t, db.Model(&model.Cohort{}).
			Where("id = ?", cohort.ID).
			Update("cancelled_at", fifteenDaysAgo).Error)

		again, err := svc.Cancel(cohort.ID)
		require.NoError(t, err)
		require.NotNil(t, again.CancelledAt)
		assert.WithinDuration(t, fifteenDaysAgo, *again.CancelledAt, time.Second)

		// 等待期没有被重新计时，删除可以进行
		require.NoError(t, svc.Delete(cohort.ID))
	})
}

func TestCohortDelete(t *testing.T) {
	db := newTestDB(t)
	svc := newCohortService(t, db)
	creator := createTestUser(t, db, "teach@example.com", model.Instructor)
	student := createTestUser(t, db, "stu@example.com", model.Student)

	t.Run("无学生立即删除", func(t *testing.T) {
		empty, err := svc.Create(&CohortInput{Name: "空班级"}, creator.ID)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(empty.ID))
		_, err = svc.Get(empty.ID)
		assert.ErrorIs(t, err, util.ErrCohortNotFound)
	})

	t.Run("有学生必须先取消", func(t *testing.T) {
		cohort, err := svc.Create(&CohortInput{Name: "在读班级", StartDate: daysFromNow(7)}, creator.ID)
		require.NoError(t, err)
		_, err = svc.AddMember(cohort.ID, student.ID, model.CohortStudent)
		require.NoError(t, err)

		err = svc.Delete(cohort.ID)
		require.Error(t, err)
		assert.True(t, util.IsPolicyError(err))
		assert.Contains(t, err.Error(), "Cancel the cohort first")

		// 取消 10 天后仍在等待期内
		_, err = svc.Cancel(cohort.ID)
		require.NoError(t, err)
		tenDaysAgo := time.Now().UTC().AddDate(0, 0, -10)
		require.NoError(t, db.Model(&model.Cohort{}).
			Where("id = ?", cohort.ID).
			Update("cancelled_at", tenDaysAgo).Error)

		err = svc.Delete(cohort.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "4 more day(s)")

		// 等满 14 天后可删
		fifteenDaysAgo := time.Now().UTC().AddDate(0, 0, -15)
		require.NoError(t, db.Model(&model.Cohort{}).
			Where("id = ?", cohort.ID).
			Update("cancelled_at", fifteenDaysAgo).Error)
		require.NoError(t, svc.Delete(cohort.ID))
	})
}

func TestCohortAddMember(t *testing.T) {
	db := newTestDB(t)
	svc := newCohortService(t, db)
	creator := createTestUser(t, db, "teach@example.com", model.Instructor)
	student := createTestUser(t, db, "stu@example.com", model.Student)

	cohort, err := svc.Create(&CohortInput{Name: "测试班"}, creator.ID)
	require.NoError(t, err)

	member, err := svc.AddMember(cohort.ID, student.ID, model.CohortStudent)
	require.NoError(t, err)
	assert.Equal(t, model.CohortStudent, member.Role)

	_, err = svc.AddMember(cohort.ID, student.ID, model.CohortStudent)
	require.Error(t, err)
	assert.True(t, util.IsPolicyError(err))
	assert.Equal(t, "User is already a member of this cohort", err.Error())

	_, err = svc.AddMember(cohort.ID, 9999, model.CohortStudent)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestCohortList_StudentSeesOnlyOwnCohorts(t *testing.T) {
	db := newTestDB(t)
	svc := newCohortService(t, db)
	creator := createTestUser(t, db, "teach@example.com", model.Instructor)
	student := createTestUser(t, db, "stu@example.com", model.Student)

	mine, err := svc.Create(&CohortInput{Name: "我的班级"}, creator.ID)
	require.NoError(t, err)
	_, err = svc.Create(&CohortInput{Name: "别人的班级"}, creator.ID)
	require.NoError(t, err)
	_, err = svc.AddMember(mine.ID, student.ID, model.CohortStudent)
	require.NoError(t, err)

	cohorts, total, err := svc.List(student.ID, model.Student, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, cohorts, 1)
	assert.Equal(t, mine.ID, cohorts[0].ID)

	// 讲师看全部
	cohorts, total, err = svc.List(creator.ID, model.Instructor, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, cohorts, 2)
}

func TestCohortRemoveMember_LastInstructorGuard(t *testing.T) {
	db := newTestDB(t)
	svc := newCohortService(t, db)
	creator := createTestUser(t, db, "teach@example.com", model.Instructor)
	second := createTestUser(t, db, "teach2@example.com", model.Instructor)

	cohort, err := svc.Create(&CohortInput{Name: "双师班"}, creator.ID)
	require.NoError(t, err)

	err = svc.RemoveMember(cohort.ID, creator.ID)
	require.Error(t, err)
	assert.True(t, util.IsPolicyError(err))
	assert.Equal(t, "Cannot remove the last instructor from a cohort", err.Error())

	_, err = svc.AddMember(cohort.ID, second.ID, model.CohortInstructor)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(cohort.ID, creator.ID))

	members, err := svc.ListMembers(cohort.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, second.ID, members[0].UserID)
}
