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

// cohortDeletionWaitDays 取消后必须等待的天数（有学生时）
const cohortDeletionWaitDays = 14

type CohortService struct {
	CohortRepo *repository.CohortRepository
	UserRepo   *repository.UserRepository
}

func NewCohortService(cohortRepo *repository.CohortRepository, userRepo *repository.UserRepository) *CohortService {
	return &CohortService{CohortRepo: cohortRepo, UserRepo: userRepo}
}

// ComputeIsActive 由起止日期推导班级活跃状态。
// 两端都未设置视为长期有效；只设一端按单边比较；日期按自然日含端点。
func ComputeIsActive(startDate, endDate *time.Time, today time.Time) bool {
	day := today.Truncate(24 * time.Hour)
	if startDate == nil && endDate == nil {
		return true
	}
	if startDate != nil && endDate == nil {
		return !day.Before(startDate.Truncate(24 * time.Hour))
	}
	if startDate == nil && endDate != nil {
		return !day.After(endDate.Truncate(24 * time.Hour))
	}
	start := startDate.Truncate(24 * time.Hour)
	end := endDate.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// effectiveIsActive 已取消的班级永远不活跃，否则按日期重算
func effectiveIsActive(cohort *model.Cohort, today time.Time) bool {
	if cohort.CancelledAt != nil {
		return false
	}
	return ComputeIsActive(cohort.StartDate, cohort.EndDate, today)
}

// refreshIsActive 读路径上重算 is_active，与存量值不一致时回写
func (s *CohortService) refreshIsActive(cohort *model.Cohort) {
	actual := effectiveIsActive(cohort, time.Now().UTC())
	if cohort.IsActive != actual {
		cohort.IsActive = actual
		if err := s.CohortRepo.Update(cohort); err != nil {
			logger.Log.Warn("cohort is_active refresh failed",
				zap.Uint("cohort_id", cohort.ID),
				zap.Error(err),
			)
		}
	}
}

type CohortInput struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// Create 新建班级；is_active 由日期推导，创建者自动成为 instructor 成员
func (s *CohortService) Create(input *CohortInput, creatorID uint) (*model.Cohort, error) {
	cohort := &model.Cohort{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    ComputeIsActive(input.StartDate, input.EndDate, time.Now().UTC()),
		CreatedBy:   creatorID,
	}
	if err := s.CohortRepo.Create(cohort); err != nil {
		return nil, err
	}

	member := &model.CohortMember{
		CohortID: cohort.ID,
		UserID:   creatorID,
		Role:     model.CohortInstructor,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.CohortRepo.AddMember(member); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	return cohort, nil
}

func (s *CohortService) Get(id uint) (*model.Cohort, error) {
	cohort, err := s.CohortRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCohortNotFound
		}
		return nil, err
	}
	s.refreshIsActive(cohort)
	return cohort, nil
}

// List 班级列表；学生只能看到自己加入的班级，讲师和管理员看全部
func (s *CohortService) List(viewerID uint, role model.UserRole, page, pageSize int) ([]model.Cohort, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var (
		cohorts []model.Cohort
		total   int64
		err     error
	)
	if role == model.Student {
		cohorts, total, err = s.CohortRepo.ListForUser(viewerID, (page-1)*pageSize, pageSize)
	} else {
		cohorts, total, err = s.CohortRepo.List((page-1)*pageSize, pageSize)
	}
	if err != nil {
		return nil, 0, err
	}
	for i := range cohorts {
		s.refreshIsActive(&cohorts[i])
	}
	return cohorts, total, nil
}

// Update 修改基本信息；日期变更后 is_active 重新推导（已取消的保持 false）
func (s *CohortService) Update(id uint, input *CohortInput) (*model.Cohort, error) {
	cohort, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	cohort.Name = input.Name
	cohort.Description = input.Description
	cohort.StartDate = input.StartDate
	cohort.EndDate = input.EndDate
	cohort.IsActive = effectiveIsActive(cohort, time.Now().UTC())

	if err := s.CohortRepo.Update(cohort); err != nil {
		return nil, err
	}
	return cohort, nil
}

// Cancel 取消班级：只允许未开始或已不活跃的班级，进行中的拒绝。
// 重复取消不改写 cancelled_at，否则删除等待期会被重新计时。
func (s *CohortService) Cancel(id uint) (*model.Cohort, error) {
	cohort, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if cohort.CancelledAt != nil {
		return cohort, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	isFuture := (cohort.StartDate != nil && cohort.StartDate.Truncate(24*time.Hour).After(today)) ||
		(cohort.StartDate == nil && cohort.EndDate != nil && cohort.EndDate.Truncate(24*time.Hour).After(today))

	if !isFuture && cohort.IsActive {
		return nil, util.Policyf("Cannot cancel an active cohort. Only future or inactive cohorts can be canceled.")
	}

	now := time.Now().UTC()
	cohort.IsActive = false
	cohort.CancelledAt = &now
	if err := s.CohortRepo.Update(cohort); err != nil {
		return nil, err
	}
	return cohort, nil
}

// Delete 删除班级：无学生可立即删除；有学生必须先取消并等满 14 天
func (s *CohortService) Delete(id uint) error {
	cohort, err := s.Get(id)
	if err != nil {
		return err
	}

	studentCount, err := s.CohortRepo.CountMembersByRole(id, model.CohortStudent)
	if err != nil {
		return err
	}

	if studentCount > 0 {
		if cohort.CancelledAt == nil {
			return util.Policyf("Cannot delete cohort with %d student(s) assigned. Cancel the cohort first, then wait %d days before deletion.",
				studentCount, cohortDeletionWaitDays)
		}
		daysSince := int(time.Since(*cohort.CancelledAt).Hours() / 24)
		if daysSince < cohortDeletionWaitDays {
			return util.Policyf("Cannot delete cohort yet. Must wait %d more day(s) after cancellation (%d days total required).",
				cohortDeletionWaitDays-daysSince, cohortDeletionWaitDays)
		}
	}

	if err := s.CohortRepo.Delete(id); err != nil {
		return err
	}
	logger.Log.Info("cohort deleted", zap.Uint("cohort_id", id))
	return nil
}

// AddMember 添加成员；用户必须存在且未在班级中
func (s *CohortService) AddMember(cohortID, userID uint, role model.CohortRole) (*model.CohortMember, error) {
	if _, err := s.Get(cohortID); err != nil {
		return nil, err
	}

	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.CohortRepo.FindMember(cohortID, userID); err == nil {
		return nil, util.Policyf("User is already a member of this cohort")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if role != model.CohortInstructor {
		role = model.CohortStudent
	}
	member := &model.CohortMember{
		CohortID: cohortID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.CohortRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.Policyf("User is already a member of this cohort")
		}
		return nil, err
	}
	return member, nil
}

// RemoveMember 移除成员；班级最后一名 instructor 不允许移除
func (s *CohortService) RemoveMember(cohortID, userID uint) error {
	if _, err := s.Get(cohortID); err != nil {
		return err
	}

	member, err := s.CohortRepo.FindMember(cohortID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrMemberNotFound
		}
		return err
	}

	if member.Role == model.CohortInstructor {
		count, err := s.CohortRepo.CountMembersByRole(cohortID, model.CohortInstructor)
		if err != nil {
			return err
		}
		if count <= 1 {
			return util.Policyf("Cannot remove the last instructor from a cohort")
		}
	}

	return s.CohortRepo.RemoveMember(cohortID, userID)
}

func (s *CohortService) ListMembers(cohortID uint) ([]model.CohortMember, error) {
	if _, err := s.Get(cohortID); err != nil {
		return nil, err
	}
	return s.CohortRepo.ListMembers(cohortID)
}

type DeadlineInput struct {
	ModuleID     *uint     `json:"moduleId"`
	DeadlineDate time.Time `json:"deadlineDate" binding:"required"`
	Description  string    `json:"description"`
	IsMandatory  *bool     `json:"isMandatory"`
}

func (s *CohortService) CreateDeadline(cohortID uint, input *DeadlineInput, creatorID uint) (*model.CohortDeadline, error) {
	if _, err := s.Get(cohortID); err != nil {
		return nil, err
	}
	deadline := &model.CohortDeadline{
		CohortID:     cohortID,
		ModuleID:     input.ModuleID,
		DeadlineDate: input.DeadlineDate,
		Description:  input.Description,
		IsMandatory:  true,
		CreatedBy:    creatorID,
	}
	if input.IsMandatory != nil {
		deadline.IsMandatory = *input.IsMandatory
	}
	if err := s.CohortRepo.CreateDeadline(deadline); err != nil {
		return nil, err
	}
	return deadline, nil
}

func (s *CohortService) ListDeadlines(cohortID uint) ([]model.CohortDeadline, error) {
	if _, err := s.Get(cohortID); err != nil {
		return nil, err
	}
	return s.CohortRepo.ListDeadlines(cohortID)
}

type AnnouncementInput struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	IsPinned bool   `json:"isPinned"`
	Priority string `json:"priority"`
}

func (s *CohortService) CreateAnnouncement(cohortID *uint, input *AnnouncementInput, authorID uint) (*model.Announcement, error) {
	if cohortID != nil {
		if _, err := s.Get(*cohortID); err != nil {
			return nil, err
		}
	}
	ann := &model.Announcement{
		CohortID: cohortID,
		AuthorID: authorID,
		Title:    input.Title,
		Content:  input.Content,
		IsPinned: input.IsPinned,
		Priority: input.Priority,
	}
	if ann.Priority == "" {
		ann.Priority = "normal"
	}
	if err := s.CohortRepo.CreateAnnouncement(ann); err != nil {
		return nil, err
	}
	return ann, nil
}

func (s *CohortService) ListAnnouncements(cohortID *uint) ([]model.Announcement, error) {
	return s.CohortRepo.ListAnnouncements(cohortID)
}
