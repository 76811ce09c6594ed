package repository

import (
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
)

type CohortRepository struct {
	DB *gorm.DB
}

func NewCohortRepository(db *gorm.DB) *CohortRepository {
	return &CohortRepository{DB: db}
}

func (r *CohortRepository) Create(cohort *model.Cohort) error {
	return r.DB.Create(cohort).Error
}

func (r *CohortRepository) FindByID(id uint) (*model.Cohort, error) {
	var cohort model.Cohort
	err := r.DB.First(&cohort, id).Error
	if err != nil {
		return nil, err
	}
	return &cohort, nil
}

func (r *CohortRepository) List(offset, limit int) ([]model.Cohort, int64, error) {
	var cohorts []model.Cohort
	var total int64

	if err := r.DB.Model(&model.Cohort{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("created_at desc").Offset(offset).Limit(limit).Find(&cohorts).Error
	if err != nil {
		return nil, 0, err
	}
	return cohorts, total, nil
}

// ListForUser 某用户加入的班级
func (r *CohortRepository) ListForUser(userID uint, offset, limit int) ([]model.Cohort, int64, error) {
	var cohorts []model.Cohort
	var total int64

	base := r.DB.Model(&model.Cohort{}).
		Joins("JOIN cohort_members ON cohort_members.cohort_id = cohorts.id").
		Where("cohort_members.user_id = ?", userID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("cohorts.created_at desc").Offset(offset).Limit(limit).Find(&cohorts).Error
	if err != nil {
		return nil, 0, err
	}
	return cohorts, total, nil
}

func (r *CohortRepository) Update(cohort *model.Cohort) error {
	return r.DB.Save(cohort).Error
}

// Delete 硬删除班级及其成员、截止日期、公告
func (r *CohortRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("cohort_id = ?", id).Delete(&model.CohortMember{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("cohort_id = ?", id).Delete(&model.CohortDeadline{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("cohort_id = ?", id).Delete(&model.Announcement{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Cohort{}, id).Error
	})
}

func (r *CohortRepository) AddMember(member *model.CohortMember) error {
	return r.DB.Create(member).Error
}

func (r *CohortRepository) FindMember(cohortID, userID uint) (*model.CohortMember, error) {
	var member model.CohortMember
	err := r.DB.Where("cohort_id = ? AND user_id = ?", cohortID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *CohortRepository) ListMembers(cohortID uint) ([]model.CohortMember, error) {
	var members []model.CohortMember
	err := r.DB.Preload("User").
		Where("cohort_id = ?", cohortID).
		Order("joined_at asc").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *CohortRepository) RemoveMember(cohortID, userID uint) error {
	return r.DB.Unscoped().
		Where("cohort_id = ? AND user_id = ?", cohortID, userID).
		Delete(&model.CohortMember{}).Error
}

func (r *CohortRepository) CountMembersByRole(cohortID uint, role model.CohortRole) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CohortMember{}).
		Where("cohort_id = ? AND role = ?", cohortID, role).
		Count(&count).Error
	return count, err
}

func (r *CohortRepository) CreateDeadline(deadline *model.CohortDeadline) error {
	return r.DB.Create(deadline).Error
}

func (r *CohortRepository) ListDeadlines(cohortID uint) ([]model.CohortDeadline, error) {
	var deadlines []model.CohortDeadline
	err := r.DB.Where("cohort_id = ?", cohortID).
		Order("deadline_date asc").
		Find(&deadlines).Error
	if err != nil {
		return nil, err
	}
	return deadlines, nil
}

func (r *CohortRepository) CreateAnnouncement(ann *model.Announcement) error {
	return r.DB.Create(ann).Error
}

func (r *CohortRepository) ListAnnouncements(cohortID *uint) ([]model.Announcement, error) {
	var anns []model.Announcement
	query := r.DB.Order("is_pinned desc, created_at desc")
	if cohortID != nil {
		query = query.Where("cohort_id = ? OR cohort_id IS NULL", *cohortID)
	}
	err := query.Find(&anns).Error
	if err != nil {
		return nil, err
	}
	return anns, nil
}
