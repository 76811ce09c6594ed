package repository

import (
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Create(progress *model.UserProgress) error {
	return r.DB.Create(progress).Error
}

func (r *ProgressRepository) Update(progress *model.UserProgress) error {
	return r.DB.Save(progress).Error
}

func (r *ProgressRepository) FindByUserAndModule(userID, moduleID uint) (*model.UserProgress, error) {
	var p model.UserProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.UserProgress, error) {
	var list []model.UserProgress
	err := r.DB.Where("user_id = ?", userID).Order("module_id asc").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CompletedModuleIDs 已完成模块 ID 集合
func (r *ProgressRepository) CompletedModuleIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.UserProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted).
		Pluck("module_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *ProgressRepository) HasCompleted(userID, moduleID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.UserProgress{}).
		Where("user_id = ? AND module_id = ? AND status = ?", userID, moduleID, model.StatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// CountCompletedIn 指定模块集合中已完成的数量
func (r *ProgressRepository) CountCompletedIn(userID uint, moduleIDs []uint) (int64, error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.UserProgress{}).
		Where("user_id = ? AND module_id IN ? AND status = ?", userID, moduleIDs, model.StatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted).
		Count(&count).Error
	return count, err
}

// RecentActivityTimes 最近的学习活动时间，倒序，用于连续打卡判定。
// 只取 updated_at，按日期去重交给调用方处理，避免方言相关的 DATE() 函数。
func (r *ProgressRepository) RecentActivityTimes(userID uint, limit int) ([]model.UserProgress, error) {
	var list []model.UserProgress
	err := r.DB.Where("user_id = ?", userID).
		Order("updated_at desc").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
