package repository

import (
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(module *model.Module) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindByID(id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModuleRepository) FindByIDWithLessons(id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).Order("order_index asc")
	}).First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ModuleRepository) FindActive(track model.Track) ([]model.Module, error) {
	var modules []model.Module
	query := r.DB.Where("is_active = ?", true)
	if track != "" {
		query = query.Where("track = ?", track)
	}
	err := query.Order("track asc, order_index asc").Find(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}

// ActiveIDsByTrack 返回某条学习路径下全部启用模块的 ID
func (r *ModuleRepository) ActiveIDsByTrack(track model.Track) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Module{}).
		Where("track = ? AND is_active = ?", track, true).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ModuleRepository) Update(module *model.Module) error {
	return r.DB.Save(module).Error
}

func (r *ModuleRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Module{}, id).Error
}

func (r *ModuleRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *ModuleRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *ModuleRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *ModuleRepository) DeleteLesson(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}
