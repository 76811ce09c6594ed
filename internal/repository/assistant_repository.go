package repository

import (
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
)

type AssistantRepository struct {
	DB *gorm.DB
}

func NewAssistantRepository(db *gorm.DB) *AssistantRepository {
	return &AssistantRepository{DB: db}
}

func (r *AssistantRepository) CreateSession(session *model.AssistantSession) error {
	return r.DB.Create(session).Error
}

func (r *AssistantRepository) FindSession(id string, userID uint) (*model.AssistantSession, error) {
	var session model.AssistantSession
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *AssistantRepository) ListSessions(userID uint) ([]model.AssistantSession, error) {
	var sessions []model.AssistantSession
	err := r.DB.Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *AssistantRepository) DeleteSession(id string, userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&model.AssistantMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).
			Delete(&model.AssistantSession{}).Error
	})
}

func (r *AssistantRepository) CreateMessage(msg *model.AssistantMessage) error {
	return r.DB.Create(msg).Error
}

func (r *AssistantRepository) ListMessages(sessionID string) ([]model.AssistantMessage, error) {
	var messages []model.AssistantMessage
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
