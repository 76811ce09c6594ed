package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
	"chainedu_backend/pkg/logger"
)

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{NotificationRepo: notificationRepo}
}

// Notify 尽力投递：写入失败只记日志，绝不向调用方传播。
// 通知是业务动作的副产品，不能因为它失败而回滚主流程。
func (s *NotificationService) Notify(userID uint, notificationType, title, message, link string) {
	n := &model.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.NotificationRepo.Create(n); err != nil {
		logger.Log.Warn("notification delivery failed",
			zap.Uint("user_id", userID),
			zap.String("type", notificationType),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) List(userID uint, unreadOnly bool, page, pageSize int) ([]model.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.NotificationRepo.ListByUser(userID, unreadOnly, (page-1)*pageSize, pageSize)
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.NotificationRepo.UnreadCount(userID)
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	err := s.NotificationRepo.MarkRead(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotificationNotFound
	}
	return err
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.NotificationRepo.MarkAllRead(userID)
}
