package controller

import (
	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// @Summary 我的通知
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "仅未读"
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/v1/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	page, pageSize := pageParams(ctx)
	unreadOnly := ctx.Query("unread") == "true"

	list, total, err := c.NotificationService.List(userID, unreadOnly, page, pageSize)
	if err != nil {
		util.HandleServiceError(ctx, err, "notification.list")
		return
	}
	util.Success(ctx, gin.H{
		"items": list,
		"total": total,
	})
}

// @Summary 未读数量
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	count, err := c.NotificationService.UnreadCount(userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "notification.unread_count")
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// @Summary 标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.NotificationService.MarkRead(id, userID); err != nil {
		util.HandleServiceError(ctx, err, "notification.mark_read")
		return
	}
	util.Success(ctx, nil)
}

// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	if err := c.NotificationService.MarkAllRead(userID); err != nil {
		util.HandleServiceError(ctx, err, "notification.mark_all_read")
		return
	}
	util.Success(ctx, nil)
}
