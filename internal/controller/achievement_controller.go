package controller

import (
	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 成就列表
// @Description 完整成就目录，带当前用户的获得状态
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/achievements [get]
func (c *AchievementController) List(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	views, err := c.AchievementService.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "achievement.list")
		return
	}
	util.Success(ctx, views)
}

// @Summary 成就统计
// @Tags 成就
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/achievements/stats [get]
func (c *AchievementController) Stats(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	stats, err := c.AchievementService.Stats(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "achievement.stats")
		return
	}
	util.Success(ctx, stats)
}

// @Summary 创建成就
// @Tags 成就管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AchievementInput true "成就定义"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/admin/achievements [post]
func (c *AchievementController) Create(ctx *gin.Context) {
	var input service.AchievementInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, err := c.AchievementService.CreateAchievement(ctx.Request.Context(), &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "achievement.create")
		return
	}
	util.Created(ctx, achievement)
}

// @Summary 更新成就
// @Tags 成就管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "成就 ID"
// @Param body body service.AchievementInput true "成就定义"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/achievements/{id} [put]
func (c *AchievementController) Update(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.AchievementInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, err := c.AchievementService.UpdateAchievement(ctx.Request.Context(), id, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "achievement.update")
		return
	}
	util.Success(ctx, achievement)
}
