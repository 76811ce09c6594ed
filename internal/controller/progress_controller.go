package controller

import (
	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 我的学习进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/progress [get]
func (c *ProgressController) List(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	list, err := c.ProgressService.ListByUser(userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "progress.list")
		return
	}
	util.Success(ctx, list)
}

// @Summary 模块进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/progress/modules/{moduleId} [get]
func (c *ProgressController) GetModule(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	moduleID, ok := parseUintParam(ctx, "moduleId")
	if !ok {
		return
	}

	progress, err := c.ProgressService.GetModuleProgress(userID, moduleID)
	if err != nil {
		util.HandleServiceError(ctx, err, "progress.get_module")
		return
	}
	util.Success(ctx, progress)
}

// @Summary 开始学习模块
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/progress/modules/{moduleId}/start [post]
func (c *ProgressController) Start(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	moduleID, ok := parseUintParam(ctx, "moduleId")
	if !ok {
		return
	}

	progress, err := c.ProgressService.StartModule(userID, moduleID)
	if err != nil {
		util.HandleServiceError(ctx, err, "progress.start")
		return
	}
	util.Success(ctx, progress)
}

// @Summary 完成模块
// @Description 标记模块完成并触发成就检查，返回本次新解锁的成就
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/progress/modules/{moduleId}/complete [post]
func (c *ProgressController) Complete(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	moduleID, ok := parseUintParam(ctx, "moduleId")
	if !ok {
		return
	}

	progress, unlocked, err := c.ProgressService.CompleteModule(ctx.Request.Context(), userID, moduleID)
	if err != nil {
		util.HandleServiceError(ctx, err, "progress.complete")
		return
	}
	util.Success(ctx, gin.H{
		"progress": progress,
		"unlocked": unlocked,
	})
}

// @Summary 更新进度
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "模块 ID"
// @Param body body service.ProgressUpdateInput true "进度更新"
// @Success 200 {object} util.Response
// @Router /api/v1/progress/modules/{moduleId} [patch]
func (c *ProgressController) Update(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	moduleID, ok := parseUintParam(ctx, "moduleId")
	if !ok {
		return
	}

	var input service.ProgressUpdateInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, unlocked, err := c.ProgressService.UpdateProgress(ctx.Request.Context(), userID, moduleID, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "progress.update")
		return
	}
	util.Success(ctx, gin.H{
		"progress": progress,
		"unlocked": unlocked,
	})
}
