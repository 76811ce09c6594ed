package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type GradingController struct {
	GradingService *service.GradingService
}

func NewGradingController(gradingService *service.GradingService) *GradingController {
	return &GradingController{GradingService: gradingService}
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	return page, pageSize
}

// @Summary 评分队列
// @Description 待人工评分的主观题答卷，按提交时间先进先出
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/v1/grading/queue [get]
func (c *GradingController) Queue(ctx *gin.Context) {
	page, pageSize := pageParams(ctx)

	items, total, err := c.GradingService.Queue(page, pageSize)
	if err != nil {
		util.HandleServiceError(ctx, err, "grading.queue")
		return
	}
	util.Success(ctx, gin.H{
		"items": items,
		"total": total,
	})
}

// @Summary 提交评分
// @Description 对主观题答卷人工评分。客观题或已评分的答卷会被拒绝。
// @Tags 评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "答卷 ID"
// @Param body body service.GradeInput true "评分内容"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/grading/attempts/{id} [post]
func (c *GradingController) Grade(ctx *gin.Context) {
	graderID, _ := util.GetUserID(ctx)
	attemptID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.GradeInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.GradingService.Grade(attemptID, graderID, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "grading.grade")
		return
	}
	util.Success(ctx, attempt)
}

// @Summary 我的评分历史
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param userId query int false "按学员筛选"
// @Param moduleId query int false "按模块筛选"
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/v1/grading/history [get]
func (c *GradingController) History(ctx *gin.Context) {
	graderID, _ := util.GetUserID(ctx)
	page, pageSize := pageParams(ctx)

	var filter service.HistoryFilter
	if raw := ctx.Query("userId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			filter.UserID = &v
		}
	}
	if raw := ctx.Query("moduleId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			filter.ModuleID = &v
		}
	}

	attempts, total, err := c.GradingService.History(graderID, filter, page, pageSize)
	if err != nil {
		util.HandleServiceError(ctx, err, "grading.history")
		return
	}
	util.Success(ctx, gin.H{
		"items": attempts,
		"total": total,
	})
}
