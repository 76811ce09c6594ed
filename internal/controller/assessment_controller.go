package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
}

func NewAssessmentController(assessmentService *service.AssessmentService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService}
}

// @Summary 模块测验题目
// @Description 学生视角的题目列表，不含正确答案
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/modules/{id}/assessments [get]
func (c *AssessmentController) ListForModule(ctx *gin.Context) {
	moduleID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	views, err := c.AssessmentService.ListForModule(moduleID)
	if err != nil {
		util.HandleServiceError(ctx, err, "assessment.list")
		return
	}
	util.Success(ctx, gin.H{
		"moduleId":    moduleID,
		"assessments": views,
	})
}

// @Summary 提交答案
// @Description 客观题即时评分，主观题进入人工评分队列
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目 ID"
// @Param body body service.SubmitInput true "答案"
// @Success 200 {object} util.Response
// @Router /api/v1/assessments/{id}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	assessmentID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.SubmitInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AssessmentService.Submit(ctx.Request.Context(), userID, assessmentID, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "assessment.submit")
		return
	}
	util.Success(ctx, result)
}

// @Summary 我的答题记录
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param moduleId query int false "按模块筛选"
// @Success 200 {object} util.Response
// @Router /api/v1/attempts [get]
func (c *AssessmentController) ListAttempts(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	var moduleID *uint
	if raw := ctx.Query("moduleId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid moduleId")
			return
		}
		v := uint(id)
		moduleID = &v
	}

	attempts, err := c.AssessmentService.ListAttempts(userID, moduleID)
	if err != nil {
		util.HandleServiceError(ctx, err, "assessment.attempts")
		return
	}
	util.Success(ctx, attempts)
}

// @Summary 创建题目
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块 ID"
// @Param body body service.AssessmentInput true "题目内容"
// @Success 201 {object} util.Response
// @Router /api/v1/admin/modules/{id}/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	moduleID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.AssessmentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.AssessmentService.CreateAssessment(moduleID, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "assessment.create")
		return
	}
	util.Created(ctx, assessment)
}

// @Summary 更新题目
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目 ID"
// @Param body body service.AssessmentInput true "题目内容"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.AssessmentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.AssessmentService.UpdateAssessment(id, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "assessment.update")
		return
	}
	util.Success(ctx, assessment)
}

// @Summary 删除题目
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.AssessmentService.DeleteAssessment(id); err != nil {
		util.HandleServiceError(ctx, err, "assessment.delete")
		return
	}
	util.Success(ctx, nil)
}
