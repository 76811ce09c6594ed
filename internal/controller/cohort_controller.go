package controller

import (
	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type CohortController struct {
	CohortService *service.CohortService
}

func NewCohortController(cohortService *service.CohortService) *CohortController {
	return &CohortController{CohortService: cohortService}
}

// @Summary 班级列表
// @Description 学生只能看到自己加入的班级，讲师和管理员看全部
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/v1/cohorts [get]
func (c *CohortController) List(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	role, _ := util.GetUserRole(ctx)
	page, pageSize := pageParams(ctx)

	cohorts, total, err := c.CohortService.List(userID, role, page, pageSize)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.list")
		return
	}
	util.Success(ctx, gin.H{
		"items": cohorts,
		"total": total,
	})
}

// @Summary 班级详情
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/cohorts/{id} [get]
func (c *CohortController) Get(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	cohort, err := c.CohortService.Get(id)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.get")
		return
	}
	util.Success(ctx, cohort)
}

// @Summary 创建班级
// @Description 创建者自动成为 instructor 成员，is_active 由起止日期推导
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CohortInput true "班级信息"
// @Success 201 {object} util.Response
// @Router /api/v1/cohorts [post]
func (c *CohortController) Create(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	var input service.CohortInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cohort, err := c.CohortService.Create(&input, userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.create")
		return
	}
	util.Created(ctx, cohort)
}

// @Summary 更新班级
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Param body body service.CohortInput true "班级信息"
// @Success 200 {object} util.Response
// @Router /api/v1/cohorts/{id} [put]
func (c *CohortController) Update(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.CohortInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cohort, err := c.CohortService.Update(id, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.update")
		return
	}
	util.Success(ctx, cohort)
}

// @Summary 取消班级
// @Description 只允许取消未开始或已不活跃的班级
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/cohorts/{id}/cancel [post]
func (c *CohortController) Cancel(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	cohort, err := c.CohortService.Cancel(id)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.cancel")
		return
	}
	util.Success(ctx, cohort)
}

// @Summary 删除班级
// @Description 无学生可立即删除；有学生必须先取消并等满 14 天
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/cohorts/{id} [delete]
func (c *CohortController) Delete(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.CohortService.Delete(id); err != nil {
		util.HandleServiceError(ctx, err, "cohort.delete")
		return
	}
	util.Success(ctx, nil)
}

// @Summary 班级成员
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/cohorts/{id}/members [get]
func (c *CohortController) Members(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	members, err := c.CohortService.ListMembers(id)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.members")
		return
	}
	util.Success(ctx, members)
}

type addMemberRequest struct {
	UserID uint             `json:"userId" binding:"required"`
	Role   model.CohortRole `json:"role"`
}

// @Summary 添加成员
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Param body body addMemberRequest true "成员信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/cohorts/{id}/members [post]
func (c *CohortController) AddMember(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req addMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	member, err := c.CohortService.AddMember(id, req.UserID, req.Role)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.add_member")
		return
	}
	util.Created(ctx, member)
}

// @Summary 移除成员
// @Description 班级最后一名 instructor 不允许移除
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Param userId path int true "用户 ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/cohorts/{id}/members/{userId} [delete]
func (c *CohortController) RemoveMember(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parseUintParam(ctx, "userId")
	if !ok {
		return
	}

	if err := c.CohortService.RemoveMember(id, userID); err != nil {
		util.HandleServiceError(ctx, err, "cohort.remove_member")
		return
	}
	util.Success(ctx, nil)
}

// @Summary 创建截止日期
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Param body body service.DeadlineInput true "截止日期"
// @Success 201 {object} util.Response
// @Router /api/v1/cohorts/{id}/deadlines [post]
func (c *CohortController) CreateDeadline(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.DeadlineInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	deadline, err := c.CohortService.CreateDeadline(id, &input, userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.create_deadline")
		return
	}
	util.Created(ctx, deadline)
}

// @Summary 班级截止日期
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/cohorts/{id}/deadlines [get]
func (c *CohortController) Deadlines(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	deadlines, err := c.CohortService.ListDeadlines(id)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.deadlines")
		return
	}
	util.Success(ctx, deadlines)
}

// @Summary 发布公告
// @Tags 班级
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Param body body service.AnnouncementInput true "公告内容"
// @Success 201 {object} util.Response
// @Router /api/v1/cohorts/{id}/announcements [post]
func (c *CohortController) CreateAnnouncement(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.AnnouncementInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ann, err := c.CohortService.CreateAnnouncement(&id, &input, userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.create_announcement")
		return
	}
	util.Created(ctx, ann)
}

// @Summary 班级公告
// @Tags 班级
// @Produce json
// @Security BearerAuth
// @Param id path int true "班级 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/cohorts/{id}/announcements [get]
func (c *CohortController) Announcements(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	anns, err := c.CohortService.ListAnnouncements(&id)
	if err != nil {
		util.HandleServiceError(ctx, err, "cohort.announcements")
		return
	}
	util.Success(ctx, anns)
}
