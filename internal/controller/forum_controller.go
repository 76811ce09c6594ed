package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type ForumController struct {
	ForumService *service.ForumService
}

func NewForumController(forumService *service.ForumService) *ForumController {
	return &ForumController{ForumService: forumService}
}

// @Summary 帖子列表
// @Tags 讨论区
// @Produce json
// @Security BearerAuth
// @Param moduleId query int false "按模块筛选"
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/v1/forum/posts [get]
func (c *ForumController) ListThreads(ctx *gin.Context) {
	page, pageSize := pageParams(ctx)

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

	posts, total, err := c.ForumService.ListThreads(moduleID, page, pageSize)
	if err != nil {
		util.HandleServiceError(ctx, err, "forum.list")
		return
	}
	util.Success(ctx, gin.H{
		"items": posts,
		"total": total,
	})
}

// @Summary 帖子详情
// @Tags 讨论区
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/forum/posts/{id} [get]
func (c *ForumController) GetThread(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	post, replies, err := c.ForumService.GetThread(id)
	if err != nil {
		util.HandleServiceError(ctx, err, "forum.get")
		return
	}
	util.Success(ctx, gin.H{
		"post":    post,
		"replies": replies,
	})
}

// @Summary 发帖
// @Tags 讨论区
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ThreadInput true "帖子内容"
// @Success 201 {object} util.Response
// @Router /api/v1/forum/posts [post]
func (c *ForumController) CreateThread(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	var input service.ThreadInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	post, err := c.ForumService.CreateThread(ctx.Request.Context(), userID, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "forum.create")
		return
	}
	util.Created(ctx, post)
}

// @Summary 回帖
// @Tags 讨论区
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "主帖 ID"
// @Param body body service.ReplyInput true "回复内容"
// @Success 201 {object} util.Response
// @Router /api/v1/forum/posts/{id}/replies [post]
func (c *ForumController) Reply(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.ReplyInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.ForumService.Reply(ctx.Request.Context(), userID, id, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "forum.reply")
		return
	}
	util.Created(ctx, reply)
}

type voteRequest struct {
	VoteType string `json:"voteType" binding:"required"`
}

// @Summary 投票
// @Description 一人一票，重复投同类型票视为撤销
// @Tags 讨论区
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Param body body voteRequest true "投票类型"
// @Success 200 {object} util.Response
// @Router /api/v1/forum/posts/{id}/vote [post]
func (c *ForumController) Vote(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req voteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	post, err := c.ForumService.Vote(id, userID, req.VoteType)
	if err != nil {
		util.HandleServiceError(ctx, err, "forum.vote")
		return
	}
	util.Success(ctx, post)
}

// @Summary 标记已解决
// @Tags 讨论区
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/forum/posts/{id}/solve [post]
func (c *ForumController) MarkSolved(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	role, _ := util.GetUserRole(ctx)
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	post, err := c.ForumService.MarkSolved(ctx.Request.Context(), id, userID, role)
	if err != nil {
		util.HandleServiceError(ctx, err, "forum.solve")
		return
	}
	util.Success(ctx, post)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// @Summary 置顶/取消置顶
// @Tags 讨论区
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Param body body pinRequest true "是否置顶"
// @Success 200 {object} util.Response
// @Router /api/v1/forum/posts/{id}/pin [post]
func (c *ForumController) Pin(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req pinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	post, err := c.ForumService.Pin(id, req.Pinned)
	if err != nil {
		util.HandleServiceError(ctx, err, "forum.pin")
		return
	}
	util.Success(ctx, post)
}

// @Summary 删除帖子
// @Tags 讨论区
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/forum/posts/{id} [delete]
func (c *ForumController) Delete(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	role, _ := util.GetUserRole(ctx)
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ForumService.Delete(id, userID, role); err != nil {
		util.HandleServiceError(ctx, err, "forum.delete")
		return
	}
	util.Success(ctx, nil)
}
