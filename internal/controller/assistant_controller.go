package controller

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type AssistantController struct {
	AssistantService *service.AssistantService
}

func NewAssistantController(assistantService *service.AssistantService) *AssistantController {
	return &AssistantController{AssistantService: assistantService}
}

type createSessionRequest struct {
	Title string `json:"title"`
}

// @Summary 新建会话
// @Tags AI 助教
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createSessionRequest false "会话标题"
// @Success 201 {object} util.Response
// @Router /api/v1/assistant/sessions [post]
func (c *AssistantController) CreateSession(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	var req createSessionRequest
	_ = ctx.ShouldBindJSON(&req)

	session, err := c.AssistantService.CreateSession(userID, req.Title)
	if err != nil {
		util.HandleServiceError(ctx, err, "assistant.create_session")
		return
	}
	util.Created(ctx, session)
}

// @Summary 会话列表
// @Tags AI 助教
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/assistant/sessions [get]
func (c *AssistantController) ListSessions(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)

	sessions, err := c.AssistantService.ListSessions(userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "assistant.list_sessions")
		return
	}
	util.Success(ctx, sessions)
}

// @Summary 会话消息
// @Tags AI 助教
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/assistant/sessions/{id}/messages [get]
func (c *AssistantController) Messages(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	sessionID := ctx.Param("id")

	messages, err := c.AssistantService.GetMessages(sessionID, userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "assistant.messages")
		return
	}
	util.Success(ctx, messages)
}

// @Summary 删除会话
// @Tags AI 助教
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/assistant/sessions/{id} [delete]
func (c *AssistantController) DeleteSession(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	sessionID := ctx.Param("id")

	if err := c.AssistantService.DeleteSession(sessionID, userID); err != nil {
		util.HandleServiceError(ctx, err, "assistant.delete_session")
		return
	}
	util.Success(ctx, nil)
}

type chatRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	LessonID *uint  `json:"lessonId"`
}

// @Summary 对话（SSE 流式）
// @Description 以 Server-Sent Events 返回增量内容，结束后整条回复落库
// @Tags AI 助教
// @Accept json
// @Produce text/event-stream
// @Security BearerAuth
// @Param id path string true "会话 ID"
// @Param body body chatRequest true "问题"
// @Success 200 {string} string "SSE stream"
// @Router /api/v1/assistant/sessions/{id}/chat [post]
func (c *AssistantController) Chat(ctx *gin.Context) {
	userID, _ := util.GetUserID(ctx)
	sessionID := ctx.Param("id")

	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, errChan, err := c.AssistantService.ChatStream(sessionID, userID, req.Prompt, req.LessonID)
	if err != nil {
		util.HandleServiceError(ctx, err, "assistant.chat")
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	var full strings.Builder
	ctx.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-out:
			if !ok {
				ctx.SSEvent("done", "")
				return false
			}
			full.WriteString(chunk)
			ctx.SSEvent("message", chunk)
			return true
		case err, ok := <-errChan:
			if ok && err != nil {
				ctx.SSEvent("error", err.Error())
			}
			return false
		}
	})

	if err := c.AssistantService.SaveAssistantReply(sessionID, full.String()); err != nil {
		util.LogInternalError(ctx, err, "assistant.save_reply")
	}
}
