package controller

import (
	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// @Summary 用户注册
// @Description 注册新学员账号
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "注册信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var input service.RegisterInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(&input)
	if err != nil {
		util.HandleServiceError(ctx, err, "auth.register")
		return
	}
	util.Created(ctx, user)
}

// @Summary 用户登录
// @Description 邮箱密码登录，返回 JWT
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "登录信息"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/v1/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var input service.LoginInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(&input)
	if err != nil {
		util.HandleServiceError(ctx, err, "auth.login")
		return
	}
	util.Success(ctx, result)
}

// @Summary 获取个人信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/v1/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID, ok := util.GetUserID(ctx)
	if !ok {
		util.Unauthorized(ctx, "未认证")
		return
	}

	user, err := c.AuthService.GetProfile(userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "auth.me")
		return
	}
	util.Success(ctx, user)
}

// @Summary 更新个人信息
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ProfileUpdateInput true "更新内容"
// @Success 200 {object} util.Response
// @Router /api/v1/auth/me [put]
func (c *AuthController) UpdateMe(ctx *gin.Context) {
	userID, ok := util.GetUserID(ctx)
	if !ok {
		util.Unauthorized(ctx, "未认证")
		return
	}

	var input service.ProfileUpdateInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.UpdateProfile(userID, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "auth.update_me")
		return
	}
	util.Success(ctx, user)
}
