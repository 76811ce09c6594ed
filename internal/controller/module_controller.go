package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/model"
	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// @Summary 课程模块列表
// @Description 按学习路径筛选课程模块，附带个人进度
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param track query string false "学习路径" Enums(user, analyst, developer, architect)
// @Success 200 {object} util.Response
// @Router /api/v1/modules [get]
func (c *ModuleController) List(ctx *gin.Context) {
	track := model.Track(ctx.Query("track"))
	userID, _ := util.GetUserID(ctx)

	modules, err := c.ModuleService.List(track, userID)
	if err != nil {
		util.HandleServiceError(ctx, err, "module.list")
		return
	}
	util.Success(ctx, modules)
}

// @Summary 模块详情
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v1/modules/{id} [get]
func (c *ModuleController) Get(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	module, err := c.ModuleService.Get(id)
	if err != nil {
		util.HandleServiceError(ctx, err, "module.get")
		return
	}
	util.Success(ctx, module)
}

// @Summary 课时详情
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/lessons/{id} [get]
func (c *ModuleController) GetLesson(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	lesson, err := c.ModuleService.GetLesson(id)
	if err != nil {
		util.HandleServiceError(ctx, err, "module.get_lesson")
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 创建模块
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ModuleInput true "模块内容"
// @Success 201 {object} util.Response
// @Router /api/v1/admin/modules [post]
func (c *ModuleController) Create(ctx *gin.Context) {
	var input service.ModuleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.Create(&input)
	if err != nil {
		util.HandleServiceError(ctx, err, "module.create")
		return
	}
	util.Created(ctx, module)
}

// @Summary 更新模块
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块 ID"
// @Param body body service.ModuleInput true "模块内容"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/modules/{id} [put]
func (c *ModuleController) Update(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.ModuleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.Update(id, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "module.update")
		return
	}
	util.Success(ctx, module)
}

// @Summary 下线模块
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/modules/{id} [delete]
func (c *ModuleController) Delete(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ModuleService.Delete(id); err != nil {
		util.HandleServiceError(ctx, err, "module.delete")
		return
	}
	util.Success(ctx, nil)
}

// @Summary 创建课时
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块 ID"
// @Param body body service.LessonInput true "课时内容"
// @Success 201 {object} util.Response
// @Router /api/v1/admin/modules/{id}/lessons [post]
func (c *ModuleController) CreateLesson(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.LessonInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.ModuleService.CreateLesson(id, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "module.create_lesson")
		return
	}
	util.Created(ctx, lesson)
}

// @Summary 更新课时
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时 ID"
// @Param body body service.LessonInput true "课时内容"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/lessons/{id} [put]
func (c *ModuleController) UpdateLesson(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input service.LessonInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.ModuleService.UpdateLesson(id, &input)
	if err != nil {
		util.HandleServiceError(ctx, err, "module.update_lesson")
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 删除课时
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时 ID"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/lessons/{id} [delete]
func (c *ModuleController) DeleteLesson(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ModuleService.DeleteLesson(id); err != nil {
		util.HandleServiceError(ctx, err, "module.delete_lesson")
		return
	}
	util.Success(ctx, nil)
}
