package controller

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chainedu_backend/internal/service"
	"chainedu_backend/internal/util"
)

// 上传大小上限 50MB
const maxUploadSize = 50 << 20

type UploadController struct {
	StorageService *service.StorageService
}

func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{StorageService: storageService}
}

// @Summary 上传文件
// @Description 课程媒体、头像等文件上传，返回访问 URL
// @Tags 文件
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "文件"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/v1/uploads [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少文件")
		return
	}
	if fileHeader.Size > maxUploadSize {
		util.BadRequest(ctx, "文件超过大小限制")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err, "upload.open")
		return
	}
	defer src.Close()

	ext := filepath.Ext(fileHeader.Filename)
	filename := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.New().String(), ext)
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, fileHeader.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err, "upload.put")
		return
	}

	util.Created(ctx, gin.H{
		"filename": filename,
		"url":      url,
	})
}

// @Summary 删除文件
// @Tags 文件
// @Produce json
// @Security BearerAuth
// @Param filename query string true "文件名"
// @Success 200 {object} util.Response
// @Router /api/v1/uploads [delete]
func (c *UploadController) Delete(ctx *gin.Context) {
	filename := ctx.Query("filename")
	if filename == "" {
		util.BadRequest(ctx, "缺少 filename")
		return
	}

	if err := c.StorageService.Delete(ctx.Request.Context(), filename); err != nil {
		util.LogInternalError(ctx, err, "upload.delete")
		return
	}
	util.Success(ctx, nil)
}
