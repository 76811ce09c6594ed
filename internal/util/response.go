package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainedu_backend/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// LogInternalError 记录内部错误详情，对外只返回笼统信息
func LogInternalError(c *gin.Context, err error, scene string) {
	logger.Log.Error("internal error",
		zap.String("scene", scene),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	InternalServerError(c, "服务器内部错误")
}

// HandleServiceError 按错误类别映射状态码：NotFound→404，PolicyError→400，
// 权限→403，凭证→401，其余→500
func HandleServiceError(c *gin.Context, err error, scene string) {
	switch {
	case IsNotFound(err):
		NotFound(c, err.Error())
	case IsPolicyError(err):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	default:
		LogInternalError(c, err, scene)
	}
}
