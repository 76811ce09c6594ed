package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"chainedu_backend/internal/util"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	status := gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if sqlDB, err := c.DB.DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.PingContext(checkCtx); err != nil {
		dbStatus = "error"
	}
	status["database"] = dbStatus

	redisStatus := "ok"
	if c.Redis == nil {
		redisStatus = "disabled"
	} else if err := c.Redis.Ping(checkCtx).Err(); err != nil {
		redisStatus = "error"
	}
	status["redis"] = redisStatus

	util.Success(ctx, status)
}
