package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chainedu_backend/internal/config"
	"chainedu_backend/internal/model"
	"chainedu_backend/internal/util"
)

// AuthMiddleware 校验 Bearer Token 并注入用户信息
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			util.Unauthorized(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(parts[1], cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c, "无效或过期的令牌")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

// RoleMiddleware 要求指定角色之一，admin 始终放行
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := util.GetUserRole(c)
		if !ok {
			util.Unauthorized(c, "未认证")
			c.Abort()
			return
		}
		if role == model.Admin {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		util.Forbidden(c, "权限不足")
		c.Abort()
	}
}

// UserActivityRepo 记录用户活跃时间
type UserActivityRepo interface {
	TouchLastSeen(userID uint, at time.Time) error
}

// ActivityMiddleware 异步更新 last_seen，失败不影响请求
func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := util.GetUserID(c); ok {
			go func() {
				_ = repo.TouchLastSeen(id, time.Now())
			}()
		}
		c.Next()
	}
}
