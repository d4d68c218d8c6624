package middleware

import (
	"fmt"
	"logicfy_backend/internal/config"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RoleMiddleware 管理员拥有全部角色的权限
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.IsAdmin()
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// TargetUserID 普通用户只能访问自己的数据；管理员可通过 ?userId 指定任意用户
func TargetUserID(c *gin.Context) (uint, error) {
	user := util.GetUserFromContext(c)
	if user == nil {
		return 0, util.ErrPermissionDenied
	}

	raw := c.Query("userId")
	if raw == "" {
		return user.UserID, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid userId %q", util.ErrInvalidPayload, raw)
	}
	if uint(id) != user.UserID && !user.IsAdmin() {
		return 0, util.ErrPermissionDenied
	}
	return uint(id), nil
}
