package controller

import (
	"context"
	"logicfy_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type repairBacklog interface {
	Len() int
}

type HealthController struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Repairs repairBacklog
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, repairs repairBacklog) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Repairs: repairs}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up", "redis": "disabled"}
	if c.Redis != nil {
		// Redis 仅作缓存，不可用时服务降级但仍然健康
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["redis"] = "down"
		} else {
			components["redis"] = "up"
		}
	}

	data := gin.H{"status": "ok", "components": components}
	if c.Repairs != nil {
		data["repairBacklog"] = c.Repairs.Len()
	}
	util.Success(ctx, data)
}
