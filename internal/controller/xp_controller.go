package controller

import (
	"logicfy_backend/internal/middleware"
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type XpController struct {
	XpService *service.XpService
}

func NewXpController(xpService *service.XpService) *XpController {
	return &XpController{XpService: xpService}
}

type GrantXpRequest struct {
	UserID uint `json:"userId" binding:"required"`
	Amount int  `json:"amount" binding:"required"`
}

// @Summary 经验流水
// @Tags 经验
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Param limit query int false "数量" default(20)
// @Success 200 {object} util.Response{data=[]model.XpLog}
// @Router /xp/log [get]
func (c *XpController) GetLog(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	logs, err := c.XpService.History(ctx.Request.Context(), userID, queryLimit(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, logs)
}

// @Summary 经验与等级
// @Tags 经验
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=model.XpStats}
// @Router /xp/stats [get]
func (c *XpController) GetStats(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	stats, err := c.XpService.Stats(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 经验排行榜
// @Tags 经验
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量" default(20)
// @Success 200 {object} util.Response{data=[]model.LeaderboardEntry}
// @Router /xp/leaderboard [get]
func (c *XpController) GetLeaderboard(ctx *gin.Context) {
	entries, err := c.XpService.Leaderboard(ctx.Request.Context(), queryLimit(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 手动发放经验
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GrantXpRequest true "发放内容"
// @Success 201 {object} util.Response{data=model.XpLog}
// @Failure 400 {object} util.Response
// @Router /admin/xp/grant [post]
func (c *XpController) Grant(ctx *gin.Context) {
	admin := util.GetUserFromContext(ctx)
	if admin == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GrantXpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	source := util.XpSourceAdmin + ":" + strconv.FormatUint(uint64(admin.UserID), 10)
	entry, err := c.XpService.Grant(ctx.Request.Context(), req.UserID, source, req.Amount)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, entry)
}
