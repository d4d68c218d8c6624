package controller

import (
	"logicfy_backend/internal/middleware"
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary 学员仪表盘
// @Description 经验、等级、连续天数、单元与小节进度、最近作答
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=model.LearnerDashboard}
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	dashboard, err := c.DashboardService.LearnerDashboard(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// @Summary 管理员仪表盘
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.AdminDashboard}
// @Router /admin/dashboard [get]
func (c *DashboardController) GetAdminDashboard(ctx *gin.Context) {
	dashboard, err := c.DashboardService.AdminDashboard(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// @Summary 语言详情
// @Description 语言统计与 单元/小节/课程 树
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "语言ID"
// @Success 200 {object} util.Response{data=model.LanguageDetail}
// @Failure 404 {object} util.Response
// @Router /admin/dashboard/languages/{id} [get]
func (c *DashboardController) GetLanguageDetail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.DashboardService.LanguageDetail(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}
