package controller

import (
	"fmt"
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	HardestLimit     int
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, hardestLimit int) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService, HardestLimit: hardestLimit}
}

// @Summary 最难题目
// @Description 综合分 = 0.6 × 平均耗时占比 + 0.4 × 错误率
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量"
// @Success 200 {object} util.Response{data=[]model.HardestQuestion}
// @Router /admin/dashboard/questions/hardest [get]
func (c *AnalyticsController) GetHardestQuestions(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), c.HardestLimit, maxListLimit)
	list, err := c.AnalyticsService.HardestQuestions(ctx.Request.Context(), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 最近 7 天作答量
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param end query string false "结束日期 YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response{data=[]model.DailyActivity}
// @Router /admin/dashboard/weekly [get]
func (c *AnalyticsController) GetWeeklyActivity(ctx *gin.Context) {
	end := time.Now()
	if raw := ctx.Query("end"); raw != "" {
		day, err := util.ParseDay(raw, c.AnalyticsService.Settings.Load().Location)
		if err != nil {
			util.HandleError(ctx, fmt.Errorf("%w: end must be YYYY-MM-DD", util.ErrInvalidPayload))
			return
		}
		end = day
	}

	points, err := c.AnalyticsService.WeeklyActivity(ctx.Request.Context(), end)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, points)
}

// @Summary 单题统计
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.QuestionAnalytic}
// @Failure 404 {object} util.Response
// @Router /admin/analytics/questions/{id} [get]
func (c *AnalyticsController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	a, err := c.AnalyticsService.QuestionAnalyticByID(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 由作答流水重算单题统计
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.QuestionAnalytic}
// @Router /admin/analytics/questions/{id}/recompute [post]
func (c *AnalyticsController) RecomputeQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	a, err := c.AnalyticsService.RecomputeQuestionAnalytic(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 课程表现
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.LessonAnalytic}
// @Failure 404 {object} util.Response
// @Router /admin/analytics/lessons/{id} [get]
func (c *AnalyticsController) GetLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	a, err := c.AnalyticsService.LessonAnalyticByID(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 重算课程表现
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.LessonAnalytic}
// @Router /admin/analytics/lessons/{id}/recompute [post]
func (c *AnalyticsController) RecomputeLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	a, err := c.AnalyticsService.LessonPerformance(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}
