package controller

import (
	"logicfy_backend/internal/middleware"
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 课程进度列表
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=[]model.LessonProgress}
// @Router /progress/lessons [get]
func (c *ProgressController) ListLessons(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	list, err := c.ProgressService.LessonProgress(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 单个课程进度
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=model.LessonProgress}
// @Failure 404 {object} util.Response
// @Router /progress/lessons/{id} [get]
func (c *ProgressController) GetLesson(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	p, err := c.ProgressService.LessonProgressByID(ctx.Request.Context(), userID, lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 小节进度列表
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=[]model.SectionProgress}
// @Router /progress/sections [get]
func (c *ProgressController) ListSections(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	list, err := c.ProgressService.SectionProgress(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 单个小节进度
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "小节ID"
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=model.SectionProgress}
// @Router /progress/sections/{id} [get]
func (c *ProgressController) GetSection(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	p, err := c.ProgressService.SectionProgressByID(ctx.Request.Context(), userID, sectionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 单元进度列表
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=[]model.UnitProgress}
// @Router /progress/units [get]
func (c *ProgressController) ListUnits(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	list, err := c.ProgressService.UnitProgress(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 单个单元进度
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "单元ID"
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=model.UnitProgress}
// @Router /progress/units/{id} [get]
func (c *ProgressController) GetUnit(ctx *gin.Context) {
	unitID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	p, err := c.ProgressService.UnitProgressByID(ctx.Request.Context(), userID, unitID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 重算课程进度
// @Description 重算课程进度并级联更新所属小节与单元
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=model.LessonProgress}
// @Router /progress/lessons/{id}/recompute [post]
func (c *ProgressController) RecomputeLesson(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	p, err := c.ProgressService.RecomputeLessonProgress(ctx.Request.Context(), userID, lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}
