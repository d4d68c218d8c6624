package controller

import (
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ContentController 内容层级的计数缓存维护与删除
type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// @Summary 刷新课程题目数
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /admin/content/lessons/{id}/refresh-count [post]
func (c *ContentController) RefreshLessonCount(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	count, err := c.ContentService.RefreshLessonQuestionCount(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"lessonId": id, "questionCount": count})
}

// @Summary 刷新小节课程数
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "小节ID"
// @Success 200 {object} util.Response
// @Router /admin/content/sections/{id}/refresh-count [post]
func (c *ContentController) RefreshSectionCount(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	count, err := c.ContentService.RefreshSectionLessonCount(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sectionId": id, "lessonCount": count})
}

// @Summary 刷新单元小节数
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "单元ID"
// @Success 200 {object} util.Response
// @Router /admin/content/units/{id}/refresh-count [post]
func (c *ContentController) RefreshUnitCount(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	count, err := c.ContentService.RefreshUnitSectionCount(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"unitId": id, "sectionCount": count})
}

// @Summary 刷新全部计数缓存
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.RefreshCountsResult}
// @Router /admin/content/refresh-counts [post]
func (c *ContentController) RefreshAllCounts(ctx *gin.Context) {
	res, err := c.ContentService.RefreshAllCounts(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 删除课程
// @Description 课程下仍有题目时拒绝删除
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /admin/content/lessons/{id} [delete]
func (c *ContentController) DeleteLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteLesson(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除小节
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "小节ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /admin/content/sections/{id} [delete]
func (c *ContentController) DeleteSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteSection(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除单元
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "单元ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /admin/content/units/{id} [delete]
func (c *ContentController) DeleteUnit(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContentService.DeleteUnit(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除题目
// @Tags 内容
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /admin/content/questions/{id} [delete]
func (c *ContentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	q, err := c.ContentService.DeleteQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questionId": q.ID, "lessonId": q.LessonID})
}
