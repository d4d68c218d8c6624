package controller

import (
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RepairController struct {
	RepairService *service.RepairService
}

func NewRepairController(repairService *service.RepairService) *RepairController {
	return &RepairController{RepairService: repairService}
}

// @Summary 修复用户派生数据
// @Description 重算用户全部课程进度，重建经验缓存与连续天数
// @Tags 修复
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=service.UserRepairReport}
// @Router /admin/repair/users/{id} [post]
func (c *RepairController) RepairUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	report, err := c.RepairService.RepairUser(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary 修复课程派生数据
// @Tags 修复
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.LessonRepairReport}
// @Router /admin/repair/lessons/{id} [post]
func (c *RepairController) RepairLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	report, err := c.RepairService.RepairLesson(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary 修复单题统计
// @Tags 修复
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /admin/repair/questions/{id} [post]
func (c *RepairController) RepairQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.RepairService.RepairQuestion(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questionId": id})
}
