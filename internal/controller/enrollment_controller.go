package controller

import (
	"logicfy_backend/internal/middleware"
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// @Summary 报名课程
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课程ID"
// @Success 201 {object} util.Response{data=model.LessonEnrollment}
// @Failure 409 {object} util.Response
// @Router /enrollments/{lessonId} [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(ctx.Request.Context(), user.UserID, lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// @Summary 取消报名
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /enrollments/{lessonId} [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}

	if err := c.EnrollmentService.Unenroll(ctx.Request.Context(), user.UserID, lessonID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 设置报名是否有效
// @Tags 报名
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课程ID"
// @Param body body SetActiveRequest true "状态"
// @Success 200 {object} util.Response
// @Router /enrollments/{lessonId} [patch]
func (c *EnrollmentController) SetActive(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.EnrollmentService.SetActive(ctx.Request.Context(), user.UserID, lessonID, *req.Active); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"lessonId": lessonID, "active": *req.Active})
}

// @Summary 报名列表
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=[]model.LessonEnrollment}
// @Router /enrollments [get]
func (c *EnrollmentController) List(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	list, err := c.EnrollmentService.ListEnrollments(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 关注最多的课程
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量" default(20)
// @Success 200 {object} util.Response{data=[]model.FollowedItem}
// @Router /admin/dashboard/lessons/popular [get]
func (c *EnrollmentController) PopularLessons(ctx *gin.Context) {
	items, err := c.EnrollmentService.MostFollowedLessons(ctx.Request.Context(), queryLimit(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// @Summary 关注最多的单元
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量" default(20)
// @Success 200 {object} util.Response{data=[]model.FollowedItem}
// @Router /admin/dashboard/units/popular [get]
func (c *EnrollmentController) PopularUnits(ctx *gin.Context) {
	items, err := c.EnrollmentService.MostFollowedUnits(ctx.Request.Context(), queryLimit(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}
