package controller

import (
	"logicfy_backend/internal/middleware"
	"logicfy_backend/internal/service"
	"logicfy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
}

func NewAnswerController(answerService *service.AnswerService) *AnswerController {
	return &AnswerController{AnswerService: answerService}
}

// @Summary 提交作答
// @Description 记录一次作答并判题；统计、经验、进度在事件落库后更新
// @Tags 作答
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.RecordAnswerInput true "作答内容"
// @Success 201 {object} util.Response{data=model.AnswerEvent}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /answers [post]
func (c *AnswerController) RecordAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.RecordAnswerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	in.UserID = user.UserID

	ev, err := c.AnswerService.RecordAnswer(ctx.Request.Context(), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, ev)
}

// @Summary 作答记录
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID（仅管理员）"
// @Param limit query int false "数量" default(20)
// @Success 200 {object} util.Response{data=[]model.AnswerEvent}
// @Router /answers [get]
func (c *AnswerController) ListAnswers(ctx *gin.Context) {
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	list, err := c.AnswerService.ListAnswers(ctx.Request.Context(), userID, queryLimit(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 某题最近一次作答
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path int true "题目ID"
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response{data=model.AnswerEvent}
// @Failure 404 {object} util.Response
// @Router /answers/{questionId} [get]
func (c *AnswerController) LatestAnswer(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}
	userID, err := middleware.TargetUserID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	ev, err := c.AnswerService.LatestAnswer(ctx.Request.Context(), userID, questionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, ev)
}
