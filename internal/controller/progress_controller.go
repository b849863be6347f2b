package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Service *service.ProgressService
}

func NewProgressController(svc *service.ProgressService) *ProgressController {
	return &ProgressController{Service: svc}
}

// bind 绑定请求体，失败时写入 400 响应并返回 false
func bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		if verr := util.AsValidationError(err); verr != nil {
			util.ValidationFailed(ctx, verr)
			return false
		}
		util.ValidationFailed(ctx, util.NewValidationError("body", "malformed JSON request body"))
		return false
	}
	return true
}

// @Summary 获取全部学习进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) ListProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.Service.ListProgress(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 获取单条学习路径的进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param pathId path string true "学习路径ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress/{pathId} [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	p, err := c.Service.GetProgress(ctx.Request.Context(), user.UserID, ctx.Param("pathId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 开始学习路径
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param pathId path string true "学习路径ID"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/progress/start/{pathId} [post]
func (c *ProgressController) StartPath(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	p, err := c.Service.StartPath(ctx.Request.Context(), user.UserID, ctx.Param("pathId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, p)
}

// @Summary 完成课程
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CompleteLessonRequest true "课程完成信息"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/progress/complete-lesson [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CompleteLessonRequest
	if !bind(ctx, &req) {
		return
	}

	p, err := c.Service.CompleteLesson(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 提交周测
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.WeeklyAssessmentRequest true "周测结果"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/progress/weekly-assessment [post]
func (c *ProgressController) SubmitWeeklyAssessment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.WeeklyAssessmentRequest
	if !bind(ctx, &req) {
		return
	}

	p, err := c.Service.SubmitWeeklyAssessment(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 添加或复习单词
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.VocabularyRequest true "单词信息"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/progress/vocabulary [post]
func (c *ProgressController) ReviewVocabulary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.VocabularyRequest
	if !bind(ctx, &req) {
		return
	}

	p, err := c.Service.ReviewVocabulary(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 获取待复习单词
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param pathId path string true "学习路径ID"
// @Success 200 {object} util.Response
// @Router /api/progress/{pathId}/vocabulary/due [get]
func (c *ProgressController) ListDueWords(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	words, err := c.Service.ListDueWords(ctx.Request.Context(), user.UserID, ctx.Param("pathId"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": words, "total": len(words)})
}
