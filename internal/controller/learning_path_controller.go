package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	Catalog *service.CatalogService
}

func NewLearningPathController(catalog *service.CatalogService) *LearningPathController {
	return &LearningPathController{Catalog: catalog}
}

// @Summary 获取学习路径
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Param id path string true "学习路径ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/learning-paths/{id} [get]
func (c *LearningPathController) GetPath(ctx *gin.Context) {
	path, err := c.Catalog.GetPath(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, path)
}
