package controller

import (
	"errors"

	"smartpaper_backend/internal/service"
	"smartpaper_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	HistoryService *service.HistoryService
}

func NewHistoryController(historyService *service.HistoryService) *HistoryController {
	return &HistoryController{HistoryService: historyService}
}

// List godoc
// @Summary 获取答题历史
// @Description 最近在前，最多保留 5 条
// @Tags 历史
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TestHistoryEntry}
// @Router /api/history [get]
func (c *HistoryController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	entries, err := c.HistoryService.List(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}

// Detail godoc
// @Summary 查看单次答题回顾
// @Description 返回历史记录及逐题对错（主观题给参考答案自评）
// @Tags 历史
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "记录ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/history/{id} [get]
func (c *HistoryController) Detail(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	entry, err := c.HistoryService.Find(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrHistoryEntryNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"entry":  entry,
		"review": service.ReviewPaper(&entry.Paper, entry.UserAnswers),
	})
}

// Clear godoc
// @Summary 清空答题历史
// @Description 只支持整体清空，不支持删除单条
// @Tags 历史
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/history [delete]
func (c *HistoryController) Clear(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.HistoryService.Clear(ctx.Request.Context(), user.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
