package controller

import (
	"errors"

	"smartpaper_backend/internal/model"
	"smartpaper_backend/internal/service"
	"smartpaper_backend/internal/util"
	"smartpaper_backend/pkg/logger"
	"smartpaper_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaperController struct {
	PaperService *service.PaperService
}

func NewPaperController(paperService *service.PaperService) *PaperController {
	return &PaperController{PaperService: paperService}
}

// Generate godoc
// @Summary 生成试卷并开始考试会话
// @Description 按配置调用生成模型产出试卷，校验通过后返回剥离答案键的考生视图
// @Tags 试卷
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.PaperConfig true "试卷配置"
// @Success 200 {object} util.Response{data=service.StudentPaper}
// @Failure 400 {object} util.Response "配置不合法"
// @Failure 409 {object} util.Response "已有生成请求在途"
// @Failure 502 {object} util.Response "生成失败"
// @Router /api/papers/generate [post]
func (c *PaperController) Generate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var cfg model.PaperConfig
	if err := ctx.ShouldBindJSON(&cfg); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.PaperService.Generate(ctx.Request.Context(), user.UserID, cfg)
	if err != nil {
		c.renderGenerateError(ctx, err)
		return
	}

	monitoring.PaperGenerations.WithLabelValues("ok").Inc()
	util.Success(ctx, service.StudentView(attempt))
}

// renderGenerateError 生成失败对用户只给一个统一的提示并回到配置页，
// 细节只进日志；不存在部分成功的试卷。
func (c *PaperController) renderGenerateError(ctx *gin.Context, err error) {
	var malformed *service.MalformedResponseError
	var violation *service.SchemaViolationError

	switch {
	case errors.Is(err, util.ErrInvalidPaperConfig):
		util.BadRequest(ctx, "invalid paper config")
	case errors.Is(err, util.ErrGenerationInFlight):
		util.Error(ctx, 409, "a paper is already being generated, please wait")
	case errors.As(err, &malformed), errors.As(err, &violation):
		monitoring.PaperGenerations.WithLabelValues("invalid_output").Inc()
		logger.Log.Error("generator produced an unusable paper", zap.Error(err))
		util.Error(ctx, 502, "failed to generate a valid paper, please try again")
	case errors.Is(err, service.ErrGeneratorUnavailable):
		monitoring.PaperGenerations.WithLabelValues("transport_error").Inc()
		logger.Log.Error("generator call failed", zap.Error(err))
		util.Error(ctx, 502, "failed to generate a valid paper, please try again")
	default:
		util.LogInternalError(ctx, err)
	}
}

// SubmitRequest 交卷请求体
type SubmitRequest struct {
	Answers map[string]string `json:"answers"`
}

// Submit godoc
// @Summary 交卷并判分
// @Description 幂等：同一会话重复提交返回同一条历史记录
// @Tags 试卷
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path string true "会话ID"
// @Param   body body SubmitRequest true "用户答案"
// @Success 200 {object} util.Response{data=model.TestHistoryEntry}
// @Failure 404 {object} util.Response "会话不存在或已过期"
// @Router /api/papers/attempts/{attemptId}/submit [post]
func (c *PaperController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry, err := c.PaperService.Submit(ctx.Request.Context(), user.UserID, ctx.Param("attemptId"), req.Answers)
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, entry)
}
