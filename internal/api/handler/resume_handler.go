package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"complan-go/internal/constants"
	"complan-go/internal/logger"
	"complan-go/internal/resume"
	"complan-go/internal/types"
)

// ResumeHandler 简历生成与下载的HTTP处理器
type ResumeHandler struct {
	service *resume.Service
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(service *resume.Service) *ResumeHandler {
	return &ResumeHandler{service: service}
}

// GenerateResponse 简历生成响应
type GenerateResponse struct {
	SubmissionUUID string              `json:"submission_uuid"`
	DownloadPath   string              `json:"download_path"`
	Stats          types.LeetCodeStats `json:"stats"`
}

// Generate 处理 POST /resume/generate
func (h *ResumeHandler) Generate(c context.Context, ctx *app.RequestContext) {
	var profile types.ResumeProfile
	if err := ctx.BindJSON(&profile); err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
		return
	}

	submissionUUID, stats, err := h.service.Generate(c, profile)
	if err != nil {
		if errors.Is(err, resume.ErrMissingFields) {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		logger.Error().Err(err).Msg("生成简历失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, GenerateResponse{
		SubmissionUUID: submissionUUID,
		DownloadPath:   "/api/v1/resume/download/" + submissionUUID,
		Stats:          stats,
	})
}

// Download 处理 GET /resume/download/:uuid
func (h *ResumeHandler) Download(c context.Context, ctx *app.RequestContext) {
	submissionUUID := ctx.Param("uuid")
	if submissionUUID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少uuid参数"})
		return
	}

	data, err := h.service.Download(c, submissionUUID)
	if err != nil {
		logger.Warn().Err(err).Str("uuid", submissionUUID).Msg("下载简历失败")
		ctx.JSON(consts.StatusNotFound, utils.H{"error": "简历不存在"})
		return
	}

	ctx.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", constants.ResumeDownloadFilename))
	ctx.Data(consts.StatusOK, "application/pdf", data)
}
