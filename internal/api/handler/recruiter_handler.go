package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"complan-go/internal/logger"
	"complan-go/internal/storage"
	"complan-go/internal/types"
)

// RecruiterHandler 招聘方浏览简历的HTTP处理器
type RecruiterHandler struct {
	mysql *storage.MySQL
}

// NewRecruiterHandler 创建招聘方处理器
func NewRecruiterHandler(mysql *storage.MySQL) *RecruiterHandler {
	return &RecruiterHandler{mysql: mysql}
}

// resumeListItem 简历列表中的一条记录
type resumeListItem struct {
	SubmissionUUID string              `json:"submission_uuid"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Address        string              `json:"address"`
	Sections       json.RawMessage     `json:"sections"`
	Stats          types.LeetCodeStats `json:"stats"`
	DownloadPath   string              `json:"download_path"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// ListResumes 处理 GET /recruiter/resumes
func (h *RecruiterHandler) ListResumes(c context.Context, ctx *app.RequestContext) {
	if h.mysql == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "简历数据库不可用"})
		return
	}

	limit := 100
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	docs, err := h.mysql.ListResumeDocuments(c, limit)
	if err != nil {
		logger.Error().Err(err).Msg("查询简历列表失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询简历列表失败"})
		return
	}

	items := make([]resumeListItem, 0, len(docs))
	for _, doc := range docs {
		var stats types.LeetCodeStats
		if len(doc.LeetCodeStats) > 0 {
			if err := json.Unmarshal(doc.LeetCodeStats, &stats); err != nil {
				logger.Warn().Err(err).
					Str("submission_uuid", doc.SubmissionUUID).
					Msg("解析统计快照失败")
			}
		}
		items = append(items, resumeListItem{
			SubmissionUUID: doc.SubmissionUUID,
			Name:           doc.CandidateName,
			Email:          doc.CandidateEmail,
			Phone:          doc.Phone,
			Address:        doc.Address,
			Sections:       json.RawMessage(doc.Sections),
			Stats:          stats,
			DownloadPath:   "/api/v1/resume/download/" + doc.SubmissionUUID,
			GeneratedAt:    doc.GeneratedAt,
		})
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"count":   len(items),
		"resumes": items,
	})
}
