package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"complan-go/internal/logger"
	"complan-go/internal/udemy"
)

// CourseHandler 课程搜索的HTTP处理器
type CourseHandler struct {
	client *udemy.Client
}

// NewCourseHandler 创建课程搜索处理器
func NewCourseHandler(client *udemy.Client) *CourseHandler {
	return &CourseHandler{client: client}
}

// Search 处理 GET /courses/search?query=
func (h *CourseHandler) Search(c context.Context, ctx *app.RequestContext) {
	query := ctx.Query("query")
	if query == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少query参数"})
		return
	}

	courses, err := h.client.Search(c, query)
	if err != nil {
		logger.Warn().Err(err).Str("query", query).Msg("课程搜索失败")
		if errors.Is(err, udemy.ErrCourseAPIUnavailable) {
			ctx.JSON(consts.StatusBadGateway, utils.H{"error": "课程搜索接口暂时不可用"})
			return
		}
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"query":   query,
		"count":   len(courses),
		"courses": courses,
	})
}
