package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"complan-go/internal/api/handler"
	"complan-go/internal/constants"
)

// RegisterRoutes 注册API路由。
// recruiterAPIKey非空时，招聘方路由组启用 X-API-Key 校验。
func RegisterRoutes(
	h *server.Hertz,
	interviewHandler *handler.InterviewHandler,
	resumeHandler *handler.ResumeHandler,
	courseHandler *handler.CourseHandler,
	recruiterHandler *handler.RecruiterHandler,
	recruiterAPIKey string,
) {
	api := h.Group("/api/v1")

	// 面试会话
	api.POST("/interview/start", interviewHandler.Start)
	api.POST("/interview/answer", interviewHandler.Answer)
	api.POST("/interview/submit", interviewHandler.Submit)
	api.POST("/interview/reset", interviewHandler.Reset)
	api.GET("/interview/tick", interviewHandler.Tick)

	// 简历生成与下载
	api.POST("/resume/generate", resumeHandler.Generate)
	api.GET("/resume/download/:uuid", resumeHandler.Download)

	// 课程搜索
	api.GET("/courses/search", courseHandler.Search)

	// 招聘方浏览，可选API Key校验
	recruiter := api.Group("/recruiter")
	if recruiterAPIKey != "" {
		recruiter.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:"+constants.RecruiterAPIKeyHeader, ""),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return key == recruiterAPIKey, nil
			}),
			keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
				c.JSON(consts.StatusUnauthorized, utils.H{"error": "无效的API Key"})
				c.Abort()
			}),
		))
	}
	recruiter.GET("/resumes", recruiterHandler.ListResumes)

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
