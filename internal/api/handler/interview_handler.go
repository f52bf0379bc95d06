package handler

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"

	"complan-go/internal/constants"
	"complan-go/internal/interview"
	"complan-go/internal/logger"
	"complan-go/internal/types"
)

// InterviewHandler 面试会话的HTTP处理器。
// 会话标识从 X-Session-ID 请求头读取，缺失时生成一个UUIDv7
// 并通过同名响应头返回给客户端。
type InterviewHandler struct {
	controller *interview.Controller
}

// NewInterviewHandler 创建面试处理器
func NewInterviewHandler(controller *interview.Controller) *InterviewHandler {
	return &InterviewHandler{controller: controller}
}

// StartRequest 开始面试的请求体
type StartRequest struct {
	Role            string `json:"role"`
	YearsExperience string `json:"years_experience"`
}

// AnswerRequest 记录回答的请求体
type AnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// sessionView 会话在响应中的展示结构
type sessionView struct {
	SessionID     string             `json:"session_id"`
	Phase         types.SessionPhase `json:"phase"`
	Questions     []string           `json:"questions"`
	Answers       map[string]string  `json:"answers"`
	RemainingSecs int                `json:"remaining_secs"`
	ResultText    string             `json:"result_text,omitempty"`
}

// resolveSessionID 读取或生成会话ID，并写入响应头
func resolveSessionID(ctx *app.RequestContext) (string, error) {
	sessionID := string(ctx.GetHeader(constants.SessionIDHeader))
	if sessionID == "" {
		uuidV7, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		sessionID = uuidV7.String()
	}
	ctx.Header(constants.SessionIDHeader, sessionID)
	return sessionID, nil
}

// writeInterviewError 把会话错误映射为HTTP状态码
func writeInterviewError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, interview.ErrSessionNotActive):
		ctx.JSON(consts.StatusConflict, utils.H{"error": err.Error()})
	case errors.Is(err, interview.ErrGatewayFailure),
		errors.Is(err, interview.ErrQuestionCountMismatch):
		ctx.JSON(consts.StatusBadGateway, utils.H{"error": err.Error()})
	default:
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
	}
}

// Start 处理 POST /interview/start
func (h *InterviewHandler) Start(c context.Context, ctx *app.RequestContext) {
	sessionID, err := resolveSessionID(ctx)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "生成会话ID失败"})
		return
	}

	var req StartRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
		return
	}
	if req.Role == "" || req.YearsExperience == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "role和years_experience不能为空"})
		return
	}

	session, err := h.controller.StartSession(c, sessionID, req.Role, req.YearsExperience)
	if err != nil {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("开始面试失败")
		writeInterviewError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, h.view(session))
}

// Answer 处理 POST /interview/answer
func (h *InterviewHandler) Answer(c context.Context, ctx *app.RequestContext) {
	sessionID, err := resolveSessionID(ctx)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "生成会话ID失败"})
		return
	}

	var req AnswerRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
		return
	}
	if req.Question == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "question不能为空"})
		return
	}

	if err := h.controller.RecordAnswer(c, sessionID, req.Question, req.Answer); err != nil {
		writeInterviewError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// Submit 处理 POST /interview/submit
func (h *InterviewHandler) Submit(c context.Context, ctx *app.RequestContext) {
	sessionID, err := resolveSessionID(ctx)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "生成会话ID失败"})
		return
	}

	session, err := h.controller.Submit(c, sessionID)
	if err != nil {
		writeInterviewError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, h.view(session))
}

// Tick 处理 GET /interview/tick
func (h *InterviewHandler) Tick(c context.Context, ctx *app.RequestContext) {
	sessionID, err := resolveSessionID(ctx)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "生成会话ID失败"})
		return
	}

	remaining, phase, err := h.controller.Tick(c, sessionID)
	if err != nil {
		writeInterviewError(ctx, err)
		return
	}

	resp := utils.H{
		"remaining_secs": int(remaining.Seconds()),
		"phase":          phase,
	}
	// 已评分时附带结果文本，客户端停止轮询
	if phase == types.PhaseScored {
		session, err := h.controller.Session(c, sessionID)
		if err == nil {
			resp["result_text"] = session.ResultText
		}
	}
	ctx.JSON(consts.StatusOK, resp)
}

// Reset 处理 POST /interview/reset
func (h *InterviewHandler) Reset(c context.Context, ctx *app.RequestContext) {
	sessionID, err := resolveSessionID(ctx)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "生成会话ID失败"})
		return
	}

	if err := h.controller.Reset(c, sessionID); err != nil {
		writeInterviewError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// view 构造会话的响应视图
func (h *InterviewHandler) view(session *types.InterviewSession) sessionView {
	remaining := 0
	if session.Phase() == types.PhaseActive {
		remaining = int(session.Remaining(time.Now()).Seconds())
	}
	return sessionView{
		SessionID:     session.SessionID,
		Phase:         session.Phase(),
		Questions:     session.Questions,
		Answers:       session.Answers,
		RemainingSecs: remaining,
		ResultText:    session.ResultText,
	}
}
