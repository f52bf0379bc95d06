package interview

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrGatewayFailure LLM网关调用失败，操作中止，会话状态不变
	ErrGatewayFailure = errors.New("调用LLM网关失败")
	// ErrQuestionCountMismatch 抽取出的问题数量不等于规定数量，会话保持空闲
	ErrQuestionCountMismatch = errors.New("抽取的问题数量不符合要求")
	// ErrSessionNotActive 会话不在进行中状态，无法提交
	ErrSessionNotActive = errors.New("会话不在进行中状态")
	// ErrStoreFailure 会话存储读写失败
	ErrStoreFailure = errors.New("会话存储操作失败")
)

// SessionError 包含会话上下文的自定义错误
type SessionError struct {
	SessionID string
	Op        string
	BaseErr   error
	Detail    string
}

func (e *SessionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 会话:%s): %s", e.BaseErr, e.Op, e.SessionID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 会话:%s)", e.BaseErr, e.Op, e.SessionID)
}

func (e *SessionError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *SessionError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func newGatewayError(sessionID, op, detail string) error {
	return &SessionError{
		SessionID: sessionID,
		Op:        op,
		BaseErr:   ErrGatewayFailure,
		Detail:    detail,
	}
}

func newCountMismatchError(sessionID string, got int) error {
	return &SessionError{
		SessionID: sessionID,
		Op:        "extract",
		BaseErr:   ErrQuestionCountMismatch,
		Detail:    fmt.Sprintf("期望 5 个问题，实际得到 %d 个", got),
	}
}

func newStoreError(sessionID, op string, err error) error {
	return &SessionError{
		SessionID: sessionID,
		Op:        op,
		BaseErr:   ErrStoreFailure,
		Detail:    err.Error(),
	}
}
