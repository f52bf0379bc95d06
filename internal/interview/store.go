package interview

import (
	"context"
	"encoding/json"
	"sync"

	"complan-go/internal/types"
)

// SessionStore 定义了面试会话存储的接口。
// Load 对不存在的会话ID返回一个全新的空闲会话而不是错误。
type SessionStore interface {
	// Load 加载指定会话ID的面试会话
	Load(ctx context.Context, sessionID string) (*types.InterviewSession, error)

	// Save 保存面试会话
	Save(ctx context.Context, session *types.InterviewSession) error

	// Delete 删除指定会话ID的面试会话。会话不存在时静默成功。
	Delete(ctx context.Context, sessionID string) error
}

// InMemorySessionStore 是 SessionStore 接口的一个内存实现。
// 注意：此实现不是持久化的，仅用于测试和单机场景。
type InMemorySessionStore struct {
	// 使用读写锁以支持并发访问
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewInMemorySessionStore 创建一个新的 InMemorySessionStore 实例
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string][]byte),
	}
}

// Load 实现 SessionStore 接口
func (m *InMemorySessionStore) Load(ctx context.Context, sessionID string) (*types.InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.sessions[sessionID]
	if !ok {
		return types.NewInterviewSession(sessionID), nil
	}

	var session types.InterviewSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Save 实现 SessionStore 接口。
// 存储JSON序列化结果而非指针，与Redis实现保持一致的隔离语义。
func (m *InMemorySessionStore) Save(ctx context.Context, session *types.InterviewSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = data
	return nil
}

// Delete 实现 SessionStore 接口
func (m *InMemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

var _ SessionStore = (*InMemorySessionStore)(nil)
