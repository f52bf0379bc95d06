package interview

import (
	"context"
	"errors"
	"sync"
	"time"

	"complan-go/internal/logger"
	"complan-go/internal/types"
)

// Controller 驱动单个用户会话的限时问答周期。
// 状态机：Idle（无问题）→ Active（问题已生成，计时中）→ Scored（评分完成），
// Reset回到Idle；重新StartSession直接覆盖旧状态，不需要先Reset。
//
// 计时不使用阻塞轮询：每个活动会话对应一个 time.AfterFunc 计时器，
// 到期触发一次AutoSubmit；Tick只做剩余时间查询，并在计时器丢失时
// （如进程重启后）兜底触发AutoSubmit。
type Controller struct {
	store     SessionStore
	generator *QuestionGenerator
	scorer    *AnswerScorer
	timeLimit time.Duration

	// now 可注入，便于测试
	now func() time.Time

	// 会话级互斥，保证同一会话的Submit/Start/Reset串行化，
	// 从而保证到期后恰好触发一次AutoSubmit
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// NewController 创建面试会话控制器
func NewController(store SessionStore, generator *QuestionGenerator, scorer *AnswerScorer, timeLimit time.Duration) *Controller {
	if timeLimit <= 0 {
		timeLimit = time.Minute
	}
	return &Controller{
		store:     store,
		generator: generator,
		scorer:    scorer,
		timeLimit: timeLimit,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
		timers:    make(map[string]*time.Timer),
	}
}

// sessionLock 返回指定会话的互斥锁
func (c *Controller) sessionLock(sessionID string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	if lock, ok := c.locks[sessionID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	c.locks[sessionID] = lock
	return lock
}

// StartSession 生成问题并激活会话。
// 生成失败（网关错误或问题数量不等于5）时会话保持原状态不变。
// 已有活动会话时直接覆盖，旧计时器被停止。
func (c *Controller) StartSession(ctx context.Context, sessionID, role, yearsExperience string) (*types.InterviewSession, error) {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	// 先生成问题，任何失败都不改动会话状态
	questions, err := c.generator.GenerateQuestions(ctx, sessionID, role, yearsExperience)
	if err != nil {
		return nil, err
	}

	startTime := c.now()
	endTime := startTime.Add(c.timeLimit)

	session := types.NewInterviewSession(sessionID)
	session.Role = role
	session.YearsExperience = yearsExperience
	session.Questions = questions
	session.StartTime = &startTime
	session.EndTime = &endTime
	session.TimeLimitSecs = int(c.timeLimit / time.Second)

	if err := c.store.Save(ctx, session); err != nil {
		return nil, newStoreError(sessionID, "start", err)
	}

	c.scheduleAutoSubmit(sessionID)

	logger.Info().
		Str("session_id", sessionID).
		Str("role", role).
		Time("end_time", endTime).
		Msg("面试会话已激活")

	return session, nil
}

// RecordAnswer 记录（或覆盖）一个问题的回答。
// 对回答内容不做任何校验，同一问题后写的值覆盖先写的值。
func (c *Controller) RecordAnswer(ctx context.Context, sessionID, question, text string) error {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return newStoreError(sessionID, "answer", err)
	}

	if session.Answers == nil {
		session.Answers = map[string]string{}
	}
	session.Answers[question] = text

	if err := c.store.Save(ctx, session); err != nil {
		return newStoreError(sessionID, "answer", err)
	}
	return nil
}

// Tick 查询剩余时间。剩余时间永远不为负；
// 活动会话剩余时间归零时兜底触发一次AutoSubmit。
// 返回值为剩余时间、当前阶段。
func (c *Controller) Tick(ctx context.Context, sessionID string) (time.Duration, types.SessionPhase, error) {
	session, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return 0, types.PhaseIdle, newStoreError(sessionID, "tick", err)
	}

	phase := session.Phase()
	if phase != types.PhaseActive {
		return 0, phase, nil
	}

	remaining := session.Remaining(c.now())
	if remaining > 0 {
		return remaining, phase, nil
	}

	// 到期兜底：计时器可能因进程重启而丢失
	updated, err := c.Submit(ctx, sessionID)
	if err != nil {
		// 提交竞争失败：会话可能已被计时器提交，也可能被并发的
		// Reset或重新开始改写，重新加载后返回实际状态
		if errors.Is(err, ErrSessionNotActive) {
			current, loadErr := c.store.Load(ctx, sessionID)
			if loadErr != nil {
				return 0, types.PhaseIdle, newStoreError(sessionID, "tick", loadErr)
			}
			return current.Remaining(c.now()), current.Phase(), nil
		}
		return 0, phase, err
	}
	return 0, updated.Phase(), nil
}

// Submit 对当前回答进行评分（手动提交或到期自动提交共用）。
// 未回答的问题以空字符串计入；评分失败时会话保持Active可重试。
func (c *Controller) Submit(ctx context.Context, sessionID string) (*types.InterviewSession, error) {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, newStoreError(sessionID, "submit", err)
	}

	if session.Phase() != types.PhaseActive {
		return nil, &SessionError{SessionID: sessionID, Op: "submit", BaseErr: ErrSessionNotActive}
	}

	// 缺失的回答补为空字符串，始终提交全部问题
	finalAnswers := make(map[string]string, len(session.Questions))
	for _, q := range session.Questions {
		finalAnswers[q] = session.Answers[q]
	}

	resultText, err := c.scorer.Score(ctx, sessionID, session.Role, session.YearsExperience, finalAnswers)
	if err != nil {
		// 评分失败：状态不变，会话保持Active，可重试
		return nil, err
	}

	scoredAt := c.now()
	session.Answers = finalAnswers
	session.ResultText = resultText
	session.ScoredAt = &scoredAt
	session.Questions = []string{}

	if err := c.store.Save(ctx, session); err != nil {
		return nil, newStoreError(sessionID, "submit", err)
	}

	c.cancelTimer(sessionID)

	logger.Info().
		Str("session_id", sessionID).
		Msg("面试会话已评分")

	return session, nil
}

// Reset 将会话清空回初始空闲状态，任何阶段都可以调用
func (c *Controller) Reset(ctx context.Context, sessionID string) error {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	c.cancelTimer(sessionID)

	if err := c.store.Delete(ctx, sessionID); err != nil {
		return newStoreError(sessionID, "reset", err)
	}
	return nil
}

// Session 返回当前会话状态（只读查询）
func (c *Controller) Session(ctx context.Context, sessionID string) (*types.InterviewSession, error) {
	session, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, newStoreError(sessionID, "get", err)
	}
	return session, nil
}

// scheduleAutoSubmit 为会话安排到期自动提交，替换掉旧计时器
func (c *Controller) scheduleAutoSubmit(sessionID string) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()

	if old, ok := c.timers[sessionID]; ok {
		old.Stop()
	}
	c.timers[sessionID] = time.AfterFunc(c.timeLimit, func() {
		c.autoSubmit(sessionID)
	})
}

// cancelTimer 停止并移除会话的计时器
func (c *Controller) cancelTimer(sessionID string) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if timer, ok := c.timers[sessionID]; ok {
		timer.Stop()
		delete(c.timers, sessionID)
	}
}

// autoSubmit 计时器到期回调。
// 会话已被手动提交、重置或重新开始时静默跳过。
func (c *Controller) autoSubmit(sessionID string) {
	ctx := context.Background()

	session, err := c.store.Load(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("自动提交时加载会话失败")
		return
	}

	// 计时器可能属于已被覆盖的旧会话：新会话还有剩余时间时跳过
	if session.Phase() != types.PhaseActive || session.Remaining(c.now()) > 0 {
		return
	}

	logger.Info().Str("session_id", sessionID).Msg("答题时间到，自动提交")

	if _, err := c.Submit(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotActive) {
			return
		}
		logger.Error().Err(err).Str("session_id", sessionID).Msg("自动提交评分失败")
	}
}
