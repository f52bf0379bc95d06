package interview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complan-go/internal/types"
)

// newTestController 构造一个使用内存存储和脚本化LLM的控制器
func newTestController(t *testing.T, llm *fakeChatModel, timeLimit time.Duration) *Controller {
	t.Helper()
	return NewController(
		NewInMemorySessionStore(),
		NewQuestionGenerator(llm),
		NewAnswerScorer(llm),
		timeLimit,
	)
}

// happyLLM 返回一个正常工作的脚本模型：抽取返回5个问题，评分返回固定文本
func happyLLM() *fakeChatModel {
	return &fakeChatModel{
		respond: func(system, user string) (string, error) {
			switch {
			case isExtractPrompt(system):
				return questionsJSON(5), nil
			case isScorePrompt(system):
				return "总分 20/25", nil
			default:
				return "自由文本问题描述", nil
			}
		},
	}
}

func TestStartSessionActivates(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	session, err := c.StartSession(context.Background(), "s1", "Golang工程师", "3")
	require.NoError(t, err)

	assert.Equal(t, types.PhaseActive, session.Phase())
	assert.Len(t, session.Questions, 5)
	assert.Equal(t, fixed, *session.StartTime)
	assert.Equal(t, fixed.Add(time.Hour), *session.EndTime)
	assert.Equal(t, time.Hour, session.Remaining(fixed))
}

func TestStartSessionGeneratorFailureLeavesIdle(t *testing.T) {
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			return "", errors.New("upstream timeout")
		},
	}
	c := newTestController(t, llm, time.Hour)

	_, err := c.StartSession(context.Background(), "s1", "工程师", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGatewayFailure))

	session, err := c.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseIdle, session.Phase())
}

func TestStartSessionOverwritesExisting(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)
	ctx := context.Background()

	first, err := c.StartSession(ctx, "s1", "后端工程师", "5")
	require.NoError(t, err)
	require.NoError(t, c.RecordAnswer(ctx, "s1", first.Questions[0], "旧答案"))

	// 不需要先Reset，重新开始直接覆盖
	second, err := c.StartSession(ctx, "s1", "前端工程师", "2")
	require.NoError(t, err)
	assert.Equal(t, "前端工程师", second.Role)
	assert.Empty(t, second.Answers)
}

func TestRecordAnswerUpsert(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)
	ctx := context.Background()

	session, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)
	q := session.Questions[0]

	require.NoError(t, c.RecordAnswer(ctx, "s1", q, "第一版"))
	require.NoError(t, c.RecordAnswer(ctx, "s1", q, "第二版"))

	loaded, err := c.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "第二版", loaded.Answers[q])
}

func TestSubmitPadsMissingAnswers(t *testing.T) {
	var scoredPrompt string
	var mu sync.Mutex
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			switch {
			case isExtractPrompt(system):
				return questionsJSON(5), nil
			case isScorePrompt(system):
				mu.Lock()
				scoredPrompt = user
				mu.Unlock()
				return "总分 10/25", nil
			default:
				return "自由文本", nil
			}
		},
	}
	c := newTestController(t, llm, time.Hour)
	ctx := context.Background()

	session, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	// 只回答5个问题中的2个
	require.NoError(t, c.RecordAnswer(ctx, "s1", session.Questions[0], "回答一"))
	require.NoError(t, c.RecordAnswer(ctx, "s1", session.Questions[2], "回答三"))

	scored, err := c.Submit(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, types.PhaseScored, scored.Phase())
	assert.Equal(t, "总分 10/25", scored.ResultText)
	assert.Empty(t, scored.Questions)

	// 全部5个问题都进入评分提示，未回答的以空字符串计入
	assert.Len(t, scored.Answers, 5)
	mu.Lock()
	defer mu.Unlock()
	for _, q := range []string{"问题1", "问题2", "问题3", "问题4", "问题5"} {
		assert.Contains(t, scoredPrompt, q)
	}
}

func TestSubmitNotActive(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)

	_, err := c.Submit(context.Background(), "never-started")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotActive))
}

func TestSubmitTwiceReturnsNotActive(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)
	ctx := context.Background()

	_, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	_, err = c.Submit(ctx, "s1")
	require.NoError(t, err)

	_, err = c.Submit(ctx, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotActive))
}

func TestSubmitScorerFailureKeepsActive(t *testing.T) {
	failScoring := true
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			switch {
			case isExtractPrompt(system):
				return questionsJSON(5), nil
			case isScorePrompt(system):
				if failScoring {
					return "", errors.New("rate limited")
				}
				return "总分 15/25", nil
			default:
				return "自由文本", nil
			}
		},
	}
	c := newTestController(t, llm, time.Hour)
	ctx := context.Background()

	_, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	_, err = c.Submit(ctx, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGatewayFailure))

	// 失败后会话保持进行中，可重试
	session, err := c.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseActive, session.Phase())

	failScoring = false
	scored, err := c.Submit(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseScored, scored.Phase())
}

func TestResetReturnsToIdle(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)
	ctx := context.Background()

	_, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	require.NoError(t, c.Reset(ctx, "s1"))

	session, err := c.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseIdle, session.Phase())
	assert.Empty(t, session.Questions)
}

func TestTickRemainingNeverNegative(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)
	ctx := context.Background()

	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	_, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	remaining, phase, err := c.Tick(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseActive, phase)
	assert.Equal(t, time.Hour, remaining)

	// 把时间拨到截止之后很久，剩余时间依然为0而不是负数
	c.now = func() time.Time { return fixed.Add(3 * time.Hour) }
	remaining, phase, err = c.Tick(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), remaining)
	// 到期兜底触发了自动提交
	assert.Equal(t, types.PhaseScored, phase)
}

func TestTickIdleSession(t *testing.T) {
	c := newTestController(t, happyLLM(), time.Hour)

	remaining, phase, err := c.Tick(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), remaining)
	assert.Equal(t, types.PhaseIdle, phase)
}

func TestAutoSubmitFiresExactlyOnce(t *testing.T) {
	var scoreCalls atomic.Int32
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			switch {
			case isExtractPrompt(system):
				return questionsJSON(5), nil
			case isScorePrompt(system):
				scoreCalls.Add(1)
				return "总分 5/25", nil
			default:
				return "自由文本", nil
			}
		},
	}
	c := newTestController(t, llm, 50*time.Millisecond)
	ctx := context.Background()

	_, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	// 等计时器到期后，再并发调用Tick制造竞争
	time.Sleep(150 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.Tick(ctx, "s1")
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		session, err := c.Session(ctx, "s1")
		return err == nil && session.Phase() == types.PhaseScored
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), scoreCalls.Load(), "到期后评分应恰好执行一次")
}

func TestSubmitEmptyScoreResultStillScored(t *testing.T) {
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			switch {
			case isExtractPrompt(system):
				return questionsJSON(5), nil
			case isScorePrompt(system):
				return "", nil
			default:
				return "自由文本", nil
			}
		},
	}
	c := newTestController(t, llm, time.Hour)
	ctx := context.Background()

	_, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	// 模型返回空结果文本不影响终态：评分完成即进入已评分阶段
	scored, err := c.Submit(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseScored, scored.Phase())
	assert.Equal(t, "", scored.ResultText)
	assert.NotNil(t, scored.ScoredAt)

	session, err := c.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.PhaseScored, session.Phase())
}

// resetRacingStore 模拟Tick读到过期会话后、提交前被并发Reset抢先的存储：
// 第一次Load返回已过期的活动会话，之后的Load都返回空闲会话。
type resetRacingStore struct {
	mu      sync.Mutex
	loads   int
	expired *types.InterviewSession
}

func (s *resetRacingStore) Load(ctx context.Context, sessionID string) (*types.InterviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loads == 1 {
		return s.expired, nil
	}
	return types.NewInterviewSession(sessionID), nil
}

func (s *resetRacingStore) Save(ctx context.Context, session *types.InterviewSession) error {
	return nil
}

func (s *resetRacingStore) Delete(ctx context.Context, sessionID string) error {
	return nil
}

func TestTickRaceLostToResetReportsActualPhase(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	start := now.Add(-2 * time.Hour)
	end := now.Add(-time.Hour)

	expired := types.NewInterviewSession("s1")
	expired.Questions = []string{"问题1", "问题2", "问题3", "问题4", "问题5"}
	expired.StartTime = &start
	expired.EndTime = &end

	llm := happyLLM()
	c := NewController(
		&resetRacingStore{expired: expired},
		NewQuestionGenerator(llm),
		NewAnswerScorer(llm),
		time.Hour,
	)
	c.now = func() time.Time { return now }

	// 兜底提交因会话已被重置而失败，Tick必须报告重置后的实际状态，
	// 而不能断言会话已评分
	remaining, phase, err := c.Tick(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), remaining)
	assert.Equal(t, types.PhaseIdle, phase)
}

func TestScorerResultStoredVerbatim(t *testing.T) {
	resultText := "  候选人表现优秀。\n最终得分：23/25  "
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			switch {
			case isExtractPrompt(system):
				return questionsJSON(5), nil
			case isScorePrompt(system):
				return resultText, nil
			default:
				return "自由文本", nil
			}
		},
	}
	c := newTestController(t, llm, time.Hour)
	ctx := context.Background()

	_, err := c.StartSession(ctx, "s1", "工程师", "3")
	require.NoError(t, err)

	scored, err := c.Submit(ctx, "s1")
	require.NoError(t, err)
	// 评分结果不做解析或清洗，原样保存
	assert.Equal(t, resultText, scored.ResultText)
}
