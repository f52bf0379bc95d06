package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhaseDerivation(t *testing.T) {
	session := NewInterviewSession("s1")
	assert.Equal(t, PhaseIdle, session.Phase())

	session.Questions = []string{"q1", "q2", "q3", "q4", "q5"}
	assert.Equal(t, PhaseActive, session.Phase())

	// 评分完成：问题清空、打上评分时间标记
	scoredAt := time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC)
	session.Questions = []string{}
	session.ResultText = "总分 20/25"
	session.ScoredAt = &scoredAt
	assert.Equal(t, PhaseScored, session.Phase())
}

func TestPhaseScoredWithEmptyResultText(t *testing.T) {
	// 评分结果文本允许为空，不影响已评分状态的判定
	scoredAt := time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC)
	session := NewInterviewSession("s1")
	session.ScoredAt = &scoredAt
	session.ResultText = ""
	assert.Equal(t, PhaseScored, session.Phase())
}

func TestRemainingClampedToZero(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := now.Add(30 * time.Second)
	session := NewInterviewSession("s1")
	session.EndTime = &end

	assert.Equal(t, 30*time.Second, session.Remaining(now))
	assert.Equal(t, time.Duration(0), session.Remaining(end))
	assert.Equal(t, time.Duration(0), session.Remaining(end.Add(time.Hour)))
}

func TestRemainingWithoutEndTime(t *testing.T) {
	session := NewInterviewSession("s1")
	assert.Equal(t, time.Duration(0), session.Remaining(time.Now()))
}
