package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQuestionsReturnsFiveQuestions(t *testing.T) {
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			if isExtractPrompt(system) {
				return questionsJSON(5), nil
			}
			return "这里是五个面试问题的自由文本描述", nil
		},
	}
	generator := NewQuestionGenerator(llm)

	questions, err := generator.GenerateQuestions(context.Background(), "s1", "Golang工程师", "3")
	require.NoError(t, err)
	require.Len(t, questions, 5)
	assert.Equal(t, "问题1", questions[0])
}

func TestGenerateQuestionsCountMismatch(t *testing.T) {
	for _, count := range []int{3, 4, 6} {
		llm := &fakeChatModel{
			respond: func(system, user string) (string, error) {
				if isExtractPrompt(system) {
					return questionsJSON(count), nil
				}
				return "自由文本", nil
			},
		}
		generator := NewQuestionGenerator(llm)

		questions, err := generator.GenerateQuestions(context.Background(), "s1", "测试工程师", "2")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrQuestionCountMismatch), "数量为%d时应返回数量不符错误", count)
		assert.Nil(t, questions)
	}
}

func TestGenerateQuestionsEmptyEntriesNotCounted(t *testing.T) {
	// 包含空字符串的列表：有效问题只有4个，应判定为数量不符
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			if isExtractPrompt(system) {
				return `{"questions": ["q1", "", "q2", "q3", "q4"]}`, nil
			}
			return "自由文本", nil
		},
	}
	generator := NewQuestionGenerator(llm)

	_, err := generator.GenerateQuestions(context.Background(), "s1", "工程师", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuestionCountMismatch))
}

func TestGenerateQuestionsGatewayFailure(t *testing.T) {
	llm := &fakeChatModel{
		respond: func(system, user string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	generator := NewQuestionGenerator(llm)

	_, err := generator.GenerateQuestions(context.Background(), "s1", "工程师", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGatewayFailure))

	var sessionErr *SessionError
	require.True(t, errors.As(err, &sessionErr))
	assert.Equal(t, "s1", sessionErr.SessionID)
	assert.Contains(t, sessionErr.Detail, "connection refused")
}

func TestParseQuestionsFromFencedJSON(t *testing.T) {
	response := "以下是抽取结果：\n```json\n{\"questions\": [\"a\", \"b\"]}\n```\n完毕"
	questions, err := parseQuestions(response)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, questions)
}

func TestParseQuestionsFromBareJSON(t *testing.T) {
	response := `前缀文字 {"questions": ["x", "y", "z"]} 后缀文字`
	questions, err := parseQuestions(response)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, questions)
}

func TestParseQuestionsNoJSON(t *testing.T) {
	_, err := parseQuestions("这段文本里没有任何JSON")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "JSON"))
}

func TestExtractJSONNestedBraces(t *testing.T) {
	text := `{"outer": {"inner": 1}, "questions": []} tail`
	result := extractJSON(text)
	assert.Equal(t, `{"outer": {"inner": 1}, "questions": []}`, result)
}
