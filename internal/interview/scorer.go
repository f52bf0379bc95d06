package interview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"complan-go/internal/types"
)

// AnswerScorer 使用LLM对一轮面试的回答进行评分。
// 每个问题5分，满分25分；评分结果为自由文本，原样保存。
type AnswerScorer struct {
	llmModel model.ToolCallingChatModel
}

// NewAnswerScorer 创建新的评分器
func NewAnswerScorer(llmModel model.ToolCallingChatModel) *AnswerScorer {
	return &AnswerScorer{llmModel: llmModel}
}

const scoreSystemPrompt = `You are an intelligent competency diagnostic system. You are required to calculate the score of the job seeker based on their answers to the questions based on their job role and work experience.`

// Score 对回答集合进行评分，返回评分结果文本
func (s *AnswerScorer) Score(ctx context.Context, sessionID, role, yearsExperience string, answers map[string]string) (string, error) {
	// 序列化回答，保证提示内容可复现
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("序列化回答失败: %w", err)
	}

	userPrompt := fmt.Sprintf(
		"Assume the given job seeker is a %s with %s years of experience. Calculate the score of the job seeker based on their answers to the questions. Here is the set of answers provided by the job seeker for each question: %s. Each question can be scored out of 5 points, leading to a maximum possible score of 25 points as only a set of %d questions and answers are provided.",
		role, yearsExperience, string(answersJSON), types.QuestionCount,
	)

	messages := []*einoschema.Message{
		einoschema.SystemMessage(scoreSystemPrompt),
		einoschema.UserMessage(userPrompt),
	}

	response, err := s.llmModel.Generate(ctx, messages)
	if err != nil {
		return "", newGatewayError(sessionID, "score", err.Error())
	}

	return response.Content, nil
}
