package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"complan-go/internal/logger"
	"complan-go/internal/types"
)

// QuestionGenerator 使用LLM生成并抽取面试问题。
// 生成分两步顺序调用：第一步产出自由文本的问题描述，
// 第二步从该文本中抽取结构化的问题列表（必须恰好5个）。
type QuestionGenerator struct {
	llmModel model.ToolCallingChatModel
}

// NewQuestionGenerator 创建新的问题生成器
func NewQuestionGenerator(llmModel model.ToolCallingChatModel) *QuestionGenerator {
	return &QuestionGenerator{llmModel: llmModel}
}

// extractedQuestions LLM抽取步骤的结构化输出
type extractedQuestions struct {
	Questions []string `json:"questions"`
}

const generateSystemPrompt = `You are an intelligent competency diagnostic system. Ask a series of questions to the job seeker to test their competence, and based on their scores, recommend jobs to them.`

const extractSystemPrompt = `You are an intelligent information extractor. Extract the set of questions from the given context to test the competence of the job seeker.
Output a single JSON object in the following format, with no explanatory text and no Markdown markers:
{"questions": ["question 1", "question 2", "question 3", "question 4", "question 5"]}`

// GenerateQuestions 为给定岗位和工作年限生成恰好5个面试问题。
// 任一网关调用失败、或抽取结果数量不等于5，均返回错误且不产生部分结果。
func (g *QuestionGenerator) GenerateQuestions(ctx context.Context, sessionID, role, yearsExperience string) ([]string, error) {
	// 第一步：生成自由文本的问题描述
	generatePrompt := fmt.Sprintf(
		"Assume the given job seeker is a %s with %s years of experience. Generate a set of %d questions to test their competence.",
		role, yearsExperience, types.QuestionCount,
	)

	freeText, err := g.callLLM(ctx, generateSystemPrompt, generatePrompt)
	if err != nil {
		return nil, newGatewayError(sessionID, "generate", err.Error())
	}

	// 第二步：从自由文本中抽取结构化问题列表
	extractPrompt := fmt.Sprintf(
		"Here is the context: %s\nExtract the set of questions from the given context to test the competence of the job seeker.",
		freeText,
	)

	response, err := g.callLLM(ctx, extractSystemPrompt, extractPrompt)
	if err != nil {
		return nil, newGatewayError(sessionID, "extract", err.Error())
	}

	questions, err := parseQuestions(response)
	if err != nil {
		return nil, newGatewayError(sessionID, "extract", err.Error())
	}

	// 数量检查是硬性前置条件：不截断、不填充
	if len(questions) != types.QuestionCount {
		logger.Warn().
			Str("session_id", sessionID).
			Int("got", len(questions)).
			Msg("LLM抽取的问题数量不符合要求")
		return nil, newCountMismatchError(sessionID, len(questions))
	}

	return questions, nil
}

// callLLM 发起一次LLM调用并返回文本内容
func (g *QuestionGenerator) callLLM(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []*einoschema.Message{
		einoschema.SystemMessage(systemPrompt),
		einoschema.UserMessage(userPrompt),
	}

	response, err := g.llmModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM调用失败: %w", err)
	}
	return response.Content, nil
}

// parseQuestions 解析LLM抽取响应
func parseQuestions(response string) ([]string, error) {
	// 提取JSON部分（防止LLM返回的不是纯JSON）
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("无法从LLM响应中提取有效的JSON")
	}

	var result extractedQuestions
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %w", err)
	}

	// 去掉空问题，空字符串不算有效问题
	questions := make([]string, 0, len(result.Questions))
	for _, q := range result.Questions {
		q = strings.TrimSpace(q)
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// extractJSON 从文本中提取JSON
func extractJSON(text string) string {
	// 尝试使用正则表达式提取 ```json ... ``` 代码块中的内容
	re := regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 如果正则没有匹配到，尝试寻找 JSON 的开始和结束位置作为回退
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	level := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			level++
		} else if text[i] == '}' {
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}
