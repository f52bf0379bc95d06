package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

// fakeChatModel 测试用的脚本化聊天模型。
// respond 按系统提示词和用户提示词决定返回内容。
type fakeChatModel struct {
	respond func(systemPrompt, userPrompt string) (string, error)
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*einoschema.Message, opts ...model.Option) (*einoschema.Message, error) {
	var system, user string
	for _, m := range input {
		switch m.Role {
		case einoschema.System:
			system = m.Content
		case einoschema.User:
			user = m.Content
		}
	}
	content, err := f.respond(system, user)
	if err != nil {
		return nil, err
	}
	return &einoschema.Message{Role: einoschema.Assistant, Content: content}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*einoschema.Message, opts ...model.Option) (*einoschema.StreamReader[*einoschema.Message], error) {
	return nil, errors.New("stream not supported in fake model")
}

func (f *fakeChatModel) WithTools(tools []*einoschema.ToolInfo) (model.ToolCallingChatModel, error) {
	return f, nil
}

var _ model.ToolCallingChatModel = (*fakeChatModel)(nil)

// questionsJSON 构造抽取步骤的标准JSON响应
func questionsJSON(n int) string {
	questions := make([]string, n)
	for i := range questions {
		questions[i] = fmt.Sprintf("问题%d", i+1)
	}
	data, _ := json.Marshal(map[string][]string{"questions": questions})
	return string(data)
}

// isScorePrompt 判断是否为评分调用
func isScorePrompt(systemPrompt string) bool {
	return systemPrompt == scoreSystemPrompt
}

// isExtractPrompt 判断是否为抽取调用
func isExtractPrompt(systemPrompt string) bool {
	return systemPrompt == extractSystemPrompt
}
