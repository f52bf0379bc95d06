package resume

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"complan-go/internal/logger"
	"complan-go/internal/storage"
	"complan-go/internal/storage/models"
	"complan-go/internal/types"
)

// DocumentStore 简历元数据的持久化接口
type DocumentStore interface {
	SaveResumeDocument(ctx context.Context, doc *models.ResumeDocument) error
}

// Indexer 消费简历生成事件，把元数据写入MySQL供招聘方浏览。
// 消息体解析失败属于不可恢复错误，以 storage.ErrDropMessage 标记，
// 消费者据此丢弃消息而不是重投；存储失败则重投等待重试。
type Indexer struct {
	docs DocumentStore
}

// NewIndexer 创建事件消费处理器
func NewIndexer(docs DocumentStore) *Indexer {
	return &Indexer{docs: docs}
}

// resumeSections 简历章节在JSON列中的存储结构
type resumeSections struct {
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
	Skills     []string `json:"skills"`
	Hobbies    []string `json:"hobbies"`
	Languages  []string `json:"languages"`
}

// HandleMessage 处理一条简历生成事件消息
func (i *Indexer) HandleMessage(ctx context.Context, body []byte) error {
	var message types.ResumeGeneratedMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("%w: 解析简历生成事件失败: %v", storage.ErrDropMessage, err)
	}

	doc, err := buildDocument(message)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDropMessage, err)
	}

	if err := i.docs.SaveResumeDocument(ctx, doc); err != nil {
		return fmt.Errorf("保存简历元数据失败 (uuid: %s): %w", message.SubmissionUUID, err)
	}

	logger.Info().
		Str("submission_uuid", message.SubmissionUUID).
		Str("candidate_email", message.Profile.Email).
		Msg("简历元数据已入库")
	return nil
}

// buildDocument 把事件载荷转换为数据库记录
func buildDocument(message types.ResumeGeneratedMessage) (*models.ResumeDocument, error) {
	sections, err := json.Marshal(resumeSections{
		Education:  message.Profile.Education,
		Experience: message.Profile.Experience,
		Skills:     message.Profile.Skills,
		Hobbies:    message.Profile.Hobbies,
		Languages:  message.Profile.Languages,
	})
	if err != nil {
		return nil, fmt.Errorf("序列化简历章节失败: %w", err)
	}

	stats, err := json.Marshal(message.Stats)
	if err != nil {
		return nil, fmt.Errorf("序列化解题统计失败: %w", err)
	}

	return &models.ResumeDocument{
		SubmissionUUID: message.SubmissionUUID,
		CandidateName:  message.Profile.Name,
		CandidateEmail: message.Profile.Email,
		Phone:          message.Profile.Phone,
		Address:        message.Profile.Address,
		Sections:       datatypes.JSON(sections),
		LeetCodeStats:  datatypes.JSON(stats),
		ObjectKey:      message.ObjectKey,
		GeneratedAt:    message.GeneratedAt,
	}, nil
}
