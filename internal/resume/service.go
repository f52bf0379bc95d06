package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"complan-go/internal/constants"
	"complan-go/internal/logger"
	"complan-go/internal/types"
)

// ErrMissingFields 必填字段缺失，Detail中列出缺失的字段名
var ErrMissingFields = errors.New("简历必填字段缺失")

// ObjectStore 简历PDF产物的对象存储接口
type ObjectStore interface {
	UploadResumePDF(ctx context.Context, objectKey string, data []byte) error
	DownloadResumePDF(ctx context.Context, objectKey string) ([]byte, error)
}

// EventPublisher 简历生成事件的发布接口
type EventPublisher interface {
	PublishResumeGenerated(ctx context.Context, message types.ResumeGeneratedMessage) error
}

// StatsFetcher 解题统计查询接口
type StatsFetcher interface {
	FetchStats(ctx context.Context, username string) types.LeetCodeStats
}

// Service 简历生成服务：校验输入、拉取解题统计、渲染PDF、
// 上传对象存储并发布生成事件。
type Service struct {
	stats     StatsFetcher
	objects   ObjectStore
	publisher EventPublisher
}

// NewService 创建简历生成服务。publisher可以为nil，表示不发布事件。
func NewService(stats StatsFetcher, objects ObjectStore, publisher EventPublisher) *Service {
	return &Service{
		stats:     stats,
		objects:   objects,
		publisher: publisher,
	}
}

// Generate 执行一次完整的简历生成，返回本次提交的UUID和使用的统计记录。
// 任何必填字段为空时返回 ErrMissingFields，不产生任何副作用；
// 统计不可用不算失败；事件发布失败只记日志，生成结果仍然有效。
func (s *Service) Generate(ctx context.Context, profile types.ResumeProfile) (string, types.LeetCodeStats, error) {
	if err := validateProfile(profile); err != nil {
		return "", types.LeetCodeStats{}, err
	}

	stats := s.stats.FetchStats(ctx, profile.LeetCodeUsername)

	pdfBytes, err := RenderPDF(profile, stats)
	if err != nil {
		return "", stats, err
	}

	submissionUUID, err := uuid.NewV7()
	if err != nil {
		return "", stats, fmt.Errorf("生成提交UUID失败: %w", err)
	}

	objectKey := fmt.Sprintf(constants.ResumeObjectKeyFormat, submissionUUID.String())
	if err := s.objects.UploadResumePDF(ctx, objectKey, pdfBytes); err != nil {
		return "", stats, fmt.Errorf("上传简历PDF失败: %w", err)
	}

	logger.Info().
		Str("submission_uuid", submissionUUID.String()).
		Str("object_key", objectKey).
		Int("pdf_bytes", len(pdfBytes)).
		Msg("简历PDF已生成并上传")

	if s.publisher != nil {
		message := types.ResumeGeneratedMessage{
			SubmissionUUID: submissionUUID.String(),
			Profile:        profile,
			Stats:          stats,
			ObjectKey:      objectKey,
			GeneratedAt:    time.Now(),
		}
		if err := s.publisher.PublishResumeGenerated(ctx, message); err != nil {
			// 发布失败不影响本次生成，招聘方列表会缺这条记录
			logger.Error().Err(err).
				Str("submission_uuid", submissionUUID.String()).
				Msg("发布简历生成事件失败")
		}
	}

	return submissionUUID.String(), stats, nil
}

// Download 按提交UUID取回PDF字节
func (s *Service) Download(ctx context.Context, submissionUUID string) ([]byte, error) {
	if _, err := uuid.FromString(submissionUUID); err != nil {
		return nil, fmt.Errorf("无效的提交UUID %q: %w", submissionUUID, err)
	}
	objectKey := fmt.Sprintf(constants.ResumeObjectKeyFormat, submissionUUID)
	return s.objects.DownloadResumePDF(ctx, objectKey)
}

// validateProfile 校验全部必填字段，缺失字段聚合在一条错误里返回
func validateProfile(profile types.ResumeProfile) error {
	var missing []string

	checkStr := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	checkList := func(name string, values []string) {
		if len(values) == 0 {
			missing = append(missing, name)
		}
	}

	checkStr("name", profile.Name)
	checkStr("email", profile.Email)
	checkStr("phone", profile.Phone)
	checkStr("address", profile.Address)
	checkList("education", profile.Education)
	checkList("experience", profile.Experience)
	checkList("skills", profile.Skills)
	checkList("hobbies", profile.Hobbies)
	checkList("languages", profile.Languages)
	checkStr("leetcode_username", profile.LeetCodeUsername)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}
