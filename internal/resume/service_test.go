package resume

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complan-go/internal/types"
)

// fakeStats 固定返回一份统计记录
type fakeStats struct {
	stats types.LeetCodeStats
}

func (f *fakeStats) FetchStats(ctx context.Context, username string) types.LeetCodeStats {
	return f.stats
}

// memObjectStore 内存对象存储
type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failUp  bool
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (m *memObjectStore) UploadResumePDF(ctx context.Context, objectKey string, data []byte) error {
	if m.failUp {
		return errors.New("upload refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = data
	return nil
}

func (m *memObjectStore) DownloadResumePDF(ctx context.Context, objectKey string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

// fakePublisher 记录发布的事件，可配置为失败
type fakePublisher struct {
	mu       sync.Mutex
	messages []types.ResumeGeneratedMessage
	fail     bool
}

func (f *fakePublisher) PublishResumeGenerated(ctx context.Context, message types.ResumeGeneratedMessage) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func validProfile() types.ResumeProfile {
	return types.ResumeProfile{
		Name:             "张三",
		Email:            "zhangsan@example.com",
		Phone:            "13800000000",
		Address:          "上海市浦东新区",
		Education:        []string{"2018-2022 计算机科学学士"},
		Experience:       []string{"2022-至今 后端工程师"},
		Skills:           []string{"Go", "MySQL", "Redis"},
		Hobbies:          []string{"羽毛球"},
		Languages:        []string{"中文", "English"},
		LeetCodeUsername: "zhangsan",
	}
}

func TestGenerateProducesPDFAndEvent(t *testing.T) {
	stats := types.LeetCodeStats{Available: true, TotalSolved: 100, EasySolved: 50, TotalEasy: 800}
	objects := newMemObjectStore()
	publisher := &fakePublisher{}
	service := NewService(&fakeStats{stats: stats}, objects, publisher)

	submissionUUID, gotStats, err := service.Generate(context.Background(), validProfile())
	require.NoError(t, err)
	require.NotEmpty(t, submissionUUID)
	assert.Equal(t, stats, gotStats)

	// PDF已上传到 resumes/<uuid>.pdf
	data, err := objects.DownloadResumePDF(context.Background(), "resumes/"+submissionUUID+".pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "上传内容应是PDF文档")

	// 事件已发布且载荷完整
	require.Len(t, publisher.messages, 1)
	message := publisher.messages[0]
	assert.Equal(t, submissionUUID, message.SubmissionUUID)
	assert.Equal(t, "zhangsan@example.com", message.Profile.Email)
	assert.Equal(t, "resumes/"+submissionUUID+".pdf", message.ObjectKey)
	assert.False(t, message.GeneratedAt.IsZero())
}

func TestGenerateMissingFields(t *testing.T) {
	service := NewService(&fakeStats{}, newMemObjectStore(), nil)

	profile := validProfile()
	profile.Email = ""
	profile.Skills = nil

	_, _, err := service.Generate(context.Background(), profile)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFields))
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "skills")
}

func TestGenerateWhitespaceOnlyFieldIsMissing(t *testing.T) {
	service := NewService(&fakeStats{}, newMemObjectStore(), nil)

	profile := validProfile()
	profile.Name = "   "

	_, _, err := service.Generate(context.Background(), profile)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFields))
	assert.Contains(t, err.Error(), "name")
}

func TestGeneratePublishFailureIsSoft(t *testing.T) {
	objects := newMemObjectStore()
	publisher := &fakePublisher{fail: true}
	service := NewService(&fakeStats{}, objects, publisher)

	// 发布失败不影响生成结果
	submissionUUID, _, err := service.Generate(context.Background(), validProfile())
	require.NoError(t, err)
	assert.NotEmpty(t, submissionUUID)
}

func TestGenerateUploadFailure(t *testing.T) {
	objects := newMemObjectStore()
	objects.failUp = true
	service := NewService(&fakeStats{}, objects, nil)

	_, _, err := service.Generate(context.Background(), validProfile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "上传简历PDF失败")
}

func TestGenerateStatsUnavailableStillSucceeds(t *testing.T) {
	objects := newMemObjectStore()
	service := NewService(&fakeStats{stats: types.LeetCodeStats{Available: false}}, objects, nil)

	submissionUUID, stats, err := service.Generate(context.Background(), validProfile())
	require.NoError(t, err)
	assert.NotEmpty(t, submissionUUID)
	assert.False(t, stats.Available)
}

func TestDownloadRejectsInvalidUUID(t *testing.T) {
	service := NewService(&fakeStats{}, newMemObjectStore(), nil)

	_, err := service.Download(context.Background(), "../../etc/passwd")
	require.Error(t, err)
}

func TestDownloadRoundTrip(t *testing.T) {
	objects := newMemObjectStore()
	service := NewService(&fakeStats{}, objects, nil)

	submissionUUID, _, err := service.Generate(context.Background(), validProfile())
	require.NoError(t, err)

	data, err := service.Download(context.Background(), submissionUUID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
