package types

import (
	"time"
)

// SessionPhase 表示一轮面试会话的生命周期阶段
type SessionPhase string

const (
	// PhaseIdle 空闲：尚未生成问题
	PhaseIdle SessionPhase = "IDLE"
	// PhaseActive 进行中：问题已生成，计时器运行中
	PhaseActive SessionPhase = "ACTIVE"
	// PhaseScored 已评分：评分结果已生成，问题已清空
	PhaseScored SessionPhase = "SCORED"
)

// QuestionCount 一轮面试的固定问题数量。
// 生成结果不等于该数量视为失败，会话保持空闲状态。
const QuestionCount = 5

// InterviewSession 一个用户会话的面试状态。
// 不变式：Questions 要么为空，要么恰好包含 QuestionCount 个问题；
// EndTime = StartTime + TimeLimit，在生成成功时计算一次，之后不再重算。
type InterviewSession struct {
	SessionID       string            `json:"session_id"`
	Role            string            `json:"role"`
	YearsExperience string            `json:"years_experience"`
	Questions       []string          `json:"questions"`
	Answers         map[string]string `json:"answers"`
	StartTime       *time.Time        `json:"start_time,omitempty"`
	EndTime         *time.Time        `json:"end_time,omitempty"`
	ScoredAt        *time.Time        `json:"scored_at,omitempty"`
	TimeLimitSecs   int               `json:"time_limit_secs"`
	ResultText      string            `json:"result_text"`
}

// NewInterviewSession 创建一个空闲状态的会话
func NewInterviewSession(sessionID string) *InterviewSession {
	return &InterviewSession{
		SessionID: sessionID,
		Questions: []string{},
		Answers:   map[string]string{},
	}
}

// Phase 根据字段推导当前阶段，避免单独维护一个可能漂移的状态字段。
// 已评分以 ScoredAt 标记判定：评分结果文本允许为空，不能作为状态依据。
func (s *InterviewSession) Phase() SessionPhase {
	if len(s.Questions) == QuestionCount {
		return PhaseActive
	}
	if s.ScoredAt != nil {
		return PhaseScored
	}
	return PhaseIdle
}

// Remaining 计算剩余时间，永远不返回负值
func (s *InterviewSession) Remaining(now time.Time) time.Duration {
	if s.EndTime == nil {
		return 0
	}
	remaining := s.EndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResumeProfile 简历生成的输入字段。
// 个人信息为扁平字符串，各章节为有序字符串列表。
type ResumeProfile struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	Education        []string `json:"education"`
	Experience       []string `json:"experience"`
	Skills           []string `json:"skills"`
	Hobbies          []string `json:"hobbies"`
	Languages        []string `json:"languages"`
	LeetCodeUsername string   `json:"leetcode_username"`
}

// LeetCodeStats 从统计接口获取的计数器记录。
// Available 为 false 时所有计数器展示为 "N/A"。
type LeetCodeStats struct {
	Available    bool `json:"available"`
	TotalSolved  int  `json:"totalSolved"`
	EasySolved   int  `json:"easySolved"`
	TotalEasy    int  `json:"totalEasy"`
	MediumSolved int  `json:"mediumSolved"`
	TotalMedium  int  `json:"totalMedium"`
	HardSolved   int  `json:"hardSolved"`
	TotalHard    int  `json:"totalHard"`
}

// Course 课程搜索结果中的一条课程记录
type Course struct {
	Title          string  `json:"title"`
	Headline       string  `json:"headline"`
	URL            string  `json:"url"`
	NumSubscribers int     `json:"num_subscribers"`
	AvgRating      float64 `json:"avg_rating"`
	Price          string  `json:"price"`
}

// ResumeGeneratedMessage 简历生成完成后发布到消息队列的事件载荷，
// 由消费者写入MySQL供招聘方浏览。
type ResumeGeneratedMessage struct {
	SubmissionUUID string        `json:"submission_uuid"`
	Profile        ResumeProfile `json:"profile"`
	Stats          LeetCodeStats `json:"stats"`
	ObjectKey      string        `json:"object_key"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
