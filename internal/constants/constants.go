package constants

// Redis键前缀
const (
	// InterviewSessionKeyPrefix 面试会话键前缀，后接会话ID
	InterviewSessionKeyPrefix = "interview:session:"
)

// HTTP头
const (
	// SessionIDHeader 携带会话ID的请求头；缺失时由服务端生成并回传
	SessionIDHeader = "X-Session-ID"
	// RecruiterAPIKeyHeader 招聘方接口的API Key请求头
	RecruiterAPIKeyHeader = "X-API-Key"
)

// 简历产物
const (
	// ResumeObjectKeyFormat MinIO对象键格式，确定性命名：resumes/<submission-uuid>.pdf
	ResumeObjectKeyFormat = "resumes/%s.pdf"
	// ResumeDownloadFilename 下载时的文件名
	ResumeDownloadFilename = "resume.pdf"
)
