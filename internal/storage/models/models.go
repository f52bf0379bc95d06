package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResumeDocument 简历提交的元数据记录，由消息消费者写入，
// 供招聘方浏览接口查询。PDF本体在MinIO，这里只存对象键。
type ResumeDocument struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"`
	SubmissionUUID string         `gorm:"type:varchar(36);uniqueIndex;not null;comment:提交UUID"`
	CandidateName  string         `gorm:"type:varchar(255);not null;comment:求职者姓名"`
	CandidateEmail string         `gorm:"type:varchar(255);index;not null;comment:求职者邮箱"`
	Phone          string         `gorm:"type:varchar(64);comment:联系电话"`
	Address        string         `gorm:"type:varchar(512);comment:联系地址"`
	Sections       datatypes.JSON `gorm:"type:json;comment:简历章节(教育/经历/技能/爱好/语言)"`
	LeetCodeStats  datatypes.JSON `gorm:"type:json;comment:解题统计快照"`
	ObjectKey      string         `gorm:"type:varchar(512);not null;comment:MinIO对象键"`
	GeneratedAt    time.Time      `gorm:"index;comment:生成时间"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (ResumeDocument) TableName() string {
	return "resume_documents"
}
