package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"complan-go/internal/config"
	applog "complan-go/internal/logger"
	"complan-go/internal/storage/models"
)

// MySQL 包装GORM数据库连接
type MySQL struct {
	db     *gorm.DB
	config *config.MySQLConfig
}

// NewMySQL 创建MySQL连接并完成表结构迁移
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mysql config cannot be nil")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.ConnectTimeoutSeconds,
		cfg.ReadTimeoutSeconds,
		cfg.WriteTimeoutSeconds,
	)

	logLevel := gormlogger.LogLevel(cfg.LogLevel)
	if logLevel < gormlogger.Silent || logLevel > gormlogger.Info {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层数据库连接失败: %w", err)
	}

	// 连接池设置
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	if err := db.AutoMigrate(&models.ResumeDocument{}); err != nil {
		return nil, fmt.Errorf("迁移表结构失败: %w", err)
	}

	applog.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Msg("MySQL连接已建立")

	return &MySQL{
		db:     db,
		config: cfg,
	}, nil
}

// DB 返回底层GORM连接
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveResumeDocument 保存一条简历元数据记录。
// 按SubmissionUUID幂等：消息重投时更新已有记录而不是报错。
func (m *MySQL) SaveResumeDocument(ctx context.Context, doc *models.ResumeDocument) error {
	var existing models.ResumeDocument
	err := m.db.WithContext(ctx).
		Where("submission_uuid = ?", doc.SubmissionUUID).
		First(&existing).Error

	if err == nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		return m.db.WithContext(ctx).Save(doc).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询简历记录失败: %w", err)
	}

	return m.db.WithContext(ctx).Create(doc).Error
}

// ListResumeDocuments 返回招聘方浏览用的简历列表。
// 同一邮箱多次提交时只保留最新一条，按生成时间倒序排列。
func (m *MySQL) ListResumeDocuments(ctx context.Context, limit int) ([]models.ResumeDocument, error) {
	if limit <= 0 {
		limit = 100
	}

	// 先取每个邮箱的最新生成时间，再关联回原表
	sub := m.db.WithContext(ctx).
		Model(&models.ResumeDocument{}).
		Select("candidate_email, MAX(generated_at) AS max_generated_at").
		Group("candidate_email")

	var docs []models.ResumeDocument
	err := m.db.WithContext(ctx).
		Model(&models.ResumeDocument{}).
		Joins("JOIN (?) latest ON resume_documents.candidate_email = latest.candidate_email AND resume_documents.generated_at = latest.max_generated_at", sub).
		Order("resume_documents.generated_at DESC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("查询简历列表失败: %w", err)
	}
	return docs, nil
}
