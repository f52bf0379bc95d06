package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"complan-go/internal/config"
	"complan-go/internal/constants"
	"complan-go/internal/types"
)

// ErrNotFound key在Redis中不存在，对底层redis.Nil的抽象
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("complan-go/storage/redis")

// Redis 包装Redis客户端
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子，记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close 关闭Redis客户端连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping 检查Redis连接
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// RedisSessionStore 基于Redis的面试会话存储。
// 会话序列化为JSON字符串存储，key为 interview:session:<session_id>，
// 每次写入都刷新TTL。
type RedisSessionStore struct {
	redis *Redis
	ttl   time.Duration
}

// NewRedisSessionStore 创建面试会话存储，ttl<=0时默认2小时
func NewRedisSessionStore(r *Redis, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisSessionStore{
		redis: r,
		ttl:   ttl,
	}
}

// sessionKey 构造会话在Redis中的key
func (s *RedisSessionStore) sessionKey(sessionID string) string {
	return constants.InterviewSessionKeyPrefix + sessionID
}

// Load 加载会话。key不存在时返回一个全新的空闲会话而不是错误。
func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*types.InterviewSession, error) {
	ctx, span := redisTracer.Start(ctx, "RedisSessionStore.Load",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	key := s.sessionKey(sessionID)
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "GET"),
		attribute.String("db.redis.key", key),
	)

	data, err := s.redis.Client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			span.SetStatus(codes.Ok, "key not found")
			return types.NewInterviewSession(sessionID), nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("加载面试会话失败: %w", err)
	}

	var session types.InterviewSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("反序列化面试会话失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return &session, nil
}

// Save 保存会话并刷新TTL
func (s *RedisSessionStore) Save(ctx context.Context, session *types.InterviewSession) error {
	ctx, span := redisTracer.Start(ctx, "RedisSessionStore.Save",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	key := s.sessionKey(session.SessionID)
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "SET"),
		attribute.String("db.redis.key", key),
	)

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("序列化面试会话失败: %w", err)
	}

	if err := s.redis.Client.Set(ctx, key, string(data), s.ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("保存面试会话失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete 删除会话，key不存在时静默成功
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	key := s.sessionKey(sessionID)
	if err := s.redis.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("删除面试会话失败: %w", err)
	}
	return nil
}
