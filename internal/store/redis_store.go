package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

const (
	onlineUsersKey = "online_users"
	sessionKeyFmt  = "session:%s"
	userInfoKeyFmt = "user_info:%s"
)

// RedisStore 基于Redis的会话历史与在线用户存储
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // 会话存活时间
}

// NewRedisStore 创建Redis存储并验证连通性
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	log.Printf("[Redis存储] 成功连接到Redis服务器: %s", addr)
	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf(sessionKeyFmt, sessionID)
}

// LoadSession 加载会话，不存在时返回空会话
func (r *RedisStore) LoadSession(ctx context.Context, sessionID string) (*models.SessionData, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now()
		return &models.SessionData{
			SessionID:    sessionID,
			Messages:     []models.ChatMessage{},
			StartedAt:    now,
			LastActivity: now,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("从Redis加载会话失败: %w", err)
	}

	var session models.SessionData
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("解析会话数据失败: %w", err)
	}
	return &session, nil
}

// SaveMessage 向会话追加一条消息并刷新TTL
func (r *RedisStore) SaveMessage(ctx context.Context, sessionID, userID string, msg models.ChatMessage) error {
	session, err := r.LoadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.UserID == "" {
		session.UserID = userID
	}
	session.Messages = append(session.Messages, msg)
	session.LastActivity = time.Now()

	return r.saveSession(ctx, session)
}

func (r *RedisStore) saveSession(ctx context.Context, session *models.SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("保存会话到Redis失败: %w", err)
	}
	return nil
}

// GetMessages 读取会话的全部消息
func (r *RedisStore) GetMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	session, err := r.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// ClearSession 删除会话
func (r *RedisStore) ClearSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return nil
}

// UserLogin 记录用户上线
// 在线状态以带TTL的user_info键为准，进程崩溃未走登出流程时状态随TTL
// 自动过期；online_users集合仅作枚举索引，读取时按user_info键存活情况
// 清理过期成员
func (r *RedisStore) UserLogin(ctx context.Context, user models.OnlineUser) error {
	if err := r.client.SAdd(ctx, onlineUsersKey, user.UserID).Err(); err != nil {
		return fmt.Errorf("记录在线用户失败: %w", err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("序列化用户信息失败: %w", err)
	}
	key := fmt.Sprintf(userInfoKeyFmt, user.UserID)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("保存用户信息失败: %w", err)
	}
	return nil
}

// RefreshPresence 刷新用户在线状态的TTL（心跳路径调用）
func (r *RedisStore) RefreshPresence(ctx context.Context, userID string) error {
	key := fmt.Sprintf(userInfoKeyFmt, userID)
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("刷新在线状态失败: %w", err)
	}
	return nil
}

// UserLogout 记录用户下线
func (r *RedisStore) UserLogout(ctx context.Context, userID string) error {
	if err := r.client.SRem(ctx, onlineUsersKey, userID).Err(); err != nil {
		return fmt.Errorf("移除在线用户失败: %w", err)
	}
	r.client.Del(ctx, fmt.Sprintf(userInfoKeyFmt, userID))
	return nil
}

// GetOnlineUsers 获取当前在线用户ID列表
// user_info键已过期的成员视为离线，顺手从集合中剔除
func (r *RedisStore) GetOnlineUsers(ctx context.Context) ([]string, error) {
	members, err := r.client.SMembers(ctx, onlineUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取在线用户失败: %w", err)
	}

	online := make([]string, 0, len(members))
	for _, userID := range members {
		exists, err := r.client.Exists(ctx, fmt.Sprintf(userInfoKeyFmt, userID)).Result()
		if err != nil {
			return nil, fmt.Errorf("查询用户在线状态失败: %w", err)
		}
		if exists > 0 {
			online = append(online, userID)
		} else {
			r.client.SRem(ctx, onlineUsersKey, userID)
		}
	}
	return online, nil
}

// IsUserOnline 判断用户是否在线（以带TTL的user_info键为准）
func (r *RedisStore) IsUserOnline(ctx context.Context, userID string) (bool, error) {
	exists, err := r.client.Exists(ctx, fmt.Sprintf(userInfoKeyFmt, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("查询用户在线状态失败: %w", err)
	}
	if exists == 0 {
		r.client.SRem(ctx, onlineUsersKey, userID)
		return false, nil
	}
	return true, nil
}

// Ping 健康检查
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close 关闭Redis连接
func (r *RedisStore) Close() error {
	return r.client.Close()
}
