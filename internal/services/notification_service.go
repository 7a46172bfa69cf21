package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jasonhuang/blog-assistant/internal/models"
	"github.com/jasonhuang/blog-assistant/internal/store"
)

// 通知送达通道
const (
	ChannelWebSocket = "websocket"
	ChannelEmail     = "email"
)

// NotificationService 联系博主的通知分发
// 优先通过WebSocket实时推送给在线的博主，不在线时回退到邮件
type NotificationService struct {
	ws            *WebSocketManager
	redis         *store.RedisStore // 可为nil（Redis不可用时在线状态只看WS连接）
	email         *EmailSender
	bloggerUserID string
}

// NewNotificationService 创建通知服务
func NewNotificationService(ws *WebSocketManager, redis *store.RedisStore, email *EmailSender, bloggerUserID string) *NotificationService {
	return &NotificationService{
		ws:            ws,
		redis:         redis,
		email:         email,
		bloggerUserID: bloggerUserID,
	}
}

// NotifyContact 分发联系博主通知
// 返回实际使用的送达通道；两条通道都不可用时返回错误，由调用方决定
// 如何向用户解释
func (n *NotificationService) NotifyContact(ctx context.Context, userID, sessionID, message, contactMethod string, confidence float64) (string, error) {
	notification := models.ContactNotification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		SessionID:      sessionID,
		Message:        message,
		ContactMethod:  contactMethod,
		Confidence:     confidence,
		CreatedAt:      time.Now(),
	}

	// 优先WebSocket实时推送
	wsMsg := models.WebSocketMessage{
		Type:      models.WSTypeContact,
		Data:      notification,
		UserID:    n.bloggerUserID,
		Timestamp: notification.CreatedAt,
	}
	if err := n.ws.SendToUser(n.bloggerUserID, wsMsg); err == nil {
		log.Printf("[通知服务] 联系通知已实时推送给博主, notificationId=%s", notification.NotificationID)
		return ChannelWebSocket, nil
	}

	// 博主不在线，邮件兜底
	if n.email != nil && n.email.Configured() {
		subject := "博客系统联系通知"
		body := fmt.Sprintf("用户 %s 希望联系您。\n\n消息内容: %s\n期望联系方式: %s\n识别置信度: %.2f\n时间: %s",
			userID, message, orUnspecified(contactMethod), confidence,
			notification.CreatedAt.Format("2006-01-02 15:04:05"))
		if err := n.email.Send(subject, body, ""); err != nil {
			return "", fmt.Errorf("博主不在线且邮件通知失败: %w", err)
		}
		log.Printf("[通知服务] 博主不在线，联系通知已通过邮件送达, notificationId=%s", notification.NotificationID)
		return ChannelEmail, nil
	}

	return "", fmt.Errorf("博主不在线且未配置邮件通知")
}

// ManualBroadcast 手动向所有在线用户广播系统通知，返回送达连接数
func (n *NotificationService) ManualBroadcast(message string) int {
	delivered := n.ws.Broadcast(models.WebSocketMessage{
		Type:      models.WSTypeNotification,
		Data:      message,
		Timestamp: time.Now(),
	})
	log.Printf("[通知服务] 手动广播送达 %d 个连接", delivered)
	return delivered
}

// BloggerOnline 博主当前是否可实时触达
func (n *NotificationService) BloggerOnline() bool {
	return n.ws.IsOnline(n.bloggerUserID)
}

// OnlineUserCount 在线用户数（Redis在线集合优先，不可用时退化为WS连接数）
func (n *NotificationService) OnlineUserCount(ctx context.Context) int {
	if n.redis != nil {
		if users, err := n.redis.GetOnlineUsers(ctx); err == nil {
			return len(users)
		}
	}
	return n.ws.Count()
}

func orUnspecified(s string) string {
	if s == "" {
		return "未指定"
	}
	return s
}
