package models

import "time"

// WebSocket消息类型
const (
	WSTypeDialogue     = "dialogue"     // 普通对话消息
	WSTypeAnswer       = "answer"       // 助手回答
	WSTypeContact      = "contact"      // 联系博主通知
	WSTypeNotification = "notification" // 系统广播通知
	WSTypeHeartbeat    = "heartbeat"    // 心跳
	WSTypeError        = "error"        // 错误
)

// WebSocketMessage WebSocket消息
type WebSocketMessage struct {
	Type      string      `json:"type"`             // 消息类型：dialogue, contact, heartbeat等
	Data      interface{} `json:"data"`             // 消息数据
	UserID    string      `json:"userId,omitempty"` // 用户ID
	Timestamp time.Time   `json:"timestamp"`        // 时间戳
}

// ContactNotification 联系博主通知
// 当识别到联系意图时推送给在线的博主
type ContactNotification struct {
	NotificationID string    `json:"notificationId"`
	UserID         string    `json:"userId"`
	SessionID      string    `json:"sessionId,omitempty"`
	Message        string    `json:"message"`                 // 用户原始消息
	ContactMethod  string    `json:"contactMethod,omitempty"` // 从槽位中提取的联系方式
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ChatMessage 会话历史中的单条消息
type ChatMessage struct {
	Role      string    `json:"role"` // user 或 assistant
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionData 存储在Redis中的会话数据
type SessionData struct {
	SessionID    string        `json:"sessionId"`
	UserID       string        `json:"userId,omitempty"`
	Messages     []ChatMessage `json:"messages"`
	StartedAt    time.Time     `json:"startedAt"`
	LastActivity time.Time     `json:"lastActivity"`
}

// OnlineUser 在线用户信息
type OnlineUser struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	LoginAt   time.Time `json:"loginAt"`
}
