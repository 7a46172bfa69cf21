package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jasonhuang/blog-assistant/internal/models"
	"github.com/jasonhuang/blog-assistant/internal/services"
	"github.com/jasonhuang/blog-assistant/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 博客前端跨域访问，放开来源检查
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler WebSocket接入层
// 负责连接升级、在线状态登记和对话消息的读循环
type WebSocketHandler struct {
	chat         *services.ChatService
	manager      *services.WebSocketManager
	notification *services.NotificationService
	redis        *store.RedisStore // 可为nil
}

// NewWebSocketHandler 创建WebSocket接入层
func NewWebSocketHandler(chat *services.ChatService, manager *services.WebSocketManager, notification *services.NotificationService, redis *store.RedisStore) *WebSocketHandler {
	return &WebSocketHandler{
		chat:         chat,
		manager:      manager,
		notification: notification,
		redis:        redis,
	}
}

// Handle GET /ws?userId=xxx
func (h *WebSocketHandler) Handle(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId参数不能为空"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("[WebSocket接入] 连接升级失败")
		return
	}

	wsConn := h.manager.Register(userID, conn)

	ctx := c.Request.Context()
	if h.redis != nil {
		user := models.OnlineUser{
			UserID:    userID,
			IPAddress: c.ClientIP(),
			LoginAt:   time.Now(),
		}
		if err := h.redis.UserLogin(ctx, user); err != nil {
			logrus.WithError(err).Warn("[WebSocket接入] 登记在线状态失败")
		}
	}

	defer func() {
		h.manager.Unregister(userID, wsConn)
		if h.redis != nil {
			// 连接断开时请求context已取消，下线登记用独立context
			logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.redis.UserLogout(logoutCtx, userID); err != nil {
				logrus.WithError(err).Warn("[WebSocket接入] 清除在线状态失败")
			}
		}
	}()

	h.readLoop(c, userID, conn)
}

// readLoop 读循环：逐条处理客户端消息直到连接关闭
func (h *WebSocketHandler) readLoop(c *gin.Context, userID string, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("userId", userID).Warn("[WebSocket接入] 连接异常断开")
			}
			return
		}

		var msg models.WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.manager.SendToUser(userID, models.WebSocketMessage{
				Type:      models.WSTypeError,
				Data:      "消息格式错误",
				Timestamp: time.Now(),
			})
			continue
		}

		switch msg.Type {
		case models.WSTypeHeartbeat:
			if h.redis != nil {
				if err := h.redis.RefreshPresence(c.Request.Context(), userID); err != nil {
					logrus.WithError(err).Debug("[WebSocket接入] 刷新在线状态失败")
				}
			}
			h.manager.SendToUser(userID, models.WebSocketMessage{
				Type:      models.WSTypeHeartbeat,
				Timestamp: time.Now(),
			})
		case models.WSTypeDialogue:
			h.handleDialogue(c, userID, msg)
		default:
			logrus.WithField("type", msg.Type).Debug("[WebSocket接入] 忽略未知消息类型")
		}
	}
}

// handleDialogue 把对话消息交给对话服务处理并回推答案
func (h *WebSocketHandler) handleDialogue(c *gin.Context, userID string, msg models.WebSocketMessage) {
	question, _ := msg.Data.(string)
	if question == "" {
		h.manager.SendToUser(userID, models.WebSocketMessage{
			Type:      models.WSTypeError,
			Data:      "消息内容不能为空",
			Timestamp: time.Now(),
		})
		return
	}

	resp, err := h.chat.Ask(c.Request.Context(), models.AskRequest{
		Question:  question,
		UserID:    userID,
		SessionID: userID, // WebSocket通道按用户维持单一会话
	})
	if err != nil {
		logrus.WithError(err).Error("[WebSocket接入] 对话处理失败")
		h.manager.SendToUser(userID, models.WebSocketMessage{
			Type:      models.WSTypeError,
			Data:      "服务内部错误",
			Timestamp: time.Now(),
		})
		return
	}

	h.manager.SendToUser(userID, models.WebSocketMessage{
		Type:      models.WSTypeAnswer,
		Data:      resp,
		UserID:    userID,
		Timestamp: time.Now(),
	})
}
