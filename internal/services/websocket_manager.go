package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 16
)

// WSConnection 一条受管理的WebSocket连接
// send通道只由close关闭，所有入队经过trySend并与close共用同一把锁，
// 保证不会向已关闭的通道发送
type WSConnection struct {
	UserID string
	conn   *websocket.Conn
	send   chan models.WebSocketMessage

	mu     sync.Mutex
	closed bool
}

// trySend 非阻塞入队，连接已关闭或缓冲已满时返回错误
func (c *WSConnection) trySend(msg models.WebSocketMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("用户 %s 的连接已关闭", c.UserID)
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("用户 %s 的发送缓冲已满", c.UserID)
	}
}

// close 关闭发送通道（幂等），之后的trySend全部拒绝
func (c *WSConnection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WebSocketManager WebSocket连接注册表
// 按用户ID管理连接，支持定向推送与广播；同一用户重复连接时新连接
// 顶替旧连接
type WebSocketManager struct {
	mu          sync.RWMutex
	connections map[string]*WSConnection
}

// NewWebSocketManager 创建连接管理器
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{connections: make(map[string]*WSConnection)}
}

// Register 注册连接并启动写协程
func (m *WebSocketManager) Register(userID string, conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		UserID: userID,
		conn:   conn,
		send:   make(chan models.WebSocketMessage, sendBufferSize),
	}

	m.mu.Lock()
	if old, ok := m.connections[userID]; ok {
		log.Printf("[WebSocket管理] 用户 %s 的旧连接被新连接顶替", userID)
		old.close()
	}
	m.connections[userID] = c
	m.mu.Unlock()

	go c.writePump()
	log.Printf("[WebSocket管理] 用户 %s 连接注册成功，当前连接数 %d", userID, m.Count())
	return c
}

// Unregister 注销连接
func (m *WebSocketManager) Unregister(userID string, c *WSConnection) {
	m.mu.Lock()
	if current, ok := m.connections[userID]; ok && current == c {
		delete(m.connections, userID)
	}
	m.mu.Unlock()
	c.close()
	log.Printf("[WebSocket管理] 用户 %s 连接已注销", userID)
}

// SendToUser 向指定用户推送消息
func (m *WebSocketManager) SendToUser(userID string, msg models.WebSocketMessage) error {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("用户 %s 不在线", userID)
	}
	return c.trySend(msg)
}

// Broadcast 向所有在线连接广播消息，返回送达的连接数
func (m *WebSocketManager) Broadcast(msg models.WebSocketMessage) int {
	m.mu.RLock()
	conns := make([]*WSConnection, 0, len(m.connections))
	for _, c := range m.connections {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	delivered := 0
	for _, c := range conns {
		if c.trySend(msg) == nil {
			delivered++
		}
	}
	return delivered
}

// IsOnline 用户是否有活跃连接
func (m *WebSocketManager) IsOnline(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connections[userID]
	return ok
}

// Count 当前活跃连接数
func (m *WebSocketManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// writePump 串行消费发送通道，负责所有写操作和心跳
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[WebSocket管理] 向用户 %s 写消息失败: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
