package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jasonhuang/blog-assistant/internal/config"
	"github.com/jasonhuang/blog-assistant/internal/models"
	"github.com/jasonhuang/blog-assistant/internal/qa"
	"github.com/jasonhuang/blog-assistant/internal/services"
	"github.com/jasonhuang/blog-assistant/internal/utils"
)

// Server HTTP接口层
type Server struct {
	cfg         *config.Config
	chat        *services.ChatService
	limiter     *services.RateLimiter
	wsHandler   *WebSocketHandler
	vectorIndex *qa.VectorIndex // 可为nil（未配置LLM时无索引）
}

// NewServer 创建接口层
func NewServer(cfg *config.Config, chat *services.ChatService, limiter *services.RateLimiter, wsHandler *WebSocketHandler, vectorIndex *qa.VectorIndex) *Server {
	return &Server{
		cfg:         cfg,
		chat:        chat,
		limiter:     limiter,
		wsHandler:   wsHandler,
		vectorIndex: vectorIndex,
	}
}

// Router 组装Gin路由
func (s *Server) Router() *gin.Engine {
	gin.SetMode(s.cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(utils.TraceIDMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Trace-ID")
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", s.handleHealth)
	r.GET("/status", s.handleStatus)
	r.POST("/ask", s.handleAsk)
	r.POST("/classify", s.handleClassify)
	r.GET("/ws", s.wsHandler.Handle)

	admin := r.Group("/admin")
	{
		admin.POST("/retrain", s.handleRetrain)
		admin.POST("/broadcast", s.handleBroadcast)
	}

	return r
}

// handleHealth 存活检查
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
}

// handleStatus 系统状态
func (s *Server) handleStatus(c *gin.Context) {
	indexed := 0
	if s.vectorIndex != nil {
		indexed = s.vectorIndex.Count()
	}
	c.JSON(http.StatusOK, s.chat.Status(c.Request.Context(), indexed))
}

// handleAsk 问答接口
func (s *Server) handleAsk(c *gin.Context) {
	if !s.limiter.Allow(c.ClientIP()) {
		logrus.WithField("clientIp", c.ClientIP()).Warn("[接口层] 请求触发限流")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
		return
	}

	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "问题不能为空"})
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "问题不能为空"})
		return
	}
	if len([]rune(req.Question)) > s.cfg.MaxQuestionLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "问题过长，请控制在限制长度以内"})
		return
	}
	if req.UserID == "" {
		req.UserID = c.ClientIP()
	}

	resp, err := s.chat.Ask(c.Request.Context(), req)
	if err != nil {
		logrus.WithError(err).Error("[接口层] 问答处理失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务内部错误"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleClassify 意图识别调试接口
func (s *Server) handleClassify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text字段不能为空"})
		return
	}
	c.JSON(http.StatusOK, s.chat.Classify(req.Text))
}

// handleRetrain 重新训练意图模型
func (s *Server) handleRetrain(c *gin.Context) {
	var req models.RetrainRequest
	// 请求体可为空，此时使用配置的训练数据路径
	_ = c.ShouldBindJSON(&req)

	resp, err := s.chat.Retrain(c.Request.Context(), req.TrainingDataPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleBroadcast 向所有在线用户广播系统通知
func (s *Server) handleBroadcast(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message字段不能为空"})
		return
	}
	delivered := s.wsHandler.notification.ManualBroadcast(req.Message)
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}
