package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jasonhuang/blog-assistant/internal/intent"
	"github.com/jasonhuang/blog-assistant/internal/models"
	"github.com/jasonhuang/blog-assistant/internal/qa"
	"github.com/jasonhuang/blog-assistant/internal/store"
)

// Version 服务版本号
const Version = "1.0.0"

// 各意图的固定应答
const (
	casualChatReply    = "你好！我是博客助手，可以帮你查询博客内容、回答技术问题，也可以帮你联系博主。有什么想聊的吗？"
	personalReply      = "博主是一名热爱技术的开发者，平时喜欢在博客里记录学习心得。想了解更多可以看看博客里的文章，或者我帮你联系博主？"
	qaUnavailableReply = "问答功能暂时不可用（未配置语言模型），请稍后再试，或直接浏览博客文章。"
	contactDeliveredWS = "已经通知博主了，博主现在在线，很快会回复你。"
	contactViaEmail    = "博主现在不在线，我已经通过邮件把你的消息转达给博主了。"
	contactUndelivered = "抱歉，暂时联系不上博主。你可以稍后再试，或者在博客文章下留言。"
)

// ChatService 对话编排器
// 串联隐藏指令门、意图识别和各意图的处理分支，并把对话历史写入Redis
type ChatService struct {
	session      *intent.ClassifierSession
	gate         *InstructionGate
	chain        *qa.Chain // 可为nil（未配置LLM）
	notification *NotificationService
	redis        *store.RedisStore // 可为nil
}

// NewChatService 创建对话服务
func NewChatService(session *intent.ClassifierSession, gate *InstructionGate, chain *qa.Chain, notification *NotificationService, redis *store.RedisStore) *ChatService {
	return &ChatService{
		session:      session,
		gate:         gate,
		chain:        chain,
		notification: notification,
		redis:        redis,
	}
}

// Ask 处理一次用户提问，返回回答和意图决策
func (c *ChatService) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	question := req.Question

	// 隐藏指令优先于一切处理
	if matched, reply := c.gate.Check(ctx, question); matched {
		log.Printf("[对话服务] 命中隐藏指令, userId=%s", req.UserID)
		c.persist(ctx, req, question, reply, "")
		return &models.AskResponse{Answer: reply}, nil
	}

	decision := c.session.Classify(question)
	log.Printf("[对话服务] 意图识别: intent=%s, confidence=%.2f, provenance=%s",
		decision.Intent, decision.Confidence, decision.Provenance)

	answer := c.route(ctx, req, question, decision)

	c.persist(ctx, req, question, answer, decision.Intent)

	return &models.AskResponse{
		Answer:     answer,
		Intent:     decision.Intent,
		Confidence: decision.Confidence,
		Provenance: string(decision.Provenance),
	}, nil
}

// route 按意图分发到具体处理分支
func (c *ChatService) route(ctx context.Context, req models.AskRequest, question string, decision models.IntentDecision) string {
	switch decision.Intent {
	case models.IntentContactAuthor:
		return c.handleContact(ctx, req, question, decision)
	case models.IntentCasualChat:
		return casualChatReply
	case models.IntentPersonalInquiry:
		return personalReply
	default:
		// 技术问答和博客内容查询都走检索问答链
		return c.handleQA(ctx, question)
	}
}

// handleContact 联系博主：分发通知并据送达通道组织回复
func (c *ChatService) handleContact(ctx context.Context, req models.AskRequest, question string, decision models.IntentDecision) string {
	channel, err := c.notification.NotifyContact(ctx, req.UserID, req.SessionID, question,
		decision.Slots["contact_method"], decision.Confidence)
	if err != nil {
		log.Printf("[对话服务] 联系通知分发失败: %v", err)
		return contactUndelivered
	}
	if channel == ChannelEmail {
		return contactViaEmail
	}
	return contactDeliveredWS
}

// handleQA 检索增强问答
func (c *ChatService) handleQA(ctx context.Context, question string) string {
	if c.chain == nil {
		return qaUnavailableReply
	}
	answer, err := c.chain.Answer(ctx, question)
	if err != nil {
		log.Printf("[对话服务] 问答链执行失败: %v", err)
		return "抱歉，回答这个问题时出了点问题，请稍后再试。"
	}
	return answer
}

// persist 把本轮问答写入会话历史，Redis不可用时静默跳过
func (c *ChatService) persist(ctx context.Context, req models.AskRequest, question, answer, intentLabel string) {
	if c.redis == nil || req.SessionID == "" {
		return
	}
	now := time.Now()
	userMsg := models.ChatMessage{Role: "user", Content: question, Intent: intentLabel, Timestamp: now}
	if err := c.redis.SaveMessage(ctx, req.SessionID, req.UserID, userMsg); err != nil {
		log.Printf("[对话服务] 保存用户消息失败: %v", err)
		return
	}
	assistantMsg := models.ChatMessage{Role: "assistant", Content: answer, Timestamp: now}
	if err := c.redis.SaveMessage(ctx, req.SessionID, req.UserID, assistantMsg); err != nil {
		log.Printf("[对话服务] 保存助手消息失败: %v", err)
	}
}

// Classify 意图识别调试接口
func (c *ChatService) Classify(text string) models.IntentDecision {
	return c.session.Classify(text)
}

// Retrain 重新训练意图模型
func (c *ChatService) Retrain(ctx context.Context, trainingDataPath string) (*models.RetrainResponse, error) {
	var (
		ckpt *intent.Checkpoint
		err  error
	)
	if trainingDataPath != "" {
		ckpt, err = c.session.TrainFromFile(ctx, trainingDataPath)
	} else {
		ckpt, err = c.session.Retrain(ctx)
	}
	if err != nil {
		return &models.RetrainResponse{
			Success: false,
			Message: fmt.Sprintf("重新训练失败: %v", err),
		}, err
	}
	return &models.RetrainResponse{
		Success:   true,
		Message:   "重新训练完成，新模型已生效",
		LabelSet:  ckpt.Labels,
		VocabSize: len(ckpt.Words),
	}, nil
}

// Status 汇总系统状态
func (c *ChatService) Status(ctx context.Context, indexedDocs int) *models.StatusResponse {
	redisOK := false
	if c.redis != nil {
		redisOK = c.redis.Ping(ctx) == nil
	}
	return &models.StatusResponse{
		ServiceRunning:   true,
		RedisConnected:   redisOK,
		ModelAvailable:   c.session.ModelAvailable(),
		OnlineUserCount:  c.notification.OnlineUserCount(ctx),
		ActiveWSConns:    c.notification.ws.Count(),
		IndexedDocuments: indexedDocs,
		Version:          Version,
	}
}
