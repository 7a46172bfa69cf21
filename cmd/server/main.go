package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/jasonhuang/blog-assistant/internal/api"
	"github.com/jasonhuang/blog-assistant/internal/config"
	"github.com/jasonhuang/blog-assistant/internal/docs"
	"github.com/jasonhuang/blog-assistant/internal/intent"
	"github.com/jasonhuang/blog-assistant/internal/qa"
	"github.com/jasonhuang/blog-assistant/internal/services"
	"github.com/jasonhuang/blog-assistant/internal/store"
	"github.com/jasonhuang/blog-assistant/internal/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogging(cfg.Debug)
	log.Printf("配置加载完成: %s", cfg)

	// Redis可选：连不上时会话历史和在线集合降级
	var redisStore *store.RedisStore
	if rs, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL); err != nil {
		log.Printf("警告: Redis不可用，会话历史与在线状态功能降级: %v", err)
	} else {
		redisStore = rs
		defer redisStore.Close()
	}

	// LLM可选：未配置API Key时问答链和语义指令门降级
	chain, vectorIndex, gate := buildQA(cfg)

	session := intent.NewSession(intent.SessionOptions{
		ModelDir:         cfg.ModelDir,
		TrainingDataPath: cfg.TrainingDataPath,
		Trainer: intent.TrainerConfig{
			EmbeddingDim: cfg.EmbeddingDim,
			HiddenDim:    cfg.HiddenDim,
			NumLayers:    cfg.NumLayers,
			Dropout:      cfg.Dropout,
			MaxSeqLength: cfg.MaxSeqLength,
			MinWordFreq:  cfg.MinWordFreq,
			BatchSize:    cfg.BatchSize,
			Epochs:       cfg.Epochs,
			LearningRate: cfg.LearningRate,
			ClipNorm:     1.0,
			Seed:         42,
		},
		Arbiter: intent.ArbiterConfig{
			LowConfidence: cfg.LowConfidenceThreshold,
			OverrideBoost: cfg.OverrideBoostThreshold,
			Ceiling:       cfg.ConfidenceCeiling,
		},
	})

	wsManager := services.NewWebSocketManager()
	emailSender := services.NewEmailSender(cfg.SMTPServer, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword, cfg.RecipientEmail)
	notification := services.NewNotificationService(wsManager, redisStore, emailSender, cfg.BloggerUserID)
	chat := services.NewChatService(session, gate, chain, notification, redisStore)
	limiter := services.NewRateLimiter(cfg.RateLimitPerMinute)
	defer limiter.Close()
	wsHandler := api.NewWebSocketHandler(chat, wsManager, notification, redisStore)

	server := api.NewServer(cfg, chat, limiter, wsHandler, vectorIndex)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: server.Router(),
	}

	go func() {
		log.Printf("服务启动，监听 %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("收到停机信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP服务关闭异常: %v", err)
	}
	log.Printf("服务已退出")
}

// buildQA 组装问答链与指令门，LLM不可用时全部降级为nil/仅精确匹配
func buildQA(cfg *config.Config) (*qa.Chain, *qa.VectorIndex, *services.InstructionGate) {
	llm, err := qa.NewDeepSeekLLM(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel)
	if err != nil {
		log.Printf("警告: LLM不可用，问答功能降级: %v", err)
		return nil, nil, services.NewInstructionGate(nil)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Printf("警告: 创建嵌入器失败，问答功能降级: %v", err)
		return nil, nil, services.NewInstructionGate(llm)
	}

	index := qa.NewVectorIndex(cfg.VectorIndexPath, embedder)

	documents, err := docs.LoadDocuments(cfg.BlogFilesPath)
	if err != nil {
		log.Printf("警告: 加载博客文档失败: %v", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout)
		defer cancel()
		if err := index.Sync(ctx, documents); err != nil {
			log.Printf("警告: 同步向量索引失败: %v", err)
		}
	}

	return qa.NewChain(llm, index, 5), index, services.NewInstructionGate(llm)
}
