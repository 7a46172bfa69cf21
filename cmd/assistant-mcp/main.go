package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/jasonhuang/blog-assistant/internal/config"
	"github.com/jasonhuang/blog-assistant/internal/docs"
	"github.com/jasonhuang/blog-assistant/internal/intent"
	"github.com/jasonhuang/blog-assistant/internal/qa"
	"github.com/jasonhuang/blog-assistant/internal/services"
)

// MCP stdio服务器：把博客助手的问答和意图识别暴露为MCP工具，
// 供支持MCP协议的客户端直接调用
func main() {
	// MCP使用stdout通信，日志必须走stderr
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("正在启动博客助手MCP服务...")

	cfg := config.Load()

	session := intent.NewSession(intent.SessionOptions{
		ModelDir:         cfg.ModelDir,
		TrainingDataPath: cfg.TrainingDataPath,
		Arbiter: intent.ArbiterConfig{
			LowConfidence: cfg.LowConfidenceThreshold,
			OverrideBoost: cfg.OverrideBoostThreshold,
			Ceiling:       cfg.ConfidenceCeiling,
		},
	})

	chain := buildChain(cfg)

	serverOptions := []server.ServerOption{}
	if cfg.Debug {
		serverOptions = append(serverOptions, server.WithLogging())
	}

	s := server.NewMCPServer(
		"blog-assistant",
		services.Version,
		serverOptions...,
	)

	askTool := mcp.NewTool("ask_blog",
		mcp.WithDescription("基于博客内容回答问题，返回带来源标注的答案"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("要提问的问题"),
		),
	)
	s.AddTool(askTool, askBlogHandler(chain))

	classifyTool := mcp.NewTool("classify_intent",
		mcp.WithDescription("识别一句话的意图，返回意图标签、置信度、槽位和决策来源"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("要识别的文本"),
		),
	)
	s.AddTool(classifyTool, classifyIntentHandler(session))

	log.Println("博客助手MCP服务器已启动，等待连接...")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("MCP服务器启动失败: %v", err)
	}
}

// buildChain 组装问答链，LLM不可用时返回nil
func buildChain(cfg *config.Config) *qa.Chain {
	llm, err := qa.NewDeepSeekLLM(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel)
	if err != nil {
		log.Printf("警告: LLM不可用，ask_blog工具将返回降级提示: %v", err)
		return nil
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Printf("警告: 创建嵌入器失败: %v", err)
		return nil
	}

	index := qa.NewVectorIndex(cfg.VectorIndexPath, embedder)
	if documents, err := docs.LoadDocuments(cfg.BlogFilesPath); err != nil {
		log.Printf("警告: 加载博客文档失败: %v", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout)
		defer cancel()
		if err := index.Sync(ctx, documents); err != nil {
			log.Printf("警告: 同步向量索引失败: %v", err)
		}
	}

	return qa.NewChain(llm, index, 5)
}

func askBlogHandler(chain *qa.Chain) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, ok := request.Params.Arguments["question"].(string)
		if !ok || question == "" {
			return mcp.NewToolResultText("错误: question必须是非空字符串"), nil
		}

		if chain == nil {
			return mcp.NewToolResultText("问答功能暂时不可用（未配置语言模型）"), nil
		}

		answer, err := chain.Answer(ctx, question)
		if err != nil {
			errMsg := fmt.Sprintf("回答问题失败: %v", err)
			log.Println(errMsg)
			return mcp.NewToolResultText(errMsg), nil
		}
		return mcp.NewToolResultText(answer), nil
	}
}

func classifyIntentHandler(session *intent.ClassifierSession) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, ok := request.Params.Arguments["text"].(string)
		if !ok || text == "" {
			return mcp.NewToolResultText("错误: text必须是非空字符串"), nil
		}

		decision := session.Classify(text)
		data, err := json.Marshal(decision)
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("序列化结果失败: %v", err)), nil
		}

		log.Printf("意图识别: text=%s, intent=%s, confidence=%.2f", text, decision.Intent, decision.Confidence)
		return mcp.NewToolResultText(string(data)), nil
	}
}
