package qa

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/jasonhuang/blog-assistant/internal/docs"
)

// retrievalTemplate 检索问答提示词模板
const retrievalTemplate = `使用以下上下文回答问题。如果你不知道答案，就说不知道。

上下文:
%s

问题: %s
答案:`

// Chain 检索增强问答链
// 流程: Top-K向量检索 -> 填充上下文模板 -> LLM生成答案 -> 追加去重的来源
type Chain struct {
	llm   llms.Model
	index *VectorIndex
	topK  int
}

// NewChain 创建问答链
func NewChain(llm llms.Model, index *VectorIndex, topK int) *Chain {
	if topK <= 0 {
		topK = 5
	}
	return &Chain{llm: llm, index: index, topK: topK}
}

// Answer 基于博客内容回答问题，返回带来源标注的答案
func (c *Chain) Answer(ctx context.Context, question string) (string, error) {
	retrieved, err := c.index.Search(ctx, question, c.topK)
	if err != nil {
		return "", fmt.Errorf("检索失败: %w", err)
	}

	contextParts := make([]string, 0, len(retrieved))
	for _, doc := range retrieved {
		contextParts = append(contextParts, doc.Content)
	}
	prompt := fmt.Sprintf(retrievalTemplate, strings.Join(contextParts, "\n\n"), question)

	answer, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(0),
	)
	if err != nil {
		return "", fmt.Errorf("生成答案失败: %w", err)
	}

	log.Printf("[问答链] 检索到 %d 个片段, 答案长度 %d", len(retrieved), len(answer))
	return answer + formatSources(retrieved), nil
}

// formatSources 按文件去重后生成来源附注
func formatSources(retrieved []docs.Document) string {
	if len(retrieved) == 0 {
		return ""
	}
	seen := make(map[string]bool)
	var lines []string
	for _, doc := range retrieved {
		line := fmt.Sprintf("- %s (%s)", doc.Filename, doc.Category)
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	return "\n\n来源文档:\n" + strings.Join(lines, "\n")
}
