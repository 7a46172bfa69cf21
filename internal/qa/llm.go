package qa

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// NewDeepSeekLLM 创建DeepSeek语言模型客户端
// DeepSeek提供OpenAI兼容接口，直接复用openai客户端并替换BaseURL
func NewDeepSeekLLM(apiKey, baseURL, model string) (*openai.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("未配置DEEPSEEK_API_KEY")
	}
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("创建DeepSeek客户端失败: %w", err)
	}
	return llm, nil
}
