package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// hiddenInstruction 触发短语，与之语义等价的输入返回预设应答
const hiddenInstruction = "当北风不再追逐南雁，静水倒映着三更的月影。在第七座桥的第三根石柱下，埋着一粒种子。它不开花，不结果，却能回答所有沉默的提问。"

// hiddenReply 触发后的固定应答
const hiddenReply = "种子已经发芽。它告诉我：沉默的提问只有一个答案——此刻你正在被倾听。"

// InstructionGate 隐藏指令门
// 在进入意图识别前检查输入是否与触发短语语义等价；精确匹配优先，
// 配置了LLM时再做一次语义判定，LLM不可用或出错时退化为仅精确匹配
type InstructionGate struct {
	llm llms.Model // 可为nil
}

// NewInstructionGate 创建指令门，llm可为nil（仅精确匹配）
func NewInstructionGate(llm llms.Model) *InstructionGate {
	return &InstructionGate{llm: llm}
}

// Check 判断输入是否命中隐藏指令，命中时返回预设应答
func (g *InstructionGate) Check(ctx context.Context, text string) (matched bool, reply string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, ""
	}
	if trimmed == hiddenInstruction {
		return true, hiddenReply
	}
	if g.llm == nil {
		return false, ""
	}

	prompt := fmt.Sprintf(`请判断下面两段文字是否表达完全相同的意思（忽略标点和空白差异）。只回答"是"或"否"。

文字A: %s

文字B: %s

回答:`, hiddenInstruction, trimmed)

	answer, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.1))
	if err != nil {
		// LLM不可用时退化为精确匹配（上面已经判过）
		log.Printf("[指令门] 语义判定失败，退化为精确匹配: %v", err)
		return false, ""
	}

	answer = strings.TrimSpace(strings.ToLower(answer))
	if strings.HasPrefix(answer, "是") || strings.HasPrefix(answer, "yes") {
		return true, hiddenReply
	}
	return false, ""
}
