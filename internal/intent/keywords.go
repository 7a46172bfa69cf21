package intent

import (
	"strings"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

// KeywordBoostCap 关键词增强分数上限
// 上限刻意压低，让关键词证据只能"推一把"而不能单独压过训练好的模型
const KeywordBoostCap = 0.3

// KeywordTable 各意图的触发词表，运行期只读
type KeywordTable struct {
	// 联系博主触发词
	ContactKeywords []string
	// 技术领域关键词，按子类别分组
	TechKeywords map[string][]string
	// 问题类型关键词，按子类别分组
	QuestionTypes map[string][]string
	// 博客内容查询触发词
	BlogKeywords []string
	// 个人咨询触发词
	PersonalKeywords []string
	// 一般聊天触发词
	ChatKeywords []string
	// 意图优先级，回退路径平分时生效，数值越大优先级越高
	IntentPriority map[string]int
	// 无任何匹配时的默认意图与置信度
	DefaultIntent     string
	DefaultConfidence float64
}

// DefaultKeywordTable 内置触发词表
func DefaultKeywordTable() *KeywordTable {
	return &KeywordTable{
		ContactKeywords: []string{
			"联系", "博主", "人工", "客服", "帮助", "支持", "email", "邮箱",
			"微信", "qq", "电话", "联系方式", "contact", "help", "support",
			"联系你", "找你",
		},
		TechKeywords: map[string][]string{
			"编程语言": {"python", "java", "c++", "c语言", "javascript", "typescript", "编程", "代码"},
			"操作系统": {"linux", "windows", "macos", "unix", "xv6", "openharmony", "系统", "操作系统"},
			"开发工具": {"git", "docker", "vscode", "ide", "编译器", "工具"},
			"硬件":   {"芯片", "处理器", "内存", "硬盘", "主板", "硬件"},
			"网络":   {"tcp", "udp", "http", "https", "协议", "网络"},
		},
		QuestionTypes: map[string][]string{
			"概念解释": {"什么", "是什么", "定义", "概念", "意思", "含义"},
			"使用方法": {"怎么", "如何", "使用", "用法", "怎样", "操作"},
			"问题解决": {"解决", "错误", "问题", "失败", "怎么办", "为啥", "为什么"},
			"代码示例": {"代码", "示例", "实例", "demo", "例子", "源码"},
		},
		BlogKeywords:     []string{"博客", "文章", "帖子", "blog", "post", "写作", "内容"},
		PersonalKeywords: []string{"你", "博主", "个人", "经历", "工作", "学习", "生活", "建议"},
		ChatKeywords:     []string{"你好", "在吗", "谢谢", "再见", "早上好", "晚上好", "hi", "hello"},
		IntentPriority: map[string]int{
			models.IntentContactAuthor:   3, // 最高优先级
			models.IntentContentQuery:    2,
			models.IntentTechnicalQA:     1,
			models.IntentPersonalInquiry: 1,
			models.IntentCasualChat:      1,
		},
		DefaultIntent:     models.IntentTechnicalQA,
		DefaultConfidence: 0.7,
	}
}

// Boost 计算给定意图下的关键词增强分数
// 每命中一个不同子类别加0.1，上限0.3
func (kt *KeywordTable) Boost(text, intent string) float64 {
	lower := strings.ToLower(text)
	boost := 0.0

	switch intent {
	case models.IntentContactAuthor:
		matches := 0
		for _, kw := range kt.ContactKeywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		boost = float64(matches) * 0.1

	case models.IntentTechnicalQA:
		if matchesAnyGroup(lower, kt.TechKeywords) {
			boost += 0.1
		}
		if matchesAnyGroup(lower, kt.QuestionTypes) {
			boost += 0.1
		}
	}

	if boost > KeywordBoostCap {
		boost = KeywordBoostCap
	}
	return boost
}

// FallbackScores 计算各意图的原始匹配计数（纯关键词回退路径）
func (kt *KeywordTable) FallbackScores(text string) map[string]int {
	lower := strings.ToLower(text)
	scores := make(map[string]int)

	scores[models.IntentContactAuthor] = countMatches(lower, kt.ContactKeywords)
	scores[models.IntentContentQuery] = countMatches(lower, kt.BlogKeywords)

	techScore := 0
	for _, keywords := range kt.TechKeywords {
		if anyContained(lower, keywords) {
			techScore++
		}
	}
	for _, keywords := range kt.QuestionTypes {
		if anyContained(lower, keywords) {
			techScore++
		}
	}
	scores[models.IntentTechnicalQA] = techScore

	scores[models.IntentPersonalInquiry] = countMatches(lower, kt.PersonalKeywords)
	scores[models.IntentCasualChat] = countMatches(lower, kt.ChatKeywords)

	return scores
}

// fallbackOrder 回退决策的遍历顺序：先按优先级降序，再按固定声明顺序
// 保证相同输入的回退结果完全确定
var fallbackOrder = []string{
	models.IntentContactAuthor,
	models.IntentContentQuery,
	models.IntentTechnicalQA,
	models.IntentPersonalInquiry,
	models.IntentCasualChat,
}

// FallbackDecide 纯关键词意图决策
// 取匹配数最高的意图，平分按固定优先级排序；全无匹配时返回默认意图与
// 固定的中等置信度（"不确定但必须给出答案"的产品约定）
func (kt *KeywordTable) FallbackDecide(text string) (string, float64) {
	scores := kt.FallbackScores(text)

	bestIntent := kt.DefaultIntent
	bestScore := -1
	for _, intent := range fallbackOrder {
		score := scores[intent]
		if score > bestScore ||
			(score == bestScore && kt.IntentPriority[intent] > kt.IntentPriority[bestIntent]) {
			bestIntent = intent
			bestScore = score
		}
	}

	if bestScore <= 0 {
		return kt.DefaultIntent, kt.DefaultConfidence
	}

	confidence := 0.7 + float64(bestScore)*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	return bestIntent, confidence
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

func anyContained(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func matchesAnyGroup(lower string, groups map[string][]string) bool {
	for _, keywords := range groups {
		if anyContained(lower, keywords) {
			return true
		}
	}
	return false
}
