package intent

import (
	"log"
	"strings"
	"unicode"
)

// 内置中文词典，覆盖博客问答场景的常见词汇
// 分词采用正向最长匹配，词典未命中的汉字退化为单字
var builtinLexicon = map[string]struct{}{}

const maxLexiconWordLen = 4

func init() {
	words := []string{
		// 联系类
		"联系", "联系方式", "联系你", "博主", "人工", "客服", "帮助", "支持",
		"邮箱", "微信", "电话", "找你", "扣扣",
		// 疑问类
		"怎么", "怎么办", "怎样", "如何", "什么", "是什么", "为什么", "为啥",
		"多少", "有没有", "哪里", "哪些", "可以",
		// 技术类
		"机器学习", "深度学习", "人工智能", "编程", "编程语言", "代码", "报错",
		"示例", "实例", "例子", "源码", "编译器", "工具", "系统", "操作系统",
		"网络", "协议", "硬件", "芯片", "处理器", "内存", "硬盘", "主板",
		"错误", "问题", "失败", "解决", "使用", "用法", "操作", "定义",
		"概念", "意思", "含义", "技术", "问答",
		// 博客内容类
		"博客", "文章", "帖子", "内容", "查询", "查看", "教程", "指南",
		"教学", "笔记", "记录", "总结", "日记", "心情", "感悟", "分享",
		"更新", "写作", "故障",
		// 个人咨询类
		"工作", "职业", "岗位", "公司", "上班", "学习", "教育", "学校",
		"课程", "生活", "日常", "爱好", "兴趣", "习惯", "规划", "计划",
		"目标", "未来", "发展", "建议", "意见", "推荐", "指导", "经历",
		"个人", "咨询",
		// 聊天类
		"你好", "在吗", "早上好", "晚上好", "谢谢", "感谢", "多谢", "再见",
		"最近", "怎么样", "还好吗", "忙吗", "注意", "保重", "小心", "聊天",
	}
	for _, w := range words {
		builtinLexicon[w] = struct{}{}
	}
}

// Tokenize 中文分词
// 正向最长匹配 + ASCII单词合并；分词过程出现任何异常时回退为逐字切分，
// 保证永远不会向调用方抛出错误
func Tokenize(text string) (tokens []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[分词] 分词失败: %v，回退为逐字切分", r)
			tokens = charTokenize(text)
		}
	}()
	return segment(text)
}

// segment 正向最长匹配分词
func segment(text string) []string {
	runes := []rune(text)
	tokens := make([]string, 0, len(runes))

	for i := 0; i < len(runes); {
		r := runes[i]

		// 跳过空白
		if unicode.IsSpace(r) {
			i++
			continue
		}

		// ASCII字母数字连成一个词（如 python、c++ 中的字母部分、qq）
		if isASCIIWordRune(r) {
			j := i
			for j < len(runes) && isASCIIWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, strings.ToLower(string(runes[i:j])))
			i = j
			continue
		}

		// 标点符号丢弃
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			i++
			continue
		}

		// 词典最长匹配，未命中退化为单字
		matched := 1
		maxLen := maxLexiconWordLen
		if remain := len(runes) - i; remain < maxLen {
			maxLen = remain
		}
		for l := maxLen; l >= 2; l-- {
			if _, ok := builtinLexicon[string(runes[i:i+l])]; ok {
				matched = l
				break
			}
		}
		tokens = append(tokens, string(runes[i:i+matched]))
		i += matched
	}

	return tokens
}

// charTokenize 逐字切分（兜底路径）
func charTokenize(text string) []string {
	tokens := make([]string, 0, len(text))
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		tokens = append(tokens, strings.ToLower(string(r)))
	}
	return tokens
}

func isASCIIWordRune(r rune) bool {
	return r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
