package intent

import (
	"strings"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

// slotRule 单条槽位规则：命中keywords中任意一个则把category写入slot
// 规则按声明顺序匹配，同一槽位只取第一个命中的类别
type slotRule struct {
	slot     string
	category string
	keywords []string
}

// 各意图的槽位规则表，静态配置，运行期只读
var slotRules = map[string][]slotRule{
	models.IntentTechnicalQA: {
		{"technology_type", "编程语言", []string{"python", "java", "c++", "c语言", "javascript", "typescript", "编程", "代码"}},
		{"technology_type", "操作系统", []string{"linux", "windows", "macos", "unix", "xv6", "openharmony", "系统", "操作系统"}},
		{"technology_type", "开发工具", []string{"git", "docker", "vscode", "ide", "编译器", "工具"}},
		{"technology_type", "硬件", []string{"芯片", "处理器", "内存", "硬盘", "主板", "硬件"}},
		{"technology_type", "网络", []string{"tcp", "udp", "http", "https", "协议", "网络"}},
		{"question_type", "概念解释", []string{"什么", "是什么", "定义", "概念", "意思", "含义"}},
		{"question_type", "使用方法", []string{"怎么", "如何", "使用", "用法", "怎样", "操作"}},
		{"question_type", "问题解决", []string{"解决", "错误", "问题", "失败", "怎么办", "为啥", "为什么"}},
		{"question_type", "代码示例", []string{"代码", "示例", "实例", "demo", "例子", "源码"}},
	},
	models.IntentContentQuery: {
		{"content_type", "技术教程", []string{"教程", "指南", "教学", "怎么", "如何"}},
		{"content_type", "学习笔记", []string{"笔记", "学习", "记录", "总结"}},
		{"content_type", "个人日记", []string{"日记", "心情", "感悟", "生活"}},
		{"content_type", "问题解决", []string{"解决", "问题", "错误", "bug", "故障"}},
	},
	models.IntentContactAuthor: {
		{"contact_method", "邮箱", []string{"邮箱", "email", "mail"}},
		{"contact_method", "微信", []string{"微信", "wechat"}},
		{"contact_method", "QQ", []string{"qq", "扣扣"}},
		{"contact_method", "人工服务", []string{"人工", "客服", "支持"}},
	},
	models.IntentPersonalInquiry: {
		{"aspect", "工作", []string{"工作", "职业", "岗位", "公司", "上班"}},
		{"aspect", "学习", []string{"学习", "学习经历", "教育", "学校", "课程"}},
		{"aspect", "生活", []string{"生活", "日常", "爱好", "兴趣", "习惯"}},
		{"aspect", "规划", []string{"规划", "计划", "目标", "未来", "发展"}},
		{"aspect", "建议", []string{"建议", "意见", "推荐", "指导", "帮助"}},
	},
	models.IntentCasualChat: {
		{"chat_type", "问候", []string{"你好", "在吗", "早上好", "晚上好", "hi", "hello"}},
		{"chat_type", "感谢", []string{"谢谢", "感谢", "多谢", "thx", "thanks"}},
		{"chat_type", "闲聊", []string{"最近", "怎么样", "还好吗", "忙吗"}},
		{"chat_type", "关心", []string{"注意", "保重", "照顾好", "小心"}},
	},
}

// ExtractSlots 按意图提取槽位
// 纯函数，永不失败；无匹配时返回空映射
func ExtractSlots(text, intent string) map[string]string {
	slots := make(map[string]string)
	rules, ok := slotRules[intent]
	if !ok {
		return slots
	}

	lower := strings.ToLower(text)
	for _, rule := range rules {
		if _, done := slots[rule.slot]; done {
			continue
		}
		if anyContained(lower, rule.keywords) {
			slots[rule.slot] = rule.category
		}
	}
	return slots
}
