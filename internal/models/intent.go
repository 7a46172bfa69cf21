package models

// Provenance 意图决策的来源路径
type Provenance string

const (
	// ProvenanceModel 纯神经网络模型决策
	ProvenanceModel Provenance = "model"
	// ProvenanceModelEnhanced 模型决策 + 关键词增强
	ProvenanceModelEnhanced Provenance = "model_enhanced"
	// ProvenanceKeywordFallback 纯关键词回退决策
	ProvenanceKeywordFallback Provenance = "keyword_fallback"
)

// 固定意图标签集（训练语料中出现的标签，与原始训练数据保持一致）
const (
	IntentContactAuthor   = "联系博主"
	IntentTechnicalQA     = "技术问答"
	IntentContentQuery    = "博客内容查询"
	IntentPersonalInquiry = "个人咨询"
	IntentCasualChat      = "一般聊天"
)

// IntentDecision 单次意图识别的完整决策结果
// 每次调用新建，不做任何持久化
type IntentDecision struct {
	Intent     string            `json:"intent"`     // 意图标签
	Confidence float64           `json:"confidence"` // 置信度 [0,1]
	Slots      map[string]string `json:"slots"`      // 槽位信息
	Provenance Provenance        `json:"provenance"` // 决策来源
}

// TrainingExample 单条训练样本
type TrainingExample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// TrainingFile 训练数据文件的顶层结构
// 文件格式: {"training_data": [{"input": "...", "intent": "..."}]}
type TrainingFile struct {
	TrainingData []TrainingRecord `json:"training_data"`
}

// TrainingRecord 训练数据文件中的单条记录
type TrainingRecord struct {
	Input  string `json:"input"`
	Intent string `json:"intent"`
}
