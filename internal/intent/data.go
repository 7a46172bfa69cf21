package intent

import (
	"encoding/json"
	"log"
	"os"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

// DefaultTrainingExamples 内置默认训练集
// 训练数据文件缺失或损坏时兜底使用，保证系统永远有可用模型
func DefaultTrainingExamples() []TrainingExample {
	return []TrainingExample{
		{Text: "怎么联系博主", Label: models.IntentContactAuthor},
		{Text: "有微信吗", Label: models.IntentContactAuthor},
		{Text: "邮箱是多少", Label: models.IntentContactAuthor},
		{Text: "怎么找你", Label: models.IntentContactAuthor},
		{Text: "Python编程问题", Label: models.IntentTechnicalQA},
		{Text: "什么是机器学习", Label: models.IntentTechnicalQA},
		{Text: "怎么使用git", Label: models.IntentTechnicalQA},
		{Text: "代码报错怎么办", Label: models.IntentTechnicalQA},
		{Text: "查看博客文章", Label: models.IntentContentQuery},
		{Text: "有什么技术教程", Label: models.IntentContentQuery},
		{Text: "学习笔记", Label: models.IntentContentQuery},
	}
}

// TrainingExample 单条训练样本（text + 意图标签）
type TrainingExample = models.TrainingExample

// LoadTrainingExamples 从JSON文件加载训练数据
// 文件缺失或格式错误时回退到内置默认训练集并返回usedDefault=true；
// 文件合法但记录为空时返回空切片，由训练器判定数据不足
func LoadTrainingExamples(path string) (examples []TrainingExample, usedDefault bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[训练数据] 训练数据文件不可用: %v，使用默认训练数据", err)
		return DefaultTrainingExamples(), true
	}

	var file models.TrainingFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("[训练数据] 训练数据文件解析失败: %v，使用默认训练数据", err)
		return DefaultTrainingExamples(), true
	}

	examples = make([]TrainingExample, 0, len(file.TrainingData))
	for _, record := range file.TrainingData {
		if record.Input == "" || record.Intent == "" {
			continue
		}
		examples = append(examples, TrainingExample{Text: record.Input, Label: record.Intent})
	}

	log.Printf("[训练数据] 加载了 %d 条训练数据: %s", len(examples), path)
	return examples, false
}
