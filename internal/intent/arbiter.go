package intent

import (
	"github.com/jasonhuang/blog-assistant/internal/models"
)

// ModelResult 神经网络分类器的原始输出
type ModelResult struct {
	Intent     string
	Confidence float64
}

// ArbiterConfig 置信度仲裁阈值
type ArbiterConfig struct {
	// LowConfidence 模型原始置信度低于此值时丢弃模型结果走关键词回退
	LowConfidence float64
	// OverrideBoost 关键词增强达到此值视为强关键词证据
	// 历史实现写的是 boost > 0.3，但boost上限恰好是0.3（含），该分支
	// 永远不可达；此处改为可配置阈值并默认取0.3（含等号比较）
	OverrideBoost float64
	// Ceiling 最终置信度上限，小模型永不报告接近确定的置信度
	Ceiling float64
}

// DefaultArbiterConfig 默认仲裁阈值
func DefaultArbiterConfig() ArbiterConfig {
	return ArbiterConfig{
		LowConfidence: 0.6,
		OverrideBoost: 0.3,
		Ceiling:       0.95,
	}
}

// Arbiter 置信度仲裁器
// 无状态，按固定决策策略融合模型输出与关键词证据；对任意输入都
// 产生非空的(intent, confidence, provenance)决策
type Arbiter struct {
	cfg      ArbiterConfig
	keywords *KeywordTable
}

// NewArbiter 创建仲裁器
func NewArbiter(cfg ArbiterConfig, keywords *KeywordTable) *Arbiter {
	if keywords == nil {
		keywords = DefaultKeywordTable()
	}
	if cfg.Ceiling <= 0 || cfg.Ceiling > 1 {
		cfg.Ceiling = 0.95
	}
	return &Arbiter{cfg: cfg, keywords: keywords}
}

// Decide 产出最终意图决策
// modelResult为nil表示模型不可用，整体委托给关键词回退路径
func (a *Arbiter) Decide(text string, modelResult *ModelResult) models.IntentDecision {
	if modelResult == nil {
		return a.fallbackDecision(text)
	}

	boost := a.keywords.Boost(text, modelResult.Intent)
	enhanced := modelResult.Confidence + boost
	if enhanced > a.cfg.Ceiling {
		enhanced = a.cfg.Ceiling
	}

	switch {
	case boost >= a.cfg.OverrideBoost && enhanced > 0.7:
		// 强关键词证据与模型结论一致，标记为增强决策
		return models.IntentDecision{
			Intent:     modelResult.Intent,
			Confidence: enhanced,
			Slots:      ExtractSlots(text, modelResult.Intent),
			Provenance: models.ProvenanceModelEnhanced,
		}

	case modelResult.Confidence < a.cfg.LowConfidence:
		// 模型置信度过低，丢弃模型结论，统一走可预期的回退路径
		return a.fallbackDecision(text)

	default:
		return models.IntentDecision{
			Intent:     modelResult.Intent,
			Confidence: enhanced,
			Slots:      ExtractSlots(text, modelResult.Intent),
			Provenance: models.ProvenanceModel,
		}
	}
}

func (a *Arbiter) fallbackDecision(text string) models.IntentDecision {
	intent, confidence := a.keywords.FallbackDecide(text)
	return models.IntentDecision{
		Intent:     intent,
		Confidence: confidence,
		Slots:      ExtractSlots(text, intent),
		Provenance: models.ProvenanceKeywordFallback,
	}
}
