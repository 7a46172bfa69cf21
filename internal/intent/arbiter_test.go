package intent

import (
	"math"
	"testing"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

func TestArbiterDecide(t *testing.T) {
	arb := NewArbiter(DefaultArbiterConfig(), DefaultKeywordTable())

	t.Run("模型不可用委托关键词回退", func(t *testing.T) {
		d := arb.Decide("我想联系博主", nil)
		if d.Intent != models.IntentContactAuthor {
			t.Errorf("期望意图 %s，但得到 %s", models.IntentContactAuthor, d.Intent)
		}
		if d.Provenance != models.ProvenanceKeywordFallback {
			t.Errorf("期望来源 %s，但得到 %s", models.ProvenanceKeywordFallback, d.Provenance)
		}
	})

	t.Run("低置信度丢弃模型结果", func(t *testing.T) {
		d := arb.Decide("我想联系博主", &ModelResult{Intent: models.IntentCasualChat, Confidence: 0.4})
		if d.Provenance != models.ProvenanceKeywordFallback {
			t.Errorf("期望走回退路径，但来源为 %s", d.Provenance)
		}
		if d.Intent != models.IntentContactAuthor {
			t.Errorf("回退应纠正为联系意图，但得到 %s", d.Intent)
		}
	})

	t.Run("正常置信度用关键词增强", func(t *testing.T) {
		// "联系博主"命中2个联系词，增强0.2
		d := arb.Decide("联系博主", &ModelResult{Intent: models.IntentContactAuthor, Confidence: 0.65})
		if d.Provenance != models.ProvenanceModel {
			t.Errorf("期望来源 %s，但得到 %s", models.ProvenanceModel, d.Provenance)
		}
		if math.Abs(d.Confidence-0.85) > 1e-9 {
			t.Errorf("期望置信度0.85，但得到 %f", d.Confidence)
		}
	})

	t.Run("强关键词证据标记为增强决策", func(t *testing.T) {
		// 命中3个以上联系词，增强分到达0.3的上限
		d := arb.Decide("怎么联系博主，有微信或邮箱吗", &ModelResult{Intent: models.IntentContactAuthor, Confidence: 0.62})
		if d.Provenance != models.ProvenanceModelEnhanced {
			t.Errorf("期望来源 %s，但得到 %s", models.ProvenanceModelEnhanced, d.Provenance)
		}
	})

	t.Run("最终置信度封顶", func(t *testing.T) {
		d := arb.Decide("怎么联系博主，有微信或邮箱吗", &ModelResult{Intent: models.IntentContactAuthor, Confidence: 0.9})
		if d.Confidence != 0.95 {
			t.Errorf("期望置信度封顶在0.95，但得到 %f", d.Confidence)
		}
	})

	t.Run("所有路径都提取槽位", func(t *testing.T) {
		d := arb.Decide("有微信吗", &ModelResult{Intent: models.IntentContactAuthor, Confidence: 0.8})
		if d.Slots["contact_method"] != "微信" {
			t.Errorf("期望提取contact_method=微信，但得到 %v", d.Slots)
		}
	})
}
