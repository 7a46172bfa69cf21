package intent

import (
	"testing"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

func TestKeywordBoost(t *testing.T) {
	kt := DefaultKeywordTable()

	t.Run("联系意图按命中数累加", func(t *testing.T) {
		// 命中"联系"和"博主"两个词
		boost := kt.Boost("我想联系博主", models.IntentContactAuthor)
		if boost != 0.2 {
			t.Errorf("期望增强分0.2，但得到 %f", boost)
		}
	})

	t.Run("增强分不超过上限", func(t *testing.T) {
		boost := kt.Boost("联系博主的邮箱微信qq电话客服", models.IntentContactAuthor)
		if boost != KeywordBoostCap {
			t.Errorf("期望增强分封顶在 %f，但得到 %f", KeywordBoostCap, boost)
		}
	})

	t.Run("技术意图按子类别组加分", func(t *testing.T) {
		// 技术词(python) + 问题类型词(怎么)各贡献0.1
		boost := kt.Boost("python怎么安装", models.IntentTechnicalQA)
		if boost != 0.2 {
			t.Errorf("期望增强分0.2，但得到 %f", boost)
		}
	})

	t.Run("无关意图无增强", func(t *testing.T) {
		if boost := kt.Boost("联系博主", models.IntentCasualChat); boost != 0 {
			t.Errorf("一般聊天意图期望增强分0，但得到 %f", boost)
		}
	})
}

func TestFallbackDecide(t *testing.T) {
	kt := DefaultKeywordTable()

	t.Run("联系类输入落到联系意图", func(t *testing.T) {
		intent, confidence := kt.FallbackDecide("我想联系博主")
		if intent != models.IntentContactAuthor {
			t.Errorf("期望意图 %s，但得到 %s", models.IntentContactAuthor, intent)
		}
		// 命中"联系"和"博主": 0.7 + 2*0.1
		if confidence != 0.9 {
			t.Errorf("期望置信度0.9，但得到 %f", confidence)
		}
	})

	t.Run("置信度封顶0.9", func(t *testing.T) {
		_, confidence := kt.FallbackDecide("联系博主邮箱微信qq电话客服人工")
		if confidence > 0.9 {
			t.Errorf("回退置信度不应超过0.9，但得到 %f", confidence)
		}
	})

	t.Run("无任何命中返回默认意图", func(t *testing.T) {
		intent, confidence := kt.FallbackDecide("呜啦啦")
		if intent != kt.DefaultIntent {
			t.Errorf("期望默认意图 %s，但得到 %s", kt.DefaultIntent, intent)
		}
		if confidence != kt.DefaultConfidence {
			t.Errorf("期望默认置信度 %f，但得到 %f", kt.DefaultConfidence, confidence)
		}
	})

	t.Run("打招呼落到一般聊天", func(t *testing.T) {
		intent, _ := kt.FallbackDecide("早上好")
		if intent != models.IntentCasualChat {
			t.Errorf("期望意图 %s，但得到 %s", models.IntentCasualChat, intent)
		}
	})

	t.Run("相同输入结果完全确定", func(t *testing.T) {
		text := "博客文章里有什么python教程"
		i1, c1 := kt.FallbackDecide(text)
		for n := 0; n < 20; n++ {
			i2, c2 := kt.FallbackDecide(text)
			if i1 != i2 || c1 != c2 {
				t.Fatalf("第 %d 次决策不一致: (%s, %f) vs (%s, %f)", n, i1, c1, i2, c2)
			}
		}
	})
}
