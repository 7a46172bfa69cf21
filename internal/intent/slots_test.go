package intent

import (
	"testing"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

func TestExtractSlots(t *testing.T) {
	t.Run("联系方式提取", func(t *testing.T) {
		slots := ExtractSlots("有微信吗", models.IntentContactAuthor)
		if slots["contact_method"] != "微信" {
			t.Errorf("期望contact_method=微信，但得到 %v", slots)
		}
	})

	t.Run("技术问答提取双槽位", func(t *testing.T) {
		slots := ExtractSlots("python代码报错怎么解决", models.IntentTechnicalQA)
		if slots["technology_type"] != "编程语言" {
			t.Errorf("期望technology_type=编程语言，但得到 %v", slots)
		}
		if slots["question_type"] != "使用方法" {
			t.Errorf("期望question_type=使用方法，但得到 %v", slots)
		}
	})

	t.Run("同一槽位先命中的规则优先", func(t *testing.T) {
		// "邮箱"规则在"微信"规则之前声明
		slots := ExtractSlots("邮箱还是微信都行", models.IntentContactAuthor)
		if slots["contact_method"] != "邮箱" {
			t.Errorf("期望先命中的邮箱规则生效，但得到 %v", slots)
		}
	})

	t.Run("无匹配返回空映射", func(t *testing.T) {
		slots := ExtractSlots("呜啦啦", models.IntentCasualChat)
		if slots == nil {
			t.Fatal("期望空映射而不是nil")
		}
		if len(slots) != 0 {
			t.Errorf("期望无槽位，但得到 %v", slots)
		}
	})

	t.Run("未知意图返回空映射", func(t *testing.T) {
		slots := ExtractSlots("有微信吗", "不存在的意图")
		if len(slots) != 0 {
			t.Errorf("未知意图期望无槽位，但得到 %v", slots)
		}
	})
}
