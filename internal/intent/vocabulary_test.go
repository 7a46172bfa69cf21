package intent

import (
	"errors"
	"testing"
)

func TestBuildVocabulary(t *testing.T) {
	corpus := []string{
		"怎么联系博主",
		"怎么使用git",
		"博主你好",
	}
	vocab := BuildVocabulary(corpus, 1)

	t.Run("保留token占据固定位置", func(t *testing.T) {
		words := vocab.Words()
		if words[PadID] != PadToken {
			t.Errorf("期望id %d 为 %s，但得到 %s", PadID, PadToken, words[PadID])
		}
		if words[UnkID] != UnkToken {
			t.Errorf("期望id %d 为 %s，但得到 %s", UnkID, UnkToken, words[UnkID])
		}
	})

	t.Run("高频词id更小", func(t *testing.T) {
		// "怎么"和"博主"各出现2次，其余1次
		if vocab.ID("怎么") >= vocab.ID("git") {
			t.Errorf("高频词'怎么'(id=%d)应排在低频词'git'(id=%d)之前",
				vocab.ID("怎么"), vocab.ID("git"))
		}
	})

	t.Run("未知词映射为UNK", func(t *testing.T) {
		if id := vocab.ID("量子"); id != UnkID {
			t.Errorf("未知词期望映射为UnkID(%d)，但得到 %d", UnkID, id)
		}
	})

	t.Run("构建结果可复现", func(t *testing.T) {
		again := BuildVocabulary(corpus, 1)
		w1, w2 := vocab.Words(), again.Words()
		if len(w1) != len(w2) {
			t.Fatalf("两次构建词汇量不同: %d vs %d", len(w1), len(w2))
		}
		for i := range w1 {
			if w1[i] != w2[i] {
				t.Fatalf("两次构建在id %d 处不一致: %s vs %s", i, w1[i], w2[i])
			}
		}
	})
}

func TestNumericalize(t *testing.T) {
	vocab := BuildVocabulary([]string{"怎么联系博主"}, 1)

	t.Run("输出长度恒等于maxLength", func(t *testing.T) {
		for _, text := range []string{"", "博主", "怎么联系博主怎么联系博主怎么联系博主怎么联系博主怎么联系博主怎么联系博主"} {
			ids := vocab.Numericalize(text, 10)
			if len(ids) != 10 {
				t.Errorf("输入 %q 期望输出长度10，但得到 %d", text, len(ids))
			}
		}
	})

	t.Run("不足部分用PAD补齐", func(t *testing.T) {
		ids := vocab.Numericalize("博主", 5)
		for i := 1; i < 5; i++ {
			if ids[i] != PadID {
				t.Errorf("位置 %d 期望PadID，但得到 %d", i, ids[i])
			}
		}
	})

	t.Run("超长从尾部截断", func(t *testing.T) {
		long := "怎么联系博主怎么联系博主怎么联系博主"
		ids := vocab.Numericalize(long, 2)
		if len(ids) != 2 {
			t.Fatalf("期望长度2，但得到 %d", len(ids))
		}
		if ids[0] == PadID || ids[1] == PadID {
			t.Error("截断后的序列不应包含PAD")
		}
	})
}

func TestVocabularyFromWords(t *testing.T) {
	t.Run("合法词表往返一致", func(t *testing.T) {
		original := BuildVocabulary([]string{"怎么联系博主", "有微信吗"}, 1)
		restored, err := VocabularyFromWords(original.Words())
		if err != nil {
			t.Fatalf("从词表恢复失败: %v", err)
		}
		for _, word := range original.Words() {
			if restored.ID(word) != original.ID(word) {
				t.Errorf("词 %q 的id不一致: %d vs %d", word, restored.ID(word), original.ID(word))
			}
		}
	})

	t.Run("缺少保留token返回损坏错误", func(t *testing.T) {
		_, err := VocabularyFromWords([]string{"怎么", "博主"})
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("期望ErrCorruptCheckpoint，但得到 %v", err)
		}
	})

	t.Run("空词表返回损坏错误", func(t *testing.T) {
		_, err := VocabularyFromWords(nil)
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("期望ErrCorruptCheckpoint，但得到 %v", err)
		}
	})
}
