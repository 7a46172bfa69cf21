package qa

import (
	"math"
	"strings"
	"testing"

	"github.com/jasonhuang/blog-assistant/internal/docs"
)

func TestFormatSources(t *testing.T) {
	t.Run("同一文件的多个片段去重", func(t *testing.T) {
		retrieved := []docs.Document{
			{Filename: "go并发.md", Category: "技术"},
			{Filename: "go并发.md", Category: "技术"},
			{Filename: "读书笔记.md", Category: "生活"},
		}
		out := formatSources(retrieved)
		if strings.Count(out, "go并发.md") != 1 {
			t.Errorf("同一文件应只出现一次:\n%s", out)
		}
		if !strings.Contains(out, "来源文档:") {
			t.Errorf("缺少来源标题:\n%s", out)
		}
		if !strings.Contains(out, "- 读书笔记.md (生活)") {
			t.Errorf("缺少来源行:\n%s", out)
		}
	})

	t.Run("无检索结果不附加来源", func(t *testing.T) {
		if out := formatSources(nil); out != "" {
			t.Errorf("期望空字符串，但得到 %q", out)
		}
	})
}

func TestCosine(t *testing.T) {
	t.Run("相同向量相似度为1", func(t *testing.T) {
		v := []float32{1, 2, 3}
		if got := cosine(v, v); math.Abs(got-1.0) > 1e-6 {
			t.Errorf("期望1.0，但得到 %f", got)
		}
	})

	t.Run("正交向量相似度为0", func(t *testing.T) {
		if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
			t.Errorf("期望0，但得到 %f", got)
		}
	})

	t.Run("长度不一致返回0", func(t *testing.T) {
		if got := cosine([]float32{1, 2}, []float32{1}); got != 0 {
			t.Errorf("期望0，但得到 %f", got)
		}
	})

	t.Run("零向量返回0", func(t *testing.T) {
		if got := cosine([]float32{0, 0}, []float32{1, 2}); got != 0 {
			t.Errorf("期望0，但得到 %f", got)
		}
	})
}
