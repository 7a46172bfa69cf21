package docs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()

	withFrontMatter := `---
title: Go并发编程
categories:
  - 技术
  - Go
---
goroutine是Go的轻量级线程。

channel用于goroutine之间通信。`
	if err := os.WriteFile(filepath.Join(dir, "go.md"), []byte(withFrontMatter), 0644); err != nil {
		t.Fatal(err)
	}

	plain := "没有前言的普通文章内容。"
	if err := os.WriteFile(filepath.Join(dir, "plain.md"), []byte(plain), 0644); err != nil {
		t.Fatal(err)
	}

	// 非Markdown文件应被忽略
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("忽略我"), 0644); err != nil {
		t.Fatal(err)
	}

	documents, err := LoadDocuments(dir)
	if err != nil {
		t.Fatalf("加载文档失败: %v", err)
	}
	if len(documents) == 0 {
		t.Fatal("期望加载到文档片段")
	}

	var goDoc, plainDoc *Document
	for i := range documents {
		switch documents[i].Filename {
		case "go.md":
			goDoc = &documents[i]
		case "plain.md":
			plainDoc = &documents[i]
		case "notes.txt":
			t.Error("非Markdown文件不应被加载")
		}
	}

	t.Run("前言分类被提取", func(t *testing.T) {
		if goDoc == nil {
			t.Fatal("未加载go.md")
		}
		if goDoc.Category != "技术/Go" {
			t.Errorf("期望分类'技术/Go'，但得到 %q", goDoc.Category)
		}
		if strings.Contains(goDoc.Content, "title:") {
			t.Error("正文不应包含前言内容")
		}
	})

	t.Run("无前言使用默认分类", func(t *testing.T) {
		if plainDoc == nil {
			t.Fatal("未加载plain.md")
		}
		if plainDoc.Category != defaultCategory {
			t.Errorf("期望默认分类 %q，但得到 %q", defaultCategory, plainDoc.Category)
		}
	})
}

func TestChunkText(t *testing.T) {
	t.Run("短文本合并为单片段", func(t *testing.T) {
		chunks := chunkText("第一段。\n\n第二段。")
		if len(chunks) != 1 {
			t.Errorf("期望1个片段，但得到 %d", len(chunks))
		}
	})

	t.Run("超长文本被切分", func(t *testing.T) {
		long := strings.Repeat("这是一个很长的段落。", 50) + "\n\n" + strings.Repeat("另一个很长的段落。", 50)
		chunks := chunkText(long)
		if len(chunks) < 2 {
			t.Errorf("超长文本期望切分为多个片段，但得到 %d", len(chunks))
		}
	})

	t.Run("空文本返回空结果", func(t *testing.T) {
		if chunks := chunkText("\n\n  \n\n"); len(chunks) != 0 {
			t.Errorf("期望空结果，但得到 %v", chunks)
		}
	})
}

func TestCategoryString(t *testing.T) {
	if got := categoryString("技术"); got != "技术" {
		t.Errorf("字符串分类期望原样返回，但得到 %q", got)
	}
	if got := categoryString([]interface{}{"技术", "Go"}); got != "技术/Go" {
		t.Errorf("列表分类期望拼接，但得到 %q", got)
	}
	if got := categoryString(nil); got != defaultCategory {
		t.Errorf("缺失分类期望默认值，但得到 %q", got)
	}
}
