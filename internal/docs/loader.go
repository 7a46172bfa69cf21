package docs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document 一个可检索的博客文档片段
type Document struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`   // 源文件路径
	Filename     string  `json:"filename"` // 文件名（展示用）
	Category     string  `json:"category"` // 前言中的categories字段
	Content      string  `json:"content"`
	LastModified int64   `json:"lastModified"` // 源文件修改时间（Unix秒）
}

// frontMatter Markdown前言中关心的字段
// categories既可能是字符串也可能是列表
type frontMatter struct {
	Title      string      `yaml:"title"`
	Categories interface{} `yaml:"categories"`
}

const defaultCategory = "未分类"

// maxChunkRunes 单个片段的最大长度（按rune计）
const maxChunkRunes = 600

// LoadDocuments 加载目录下所有Markdown文档并切分为片段
// 单个文件解析失败只记录日志，不中断整体加载
func LoadDocuments(blogPath string) ([]Document, error) {
	var documents []Document
	fileCount := 0

	err := filepath.Walk(blogPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("[文档加载] 访问 %s 失败: %v", path, err)
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".md") {
			return nil
		}

		docs, loadErr := loadFile(path, info)
		if loadErr != nil {
			log.Printf("[文档加载] 解析文件 %s 失败: %v", path, loadErr)
			return nil
		}
		documents = append(documents, docs...)
		fileCount++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历博客目录失败: %w", err)
	}

	log.Printf("[文档加载] 成功加载 %d 个文档片段（来自 %d 个文件）", len(documents), fileCount)
	return documents, nil
}

func loadFile(path string, info os.FileInfo) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	category, body := splitFrontMatter(string(raw))
	chunks := chunkText(body)

	docs := make([]Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, Document{
			ID:           fmt.Sprintf("%s#%d", path, i),
			Source:       path,
			Filename:     filepath.Base(path),
			Category:     category,
			Content:      chunk,
			LastModified: info.ModTime().Unix(),
		})
	}
	return docs, nil
}

// splitFrontMatter 拆出YAML前言并提取categories，返回(分类, 正文)
func splitFrontMatter(content string) (string, string) {
	if !strings.HasPrefix(content, "---") {
		return defaultCategory, content
	}

	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return defaultCategory, content
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return defaultCategory, strings.TrimLeft(rest[end+4:], "\r\n")
	}

	return categoryString(fm.Categories), strings.TrimLeft(rest[end+4:], "\r\n")
}

// categoryString 把categories字段规整为展示字符串
func categoryString(v interface{}) string {
	switch c := v.(type) {
	case string:
		if c != "" {
			return c
		}
	case []interface{}:
		parts := make([]string, 0, len(c))
		for _, item := range c {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "/")
		}
	}
	return defaultCategory
}

// chunkText 按段落切分正文，相邻段落合并到上限长度
func chunkText(body string) []string {
	paragraphs := strings.Split(body, "\n\n")
	var chunks []string
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, text)
		}
		current.Reset()
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(p)) > maxChunkRunes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	return chunks
}
