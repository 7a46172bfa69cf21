package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/jasonhuang/blog-assistant/internal/docs"
)

// indexEntry 索引中的一条记录：文档片段 + 嵌入向量
type indexEntry struct {
	Document docs.Document `json:"document"`
	Vector   []float32     `json:"vector"`
}

// VectorIndex 内存向量索引
// 嵌入通过langchaingo的Embedder计算；索引整体持久化为JSON文件，
// 启动时增量同步变更过的博客文件
type VectorIndex struct {
	path     string
	embedder embeddings.Embedder

	mu      sync.RWMutex
	entries []indexEntry
}

// NewVectorIndex 创建向量索引并尝试加载已持久化的数据
func NewVectorIndex(path string, embedder embeddings.Embedder) *VectorIndex {
	idx := &VectorIndex{path: path, embedder: embedder}
	if err := idx.load(); err != nil {
		log.Printf("[向量索引] 加载已有索引失败: %v，将重建", err)
	}
	return idx
}

func (idx *VectorIndex) load() error {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var entries []indexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()
	log.Printf("[向量索引] 成功加载现有向量索引，共 %d 条", len(entries))
	return nil
}

func (idx *VectorIndex) save() error {
	idx.mu.RLock()
	data, err := json.Marshal(idx.entries)
	idx.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("序列化向量索引失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(idx.path), 0755); err != nil {
		return fmt.Errorf("创建索引目录失败: %w", err)
	}
	if err := os.WriteFile(idx.path, data, 0644); err != nil {
		return fmt.Errorf("写入向量索引失败: %w", err)
	}
	return nil
}

// Sync 用最新的文档集增量更新索引
// 只对新增或修改过的源文件重新计算嵌入，未变更文件复用已有向量
func (idx *VectorIndex) Sync(ctx context.Context, documents []docs.Document) error {
	idx.mu.RLock()
	existing := make(map[string]int64) // source -> lastModified
	for _, e := range idx.entries {
		if prev, ok := existing[e.Document.Source]; !ok || e.Document.LastModified > prev {
			existing[e.Document.Source] = e.Document.LastModified
		}
	}
	idx.mu.RUnlock()

	changed := make(map[string]bool)
	var pending []docs.Document
	current := make(map[string]bool)
	for _, doc := range documents {
		current[doc.Source] = true
		last, known := existing[doc.Source]
		if !known || doc.LastModified > last {
			changed[doc.Source] = true
			pending = append(pending, doc)
		}
	}

	if len(pending) == 0 {
		log.Printf("[向量索引] 未检测到文件变更，无需更新")
		return nil
	}

	texts := make([]string, len(pending))
	for i, doc := range pending {
		texts[i] = doc.Content
	}
	vectors, err := idx.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("计算文档嵌入失败: %w", err)
	}
	if len(vectors) != len(pending) {
		return fmt.Errorf("嵌入结果数量 %d 与文档数量 %d 不符", len(vectors), len(pending))
	}

	idx.mu.Lock()
	// 丢弃变更文件的旧片段和已删除文件的片段
	kept := idx.entries[:0]
	for _, e := range idx.entries {
		if !changed[e.Document.Source] && current[e.Document.Source] {
			kept = append(kept, e)
		}
	}
	idx.entries = kept
	for i, doc := range pending {
		idx.entries = append(idx.entries, indexEntry{Document: doc, Vector: vectors[i]})
	}
	idx.mu.Unlock()

	log.Printf("[向量索引] 增量更新 %d 个文档片段", len(pending))
	return idx.save()
}

// Search 余弦相似度Top-K检索
func (idx *VectorIndex) Search(ctx context.Context, query string, k int) ([]docs.Document, error) {
	queryVec, err := idx.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("计算查询嵌入失败: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		doc   docs.Document
		score float64
	}
	results := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		results = append(results, scored{doc: e.Document, score: cosine(queryVec, e.Vector)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if k > len(results) {
		k = len(results)
	}
	out := make([]docs.Document, 0, k)
	for _, r := range results[:k] {
		out = append(out, r.doc)
	}
	return out, nil
}

// Count 索引中的片段数量
func (idx *VectorIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
