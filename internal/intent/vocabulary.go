package intent

import (
	"fmt"
	"log"
	"sort"
)

// 保留token
const (
	PadToken = "<PAD>"
	UnkToken = "<UNK>"
	PadID    = 0
	UnkID    = 1
)

// Vocabulary token与id的双向映射
// 构建完成后只读；重建时整体替换，不做原地修改
type Vocabulary struct {
	wordToID map[string]int
	idToWord []string // 下标即id
}

// BuildVocabulary 从语料构建词汇表
// id按词频降序分配（词频相同按首次出现顺序），从2开始；0/1为保留token
// 相同语料和minFreq下结果完全可复现
func BuildVocabulary(corpus []string, minFreq int) *Vocabulary {
	if minFreq < 1 {
		minFreq = 1
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	seq := 0

	for _, text := range corpus {
		for _, token := range Tokenize(text) {
			if _, ok := counts[token]; !ok {
				firstSeen[token] = seq
				seq++
			}
			counts[token]++
		}
	}

	kept := make([]string, 0, len(counts))
	for word, c := range counts {
		if c >= minFreq {
			kept = append(kept, word)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if counts[kept[i]] != counts[kept[j]] {
			return counts[kept[i]] > counts[kept[j]]
		}
		return firstSeen[kept[i]] < firstSeen[kept[j]]
	})

	v := &Vocabulary{
		wordToID: make(map[string]int, len(kept)+2),
		idToWord: make([]string, 0, len(kept)+2),
	}
	v.add(PadToken)
	v.add(UnkToken)
	for _, word := range kept {
		v.add(word)
	}

	log.Printf("[词汇表] 构建完成，词汇量: %d", v.Size())
	return v
}

// VocabularyFromWords 从有序词表恢复词汇表（checkpoint加载路径）
func VocabularyFromWords(words []string) (*Vocabulary, error) {
	if len(words) < 2 || words[PadID] != PadToken || words[UnkID] != UnkToken {
		return nil, fmt.Errorf("%w: 词表缺少保留token", ErrCorruptCheckpoint)
	}
	v := &Vocabulary{
		wordToID: make(map[string]int, len(words)),
		idToWord: make([]string, 0, len(words)),
	}
	for _, word := range words {
		v.add(word)
	}
	return v, nil
}

func (v *Vocabulary) add(word string) {
	if _, ok := v.wordToID[word]; ok {
		return
	}
	v.wordToID[word] = len(v.idToWord)
	v.idToWord = append(v.idToWord, word)
}

// Size 词汇量（含保留token）
func (v *Vocabulary) Size() int {
	return len(v.idToWord)
}

// Words 返回按id排列的词表副本，用于持久化
func (v *Vocabulary) Words() []string {
	out := make([]string, len(v.idToWord))
	copy(out, v.idToWord)
	return out
}

// ID 查询token的id，未知token返回UnkID
func (v *Vocabulary) ID(word string) int {
	if id, ok := v.wordToID[word]; ok {
		return id
	}
	return UnkID
}

// Numericalize 文本转定长id序列
// 不足maxLength用PAD补齐，超出部分从尾部截断；输出长度恒等于maxLength
func (v *Vocabulary) Numericalize(text string, maxLength int) []int {
	ids := make([]int, 0, maxLength)
	for _, token := range Tokenize(text) {
		if len(ids) >= maxLength {
			break
		}
		ids = append(ids, v.ID(token))
	}
	for len(ids) < maxLength {
		ids = append(ids, PadID)
	}
	return ids
}
