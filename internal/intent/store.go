package intent

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// CheckpointVersion checkpoint格式版本，决定存储文件名
const CheckpointVersion = 1

// Checkpoint 词汇表+标签集+权重的完整持久化快照
// 加载进推理会话后不可变；重新训练总是产生新的Checkpoint对象
type Checkpoint struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Words     []string        `json:"vocabulary"`      // 按id排列的词表
	Labels    []string        `json:"labels"`          // 按索引排列的标签集
	Hyper     Hyperparameters `json:"hyperparameters"` // 加载时用于形状校验
	Weights   *Weights        `json:"weights"`
}

// ModelStore checkpoint的文件存储
// 文件名由格式版本推导，保证不同版本的checkpoint互不覆盖
type ModelStore struct {
	modelDir string
}

// NewModelStore 创建模型存储
func NewModelStore(modelDir string) *ModelStore {
	return &ModelStore{modelDir: modelDir}
}

// Path 当前版本checkpoint的存储路径
func (s *ModelStore) Path() string {
	return filepath.Join(s.modelDir, fmt.Sprintf("intent_classifier_v%d.json", CheckpointVersion))
}

// Save 持久化checkpoint
// 先写临时文件再重命名，避免写一半的文件被后续Load读到
func (s *ModelStore) Save(ckpt *Checkpoint) error {
	if err := validateCheckpoint(ckpt); err != nil {
		return err
	}
	if err := os.MkdirAll(s.modelDir, 0755); err != nil {
		return fmt.Errorf("创建模型目录失败: %w", err)
	}

	data, err := json.Marshal(ckpt)
	if err != nil {
		return fmt.Errorf("序列化checkpoint失败: %w", err)
	}

	tmpPath := s.Path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("写入checkpoint临时文件失败: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("重命名checkpoint文件失败: %w", err)
	}

	log.Printf("[模型存储] checkpoint已保存: %s (词汇量 %d, 标签 %d)",
		s.Path(), len(ckpt.Words), len(ckpt.Labels))
	return nil
}

// Load 加载并校验checkpoint
// 文件不存在返回ErrCheckpointNotFound；超参数与权重形状不一致返回
// ErrCorruptCheckpoint，由调用方触发重新训练而不是崩溃
func (s *ModelStore) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("读取checkpoint失败: %w", err)
	}

	var ckpt Checkpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return nil, fmt.Errorf("%w: JSON解析失败: %v", ErrCorruptCheckpoint, err)
	}

	if err := validateCheckpoint(&ckpt); err != nil {
		return nil, err
	}

	log.Printf("[模型存储] checkpoint加载成功: %s", s.Path())
	return &ckpt, nil
}

// validateCheckpoint 校验超参数声明的形状与实际权重张量是否一致
func validateCheckpoint(ckpt *Checkpoint) error {
	if ckpt == nil || ckpt.Weights == nil {
		return fmt.Errorf("%w: 权重缺失", ErrCorruptCheckpoint)
	}
	hp := ckpt.Hyper
	w := ckpt.Weights

	if hp.VocabSize != len(ckpt.Words) {
		return fmt.Errorf("%w: 词表长度 %d 与vocab_size %d 不符",
			ErrCorruptCheckpoint, len(ckpt.Words), hp.VocabSize)
	}
	if hp.OutputDim != len(ckpt.Labels) {
		return fmt.Errorf("%w: 标签数 %d 与output_dim %d 不符",
			ErrCorruptCheckpoint, len(ckpt.Labels), hp.OutputDim)
	}
	if err := checkMatrix("embedding", w.Embedding, hp.VocabSize, hp.EmbeddingDim); err != nil {
		return err
	}
	for name, p := range map[string]*lstmParams{"forward": &w.Forward, "backward": &w.Backward} {
		if err := checkMatrix(name+".wx", p.Wx, hp.EmbeddingDim, 4*hp.HiddenDim); err != nil {
			return err
		}
		if err := checkMatrix(name+".wh", p.Wh, hp.HiddenDim, 4*hp.HiddenDim); err != nil {
			return err
		}
		if len(p.B) != 4*hp.HiddenDim {
			return fmt.Errorf("%w: %s.b 长度 %d, 期望 %d",
				ErrCorruptCheckpoint, name, len(p.B), 4*hp.HiddenDim)
		}
	}
	if err := checkMatrix("fc_weight", w.FCWeight, 2*hp.HiddenDim, hp.OutputDim); err != nil {
		return err
	}
	if len(w.FCBias) != hp.OutputDim {
		return fmt.Errorf("%w: fc_bias 长度 %d, 期望 %d",
			ErrCorruptCheckpoint, len(w.FCBias), hp.OutputDim)
	}
	return nil
}

func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%w: %s 行数 %d, 期望 %d", ErrCorruptCheckpoint, name, len(m), rows)
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%w: %s 第%d行长度 %d, 期望 %d",
				ErrCorruptCheckpoint, name, i, len(row), cols)
		}
	}
	return nil
}
