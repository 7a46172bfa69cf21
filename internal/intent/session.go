package intent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

// SessionOptions 分类会话配置
type SessionOptions struct {
	ModelDir         string
	TrainingDataPath string
	Trainer          TrainerConfig
	Arbiter          ArbiterConfig
	Keywords         *KeywordTable
	// DisableModel 强制关闭神经网络模型，所有请求走关键词回退
	// 用于降级运维和测试
	DisableModel bool
}

// runtimeModel 加载进会话的只读推理状态
// 一经安装不再修改；重新训练通过整体替换指针完成
type runtimeModel struct {
	vocab      *Vocabulary
	classifier *Classifier
	labels     []string
	maxSeqLen  int
}

// ClassifierSession 意图识别会话
// 显式持有词汇表、checkpoint和关键词表，不依赖任何全局可变状态；
// 推理路径只读，可被多个请求并发调用
type ClassifierSession struct {
	opts    SessionOptions
	store   *ModelStore
	arbiter *Arbiter

	mu          sync.RWMutex
	rt          *runtimeModel // nil表示模型不可用
	initialized bool
}

// NewSession 创建意图识别会话
// 模型的加载/训练延迟到第一次使用时进行
func NewSession(opts SessionOptions) *ClassifierSession {
	if opts.Keywords == nil {
		opts.Keywords = DefaultKeywordTable()
	}
	// 逐字段填充默认超参数，调用方已设置的字段原样保留
	opts.Trainer = opts.Trainer.withDefaults()
	return &ClassifierSession{
		opts:    opts,
		store:   NewModelStore(opts.ModelDir),
		arbiter: NewArbiter(opts.Arbiter, opts.Keywords),
	}
}

// Classify 对用户输入做意图识别
// 对任意字符串输入（含空串）都返回有效决策，不会返回错误；
// 模型不可用时静默走关键词回退，来源通过Provenance字段可观测
func (s *ClassifierSession) Classify(text string) models.IntentDecision {
	s.ensureInitialized()

	s.mu.RLock()
	rt := s.rt
	s.mu.RUnlock()

	if rt == nil {
		return s.arbiter.Decide(text, nil)
	}

	ids := rt.vocab.Numericalize(text, rt.maxSeqLen)
	probs := rt.classifier.Predict(ids)
	idx, confidence := Argmax(probs)

	if idx < 0 || idx >= len(rt.labels) {
		// 理论上不可达，按低置信度默认意图处理
		return s.arbiter.Decide(text, &ModelResult{Intent: s.opts.Keywords.DefaultIntent, Confidence: 0.5})
	}

	return s.arbiter.Decide(text, &ModelResult{Intent: rt.labels[idx], Confidence: confidence})
}

// ModelAvailable 模型是否可用（已初始化并安装checkpoint）
func (s *ClassifierSession) ModelAvailable() bool {
	s.ensureInitialized()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rt != nil
}

// Labels 当前已安装模型的标签集（模型不可用时返回nil）
func (s *ClassifierSession) Labels() []string {
	s.ensureInitialized()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rt == nil {
		return nil
	}
	out := make([]string, len(s.rt.labels))
	copy(out, s.rt.labels)
	return out
}

// ensureInitialized 首次使用时加载或训练模型
// 初始化在互斥锁下串行执行，并发调用方不会竞争写同一checkpoint文件，
// 后到者直接复用先到者安装好的模型
func (s *ClassifierSession) ensureInitialized() {
	s.mu.RLock()
	done := s.initialized
	s.mu.RUnlock()
	if done {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	defer func() { s.initialized = true }()

	if s.opts.DisableModel {
		log.Printf("[意图会话] 模型已禁用，使用关键词回退模式")
		return
	}

	ckpt, err := s.store.Load()
	switch {
	case err == nil:
		if installErr := s.installLocked(ckpt); installErr == nil {
			log.Printf("[意图会话] 意图识别模型加载成功")
			return
		} else {
			log.Printf("[意图会话] checkpoint安装失败: %v，触发重新训练", installErr)
		}
	case errors.Is(err, ErrCheckpointNotFound):
		log.Printf("[意图会话] 未找到预训练模型，开始训练...")
	case errors.Is(err, ErrCorruptCheckpoint):
		log.Printf("[意图会话] checkpoint已损坏: %v，触发重新训练", err)
	default:
		log.Printf("[意图会话] 加载checkpoint失败: %v，触发重新训练", err)
	}

	if err := s.retrainLocked(context.Background()); err != nil {
		// 训练失败不致命，关键词回退保证服务可用
		log.Printf("[意图会话] 模型训练失败: %v，将使用关键词回退模式", err)
	}
}

// TrainFromFile 管理操作：从训练数据文件重新训练并安装新checkpoint
// 文件缺失或损坏时回退到内置默认训练集；训练失败时旧模型保持不变
func (s *ClassifierSession) TrainFromFile(ctx context.Context, path string) (*Checkpoint, error) {
	examples, usedDefault := LoadTrainingExamples(path)
	if usedDefault {
		log.Printf("[意图会话] 使用默认训练数据重新训练")
	}
	return s.trainAndInstall(ctx, examples)
}

// Retrain 管理操作：用配置的训练数据路径重新训练
func (s *ClassifierSession) Retrain(ctx context.Context) (*Checkpoint, error) {
	return s.TrainFromFile(ctx, s.opts.TrainingDataPath)
}

// trainAndInstall 训练新模型并原子安装
// 旧checkpoint在新checkpoint保存且安装成功前不被触碰
func (s *ClassifierSession) trainAndInstall(ctx context.Context, examples []TrainingExample) (*Checkpoint, error) {
	trainer := NewTrainer(s.opts.Trainer)
	ckpt, err := trainer.Train(ctx, examples)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ckpt); err != nil {
		return nil, fmt.Errorf("保存checkpoint失败: %w", err)
	}
	if err := s.installLocked(ckpt); err != nil {
		return nil, err
	}
	s.initialized = true
	return ckpt, nil
}

// retrainLocked 持锁状态下的训练+安装（初始化路径专用）
func (s *ClassifierSession) retrainLocked(ctx context.Context) error {
	examples, _ := LoadTrainingExamples(s.opts.TrainingDataPath)
	trainer := NewTrainer(s.opts.Trainer)
	ckpt, err := trainer.Train(ctx, examples)
	if err != nil {
		return err
	}
	if err := s.store.Save(ckpt); err != nil {
		return fmt.Errorf("保存checkpoint失败: %w", err)
	}
	return s.installLocked(ckpt)
}

// installLocked 把checkpoint装配成只读推理状态，调用方必须持有写锁
func (s *ClassifierSession) installLocked(ckpt *Checkpoint) error {
	vocab, err := VocabularyFromWords(ckpt.Words)
	if err != nil {
		return err
	}
	s.rt = &runtimeModel{
		vocab:      vocab,
		classifier: NewClassifierWithWeights(ckpt.Hyper, ckpt.Weights),
		labels:     ckpt.Labels,
		maxSeqLen:  ckpt.Hyper.MaxSeqLength,
	}
	return nil
}
