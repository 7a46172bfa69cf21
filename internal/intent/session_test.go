package intent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jasonhuang/blog-assistant/internal/models"
)

func newTestSession(t *testing.T, disableModel bool) *ClassifierSession {
	t.Helper()
	return NewSession(SessionOptions{
		ModelDir:         t.TempDir(),
		TrainingDataPath: filepath.Join(t.TempDir(), "不存在.json"),
		Trainer:          tinyTrainerConfig(),
		DisableModel:     disableModel,
	})
}

func TestClassifierSessionFallbackMode(t *testing.T) {
	s := newTestSession(t, true)

	t.Run("模型禁用时走关键词回退", func(t *testing.T) {
		d := s.Classify("有微信吗")
		if d.Intent != models.IntentContactAuthor {
			t.Errorf("期望意图 %s，但得到 %s", models.IntentContactAuthor, d.Intent)
		}
		if d.Provenance != models.ProvenanceKeywordFallback {
			t.Errorf("期望来源 %s，但得到 %s", models.ProvenanceKeywordFallback, d.Provenance)
		}
		if d.Slots["contact_method"] != "微信" {
			t.Errorf("期望提取contact_method=微信，但得到 %v", d.Slots)
		}
	})

	t.Run("模型不可用", func(t *testing.T) {
		if s.ModelAvailable() {
			t.Error("禁用模型的会话不应报告模型可用")
		}
		if s.Labels() != nil {
			t.Error("模型不可用时标签集应为nil")
		}
	})

	t.Run("空输入也返回有效决策", func(t *testing.T) {
		d := s.Classify("")
		if d.Intent == "" {
			t.Error("空输入也应返回非空意图")
		}
		if d.Confidence <= 0 {
			t.Errorf("空输入的置信度应大于0，但得到 %f", d.Confidence)
		}
	})
}

func TestClassifierSessionTraining(t *testing.T) {
	t.Run("无checkpoint时首次使用自动训练", func(t *testing.T) {
		s := newTestSession(t, false)
		d := s.Classify("怎么联系博主")
		if d.Intent == "" {
			t.Fatal("期望非空决策")
		}
		if !s.ModelAvailable() {
			t.Error("自动训练后模型应可用")
		}
		t.Logf("✅ 自动训练完成，标签集: %v", s.Labels())
	})

	t.Run("训练好的模型可被新会话直接加载", func(t *testing.T) {
		dir := t.TempDir()
		opts := SessionOptions{
			ModelDir:         dir,
			TrainingDataPath: filepath.Join(dir, "不存在.json"),
			Trainer:          tinyTrainerConfig(),
		}
		first := NewSession(opts)
		d1 := first.Classify("怎么联系博主")

		second := NewSession(opts)
		d2 := second.Classify("怎么联系博主")

		if d1.Intent != d2.Intent || d1.Confidence != d2.Confidence {
			t.Errorf("加载同一checkpoint的会话决策不一致: (%s, %f) vs (%s, %f)",
				d1.Intent, d1.Confidence, d2.Intent, d2.Confidence)
		}
	})

	t.Run("checkpoint损坏触发重新训练", func(t *testing.T) {
		dir := t.TempDir()
		store := NewModelStore(dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(store.Path(), []byte("垃圾数据"), 0644); err != nil {
			t.Fatal(err)
		}

		s := NewSession(SessionOptions{
			ModelDir:         dir,
			TrainingDataPath: filepath.Join(dir, "不存在.json"),
			Trainer:          tinyTrainerConfig(),
		})
		if !s.ModelAvailable() {
			t.Error("损坏的checkpoint应触发重新训练而不是模型不可用")
		}
	})

	t.Run("空训练文件重训失败且旧模型不受影响", func(t *testing.T) {
		dir := t.TempDir()
		s := NewSession(SessionOptions{
			ModelDir:         dir,
			TrainingDataPath: filepath.Join(dir, "不存在.json"),
			Trainer:          tinyTrainerConfig(),
		})
		if !s.ModelAvailable() {
			t.Fatal("前置条件失败: 模型应可用")
		}

		// 文件合法但没有任何有效记录
		emptyFile := filepath.Join(dir, "empty.json")
		if err := os.WriteFile(emptyFile, []byte(`{"training_data": []}`), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := s.TrainFromFile(context.Background(), emptyFile)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("期望ErrInsufficientData，但得到 %v", err)
		}
		if !s.ModelAvailable() {
			t.Error("重训失败后旧模型应保持可用")
		}
	})

	t.Run("部分设置的训练配置只补默认值不整体覆盖", func(t *testing.T) {
		s := NewSession(SessionOptions{
			ModelDir: t.TempDir(),
			Trainer: TrainerConfig{
				HiddenDim: 16,
				Epochs:    3,
			},
			DisableModel: true,
		})
		got := s.opts.Trainer
		if got.HiddenDim != 16 {
			t.Errorf("已设置的HiddenDim应保留16，但得到 %d", got.HiddenDim)
		}
		if got.Epochs != 3 {
			t.Errorf("已设置的Epochs应保留3，但得到 %d", got.Epochs)
		}
		def := DefaultTrainerConfig()
		if got.EmbeddingDim != def.EmbeddingDim {
			t.Errorf("未设置的EmbeddingDim应取默认值 %d，但得到 %d", def.EmbeddingDim, got.EmbeddingDim)
		}
		if got.MaxSeqLength != def.MaxSeqLength {
			t.Errorf("未设置的MaxSeqLength应取默认值 %d，但得到 %d", def.MaxSeqLength, got.MaxSeqLength)
		}
		if got.LearningRate != def.LearningRate {
			t.Errorf("未设置的LearningRate应取默认值 %f，但得到 %f", def.LearningRate, got.LearningRate)
		}
	})

	t.Run("训练数据文件缺失时用默认数据重训成功", func(t *testing.T) {
		s := newTestSession(t, false)
		ckpt, err := s.Retrain(context.Background())
		if err != nil {
			t.Fatalf("重训失败: %v", err)
		}
		if len(ckpt.Labels) == 0 {
			t.Error("重训产出的checkpoint标签集为空")
		}
	})
}
