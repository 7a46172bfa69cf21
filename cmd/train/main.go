package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/jasonhuang/blog-assistant/internal/config"
	"github.com/jasonhuang/blog-assistant/internal/intent"
)

// 离线训练工具：读取训练数据，训练意图分类模型并写入checkpoint
// 训练好的模型由服务进程在启动时直接加载
func main() {
	cfg := config.Load()

	dataPath := flag.String("data", cfg.TrainingDataPath, "训练数据文件路径")
	modelDir := flag.String("model-dir", cfg.ModelDir, "checkpoint输出目录")
	epochs := flag.Int("epochs", cfg.Epochs, "训练轮数")
	flag.Parse()

	examples, usedDefault := intent.LoadTrainingExamples(*dataPath)
	if usedDefault {
		log.Printf("未找到有效训练数据文件 %s，使用内置默认训练集", *dataPath)
	}
	log.Printf("加载训练样本 %d 条", len(examples))

	trainerCfg := intent.TrainerConfig{
		EmbeddingDim: cfg.EmbeddingDim,
		HiddenDim:    cfg.HiddenDim,
		NumLayers:    cfg.NumLayers,
		Dropout:      cfg.Dropout,
		MaxSeqLength: cfg.MaxSeqLength,
		MinWordFreq:  cfg.MinWordFreq,
		BatchSize:    cfg.BatchSize,
		Epochs:       *epochs,
		LearningRate: cfg.LearningRate,
		ClipNorm:     1.0,
		Seed:         42,
	}

	bar := progressbar.NewOptions(trainerCfg.Epochs,
		progressbar.OptionSetDescription("训练意图模型"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	trainer := intent.NewTrainer(trainerCfg)
	trainer.OnEpochEnd = func(stats intent.EpochStats) {
		bar.Describe(fmt.Sprintf("训练意图模型 loss=%.4f acc=%.2f", stats.Loss, stats.Accuracy))
		bar.Add(1)
	}

	// Ctrl+C在epoch边界中断训练
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ckpt, err := trainer.Train(ctx, examples)
	if err != nil {
		log.Fatalf("训练失败: %v", err)
	}

	store := intent.NewModelStore(*modelDir)
	if err := store.Save(ckpt); err != nil {
		log.Fatalf("保存checkpoint失败: %v", err)
	}

	fmt.Fprintf(os.Stdout, "训练完成: 标签 %d 个, 词汇量 %d, checkpoint已保存到 %s\n",
		len(ckpt.Labels), len(ckpt.Words), store.Path())
}
