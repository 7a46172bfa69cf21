package intent

import "errors"

// 意图识别核心的错误分类
var (
	// ErrInsufficientData 训练样本为空时由训练器返回
	ErrInsufficientData = errors.New("训练数据为空，无法训练意图模型")

	// ErrCheckpointNotFound checkpoint文件不存在
	ErrCheckpointNotFound = errors.New("未找到意图模型checkpoint")

	// ErrCorruptCheckpoint checkpoint的超参数与权重形状不匹配
	ErrCorruptCheckpoint = errors.New("意图模型checkpoint已损坏")
)
