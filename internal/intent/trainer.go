package intent

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"
)

// TrainerConfig 训练配置
type TrainerConfig struct {
	EmbeddingDim int
	HiddenDim    int
	NumLayers    int
	Dropout      float64
	MaxSeqLength int
	MinWordFreq  int
	BatchSize    int
	Epochs       int
	LearningRate float64
	ClipNorm     float64 // 梯度全局范数上限
	Seed         int64
}

// DefaultTrainerConfig 与历史训练配置一致的默认超参数
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		EmbeddingDim: 50,
		HiddenDim:    64,
		NumLayers:    1,
		Dropout:      0.2,
		MaxSeqLength: 30,
		MinWordFreq:  1,
		BatchSize:    8,
		Epochs:       20,
		LearningRate: 0.001,
		ClipNorm:     1.0,
		Seed:         42,
	}
}

// EpochStats 单轮训练统计
type EpochStats struct {
	Epoch    int
	Loss     float64
	Accuracy float64
}

// Trainer 意图分类器的监督训练器
type Trainer struct {
	cfg TrainerConfig
	// OnEpochEnd 每轮结束时回调（进度展示用），可为nil
	OnEpochEnd func(stats EpochStats)
}

// withDefaults 逐字段用默认值填充未设置的超参数，已设置的字段保持不变
// Dropout保留零值（单层网络本就不启用dropout）；Seed零值视为未设置
func (cfg TrainerConfig) withDefaults() TrainerConfig {
	def := DefaultTrainerConfig()
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = def.EmbeddingDim
	}
	if cfg.HiddenDim <= 0 {
		cfg.HiddenDim = def.HiddenDim
	}
	if cfg.NumLayers <= 0 {
		cfg.NumLayers = def.NumLayers
	}
	if cfg.MaxSeqLength <= 0 {
		cfg.MaxSeqLength = def.MaxSeqLength
	}
	if cfg.MinWordFreq <= 0 {
		cfg.MinWordFreq = def.MinWordFreq
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.ClipNorm <= 0 {
		cfg.ClipNorm = def.ClipNorm
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	return cfg
}

// NewTrainer 创建训练器
func NewTrainer(cfg TrainerConfig) *Trainer {
	return &Trainer{cfg: cfg.withDefaults()}
}

// Train 在标注样本上训练出新的checkpoint
// 样本为空返回ErrInsufficientData；训练是纯函数式的：失败时不产生任何
// 可被推理读到的半成品权重，旧checkpoint由调用方自行保留
// 取消检查发生在epoch边界
func (tr *Trainer) Train(ctx context.Context, examples []TrainingExample) (*Checkpoint, error) {
	if len(examples) == 0 {
		return nil, ErrInsufficientData
	}

	texts := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
	}

	// 标签集从训练集推导，按首次出现顺序编号，保证可复现
	labels := make([]string, 0)
	labelIndex := make(map[string]int)
	for _, ex := range examples {
		if _, ok := labelIndex[ex.Label]; !ok {
			labelIndex[ex.Label] = len(labels)
			labels = append(labels, ex.Label)
		}
	}

	vocab := BuildVocabulary(texts, tr.cfg.MinWordFreq)
	log.Printf("[训练器] 训练数据: %d 条文本, %d 种意图: %v", len(texts), len(labels), labels)

	hp := Hyperparameters{
		VocabSize:    vocab.Size(),
		EmbeddingDim: tr.cfg.EmbeddingDim,
		HiddenDim:    tr.cfg.HiddenDim,
		OutputDim:    len(labels),
		NumLayers:    tr.cfg.NumLayers,
		Dropout:      tr.cfg.Dropout,
		MaxSeqLength: tr.cfg.MaxSeqLength,
	}
	classifier := NewClassifier(hp, tr.cfg.Seed)

	// 预先数值化所有样本
	sequences := make([][]int, len(examples))
	targets := make([]int, len(examples))
	for i, ex := range examples {
		sequences[i] = vocab.Numericalize(ex.Text, tr.cfg.MaxSeqLength)
		targets[i] = labelIndex[ex.Label]
	}

	opt := newAdam(classifier.WeightsRef(), tr.cfg.LearningRate)
	rng := rand.New(rand.NewSource(tr.cfg.Seed))
	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= tr.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("训练在第 %d 轮被取消: %w", epoch, ctx.Err())
		default:
		}

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		totalLoss := 0.0
		correct := 0
		batches := 0

		for start := 0; start < len(order); start += tr.cfg.BatchSize {
			end := start + tr.cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			batch := order[start:end]

			g := newGrads(hp)
			for _, idx := range batch {
				loss, hit := backpropExample(classifier, sequences[idx], targets[idx], g)
				totalLoss += loss
				if hit {
					correct++
				}
			}
			g.scale(1.0 / float64(len(batch)))
			g.clipGlobalNorm(tr.cfg.ClipNorm)
			opt.step(classifier.WeightsRef(), g)
			batches++
		}

		stats := EpochStats{
			Epoch:    epoch,
			Loss:     totalLoss / float64(len(order)),
			Accuracy: float64(correct) / float64(len(order)),
		}
		if epoch%5 == 0 || epoch == tr.cfg.Epochs {
			log.Printf("[训练器] Epoch: %d/%d, Loss: %.4f, Accuracy: %.4f",
				epoch, tr.cfg.Epochs, stats.Loss, stats.Accuracy)
		}
		if tr.OnEpochEnd != nil {
			tr.OnEpochEnd(stats)
		}
	}

	return &Checkpoint{
		Version:   CheckpointVersion,
		CreatedAt: time.Now(),
		Words:     vocab.Words(),
		Labels:    labels,
		Hyper:     classifier.Hyperparameters(),
		Weights:   classifier.WeightsRef(),
	}, nil
}

// backpropExample 单样本前向+反向，梯度累加进g，返回损失和是否预测正确
func backpropExample(c *Classifier, tokenIDs []int, target int, g *grads) (float64, bool) {
	hp := c.Hyperparameters()
	H := hp.HiddenDim

	fTrace := c.runLSTM(tokenIDs, &c.w.Forward, false)
	bTrace := c.runLSTM(tokenIDs, &c.w.Backward, true)
	hf := fTrace.lastHidden()
	hb := bTrace.lastHidden()
	probs := softmax(c.project(hf, hb))

	p := probs[target]
	if p < 1e-12 {
		p = 1e-12
	}
	loss := -math.Log(p)
	pred, _ := Argmax(probs)

	// 交叉熵对logits的梯度: p - y
	dLogits := make([]float64, hp.OutputDim)
	copy(dLogits, probs)
	dLogits[target] -= 1

	// 全连接层梯度
	dhf := make([]float64, H)
	dhb := make([]float64, H)
	for k := 0; k < H; k++ {
		rowF := c.w.FCWeight[k]
		rowB := c.w.FCWeight[H+k]
		for j, dl := range dLogits {
			g.FCWeight[k][j] += hf[k] * dl
			g.FCWeight[H+k][j] += hb[k] * dl
			dhf[k] += dl * rowF[j]
			dhb[k] += dl * rowB[j]
		}
	}
	for j, dl := range dLogits {
		g.FCBias[j] += dl
	}

	backpropLSTM(c, fTrace, &c.w.Forward, &g.Forward, g.Embedding, dhf)
	backpropLSTM(c, bTrace, &c.w.Backward, &g.Backward, g.Embedding, dhb)

	// PAD嵌入保持冻结
	for d := range g.Embedding[PadID] {
		g.Embedding[PadID][d] = 0
	}

	return loss, pred == target
}

// backpropLSTM 沿时间反向传播单方向LSTM
// dLast为末时间步隐藏态的梯度，早于末步的隐藏态梯度只来自循环连接
func backpropLSTM(c *Classifier, trace *lstmTrace, p *lstmParams, gp *lstmGrads, gEmb [][]float64, dLast []float64) {
	hp := c.Hyperparameters()
	H := hp.HiddenDim

	dh := make([]float64, H)
	copy(dh, dLast)
	dc := make([]float64, H)

	for s := len(trace.steps) - 1; s >= 0; s-- {
		step := trace.steps[s]
		var hPrev, cPrev []float64
		if s > 0 {
			hPrev = trace.steps[s-1].h
			cPrev = trace.steps[s-1].c
		} else {
			hPrev = make([]float64, H)
			cPrev = make([]float64, H)
		}

		da := make([]float64, 4*H)
		dcNext := make([]float64, H)
		for k := 0; k < H; k++ {
			do := dh[k] * step.tanhC[k]
			dck := dc[k] + dh[k]*step.o[k]*(1-step.tanhC[k]*step.tanhC[k])

			di := dck * step.g[k]
			df := dck * cPrev[k]
			dg := dck * step.i[k]
			dcNext[k] = dck * step.f[k]

			da[k] = di * step.i[k] * (1 - step.i[k])
			da[H+k] = df * step.f[k] * (1 - step.f[k])
			da[2*H+k] = dg * (1 - step.g[k]*step.g[k])
			da[3*H+k] = do * step.o[k] * (1 - step.o[k])
		}

		x := c.w.Embedding[step.tokenID]
		embGrad := gEmb[step.tokenID]
		for d, xv := range x {
			rowW := p.Wx[d]
			rowG := gp.Wx[d]
			acc := 0.0
			for k, dav := range da {
				rowG[k] += xv * dav
				acc += dav * rowW[k]
			}
			embGrad[d] += acc
		}

		dhPrev := make([]float64, H)
		for hIdx, hv := range hPrev {
			rowW := p.Wh[hIdx]
			rowG := gp.Wh[hIdx]
			acc := 0.0
			for k, dav := range da {
				rowG[k] += hv * dav
				acc += dav * rowW[k]
			}
			dhPrev[hIdx] = acc
		}
		for k, dav := range da {
			gp.B[k] += dav
		}

		dh = dhPrev
		dc = dcNext
	}
}

// lstmGrads 单方向LSTM参数梯度
type lstmGrads struct {
	Wx [][]float64
	Wh [][]float64
	B  []float64
}

// grads 全部参数梯度，与Weights形状一一对应
type grads struct {
	Embedding [][]float64
	Forward   lstmGrads
	Backward  lstmGrads
	FCWeight  [][]float64
	FCBias    []float64
}

func newGrads(hp Hyperparameters) *grads {
	return &grads{
		Embedding: zeroMatrix(hp.VocabSize, hp.EmbeddingDim),
		Forward: lstmGrads{
			Wx: zeroMatrix(hp.EmbeddingDim, 4*hp.HiddenDim),
			Wh: zeroMatrix(hp.HiddenDim, 4*hp.HiddenDim),
			B:  make([]float64, 4*hp.HiddenDim),
		},
		Backward: lstmGrads{
			Wx: zeroMatrix(hp.EmbeddingDim, 4*hp.HiddenDim),
			Wh: zeroMatrix(hp.HiddenDim, 4*hp.HiddenDim),
			B:  make([]float64, 4*hp.HiddenDim),
		},
		FCWeight: zeroMatrix(2*hp.HiddenDim, hp.OutputDim),
		FCBias:   make([]float64, hp.OutputDim),
	}
}

// flat 按固定顺序展开所有梯度切片，与weightSlices的顺序严格一致
func (g *grads) flat() [][]float64 {
	out := make([][]float64, 0)
	out = append(out, g.Embedding...)
	out = append(out, g.Forward.Wx...)
	out = append(out, g.Forward.Wh...)
	out = append(out, g.Forward.B)
	out = append(out, g.Backward.Wx...)
	out = append(out, g.Backward.Wh...)
	out = append(out, g.Backward.B)
	out = append(out, g.FCWeight...)
	out = append(out, g.FCBias)
	return out
}

// weightSlices 按固定顺序展开所有权重切片
func weightSlices(w *Weights) [][]float64 {
	out := make([][]float64, 0)
	out = append(out, w.Embedding...)
	out = append(out, w.Forward.Wx...)
	out = append(out, w.Forward.Wh...)
	out = append(out, w.Forward.B)
	out = append(out, w.Backward.Wx...)
	out = append(out, w.Backward.Wh...)
	out = append(out, w.Backward.B)
	out = append(out, w.FCWeight...)
	out = append(out, w.FCBias)
	return out
}

func (g *grads) scale(factor float64) {
	for _, row := range g.flat() {
		for i := range row {
			row[i] *= factor
		}
	}
}

// clipGlobalNorm 按全局范数裁剪梯度，防止小批量上的梯度爆炸
func (g *grads) clipGlobalNorm(maxNorm float64) {
	sum := 0.0
	rows := g.flat()
	for _, row := range rows {
		for _, v := range row {
			sum += v * v
		}
	}
	norm := math.Sqrt(sum)
	if norm <= maxNorm || norm == 0 {
		return
	}
	factor := maxNorm / norm
	for _, row := range rows {
		for i := range row {
			row[i] *= factor
		}
	}
}

// adam Adam优化器
type adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64
	t       int
	m       [][]float64
	v       [][]float64
}

func newAdam(w *Weights, lr float64) *adam {
	shapes := weightSlices(w)
	m := make([][]float64, len(shapes))
	v := make([][]float64, len(shapes))
	for i, row := range shapes {
		m[i] = make([]float64, len(row))
		v[i] = make([]float64, len(row))
	}
	return &adam{lr: lr, beta1: 0.9, beta2: 0.999, epsilon: 1e-8, m: m, v: v}
}

func (a *adam) step(w *Weights, g *grads) {
	a.t++
	wRows := weightSlices(w)
	gRows := g.flat()
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, row := range wRows {
		gRow := gRows[i]
		mRow := a.m[i]
		vRow := a.v[i]
		for j := range row {
			gv := gRow[j]
			mRow[j] = a.beta1*mRow[j] + (1-a.beta1)*gv
			vRow[j] = a.beta2*vRow[j] + (1-a.beta2)*gv*gv
			mHat := mRow[j] / bc1
			vHat := vRow[j] / bc2
			row[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.epsilon)
		}
	}
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
