package intent

import (
	"math"
	"math/rand"
)

// Hyperparameters 模型超参数，与checkpoint一起持久化
// 加载时用于校验权重张量形状
type Hyperparameters struct {
	VocabSize    int     `json:"vocab_size"`
	EmbeddingDim int     `json:"embedding_dim"`
	HiddenDim    int     `json:"hidden_dim"`
	OutputDim    int     `json:"output_dim"`
	NumLayers    int     `json:"num_layers"`
	Dropout      float64 `json:"dropout"`
	MaxSeqLength int     `json:"max_seq_length"`
}

// lstmParams 单方向LSTM参数，四个门拼接存储，顺序为 i, f, g, o
type lstmParams struct {
	Wx [][]float64 `json:"wx"` // [EmbeddingDim][4*HiddenDim] 输入权重
	Wh [][]float64 `json:"wh"` // [HiddenDim][4*HiddenDim] 循环权重
	B  []float64   `json:"b"`  // [4*HiddenDim] 偏置
}

// Weights 分类器全部权重
type Weights struct {
	Embedding [][]float64 `json:"embedding"` // [VocabSize][EmbeddingDim]
	Forward   lstmParams  `json:"forward"`
	Backward  lstmParams  `json:"backward"`
	FCWeight  [][]float64 `json:"fc_weight"` // [2*HiddenDim][OutputDim]
	FCBias    []float64   `json:"fc_bias"`   // [OutputDim]
}

// Classifier 序列编码意图分类器
// 结构: embedding -> 双向LSTM(单层) -> 全连接 -> softmax
// 推理过程不修改任何权重，可并发调用
type Classifier struct {
	hp Hyperparameters
	w  *Weights
}

// NewClassifier 按超参数随机初始化分类器
// 单层配置下dropout强制为0，避免最小配置退化
func NewClassifier(hp Hyperparameters, seed int64) *Classifier {
	if hp.NumLayers <= 1 {
		hp.NumLayers = 1
		hp.Dropout = 0
	}

	rng := rand.New(rand.NewSource(seed))
	bound := 1.0 / math.Sqrt(float64(hp.HiddenDim))

	w := &Weights{
		Embedding: randomMatrix(rng, hp.VocabSize, hp.EmbeddingDim, bound),
		Forward:   newLSTMParams(rng, hp.EmbeddingDim, hp.HiddenDim, bound),
		Backward:  newLSTMParams(rng, hp.EmbeddingDim, hp.HiddenDim, bound),
		FCWeight:  randomMatrix(rng, 2*hp.HiddenDim, hp.OutputDim, bound),
		FCBias:    make([]float64, hp.OutputDim),
	}
	// PAD行置零，填充token不贡献信号
	for d := range w.Embedding[PadID] {
		w.Embedding[PadID][d] = 0
	}

	return &Classifier{hp: hp, w: w}
}

// NewClassifierWithWeights 用已有权重构造分类器（checkpoint加载路径）
func NewClassifierWithWeights(hp Hyperparameters, w *Weights) *Classifier {
	return &Classifier{hp: hp, w: w}
}

// Hyperparameters 返回超参数副本
func (c *Classifier) Hyperparameters() Hyperparameters {
	return c.hp
}

// WeightsRef 返回权重引用，仅供训练器和存储层使用
func (c *Classifier) WeightsRef() *Weights {
	return c.w
}

// Predict 对定长token id序列输出意图概率分布
// 输出非负且和为1；越界id按UNK处理，保证推理永不崩溃
func (c *Classifier) Predict(tokenIDs []int) []float64 {
	fTrace := c.runLSTM(tokenIDs, &c.w.Forward, false)
	bTrace := c.runLSTM(tokenIDs, &c.w.Backward, true)

	hf := fTrace.lastHidden()
	hb := bTrace.lastHidden()
	logits := c.project(hf, hb)
	return softmax(logits)
}

// Argmax 返回概率最大的下标及其概率
func Argmax(probs []float64) (int, float64) {
	best, bestP := 0, math.Inf(-1)
	for i, p := range probs {
		if p > bestP {
			best, bestP = i, p
		}
	}
	return best, bestP
}

// project 拼接双向末状态后做线性投影
func (c *Classifier) project(hf, hb []float64) []float64 {
	logits := make([]float64, c.hp.OutputDim)
	copy(logits, c.w.FCBias)
	for k, hv := range hf {
		if hv == 0 {
			continue
		}
		row := c.w.FCWeight[k]
		for j := range logits {
			logits[j] += hv * row[j]
		}
	}
	offset := c.hp.HiddenDim
	for k, hv := range hb {
		if hv == 0 {
			continue
		}
		row := c.w.FCWeight[offset+k]
		for j := range logits {
			logits[j] += hv * row[j]
		}
	}
	return logits
}

// lstmStep 单个时间步的前向激活，训练时用于反向传播
type lstmStep struct {
	tokenID    int
	i, f, g, o []float64
	c, h       []float64
	tanhC      []float64
}

// lstmTrace 一个方向完整的前向轨迹，按处理顺序存储
type lstmTrace struct {
	steps []*lstmStep
}

func (t *lstmTrace) lastHidden() []float64 {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1].h
}

// runLSTM 单方向LSTM前向传播
// reverse为true时从序列尾部向头部处理（反向编码器）
func (c *Classifier) runLSTM(tokenIDs []int, p *lstmParams, reverse bool) *lstmTrace {
	T := len(tokenIDs)
	H := c.hp.HiddenDim
	trace := &lstmTrace{steps: make([]*lstmStep, 0, T)}

	hPrev := make([]float64, H)
	cPrev := make([]float64, H)

	for t := 0; t < T; t++ {
		pos := t
		if reverse {
			pos = T - 1 - t
		}
		id := c.clampID(tokenIDs[pos])
		x := c.w.Embedding[id]

		// 门的预激活: a = x*Wx + hPrev*Wh + b
		a := make([]float64, 4*H)
		copy(a, p.B)
		for d, xv := range x {
			if xv == 0 {
				continue
			}
			row := p.Wx[d]
			for k := range a {
				a[k] += xv * row[k]
			}
		}
		for hIdx, hv := range hPrev {
			if hv == 0 {
				continue
			}
			row := p.Wh[hIdx]
			for k := range a {
				a[k] += hv * row[k]
			}
		}

		step := &lstmStep{
			tokenID: id,
			i:       make([]float64, H),
			f:       make([]float64, H),
			g:       make([]float64, H),
			o:       make([]float64, H),
			c:       make([]float64, H),
			h:       make([]float64, H),
			tanhC:   make([]float64, H),
		}
		for k := 0; k < H; k++ {
			step.i[k] = sigmoid(a[k])
			step.f[k] = sigmoid(a[H+k])
			step.g[k] = math.Tanh(a[2*H+k])
			step.o[k] = sigmoid(a[3*H+k])
			step.c[k] = step.f[k]*cPrev[k] + step.i[k]*step.g[k]
			step.tanhC[k] = math.Tanh(step.c[k])
			step.h[k] = step.o[k] * step.tanhC[k]
		}

		trace.steps = append(trace.steps, step)
		hPrev = step.h
		cPrev = step.c
	}

	return trace
}

// clampID 越界id一律映射为UNK
func (c *Classifier) clampID(id int) int {
	if id < 0 || id >= c.hp.VocabSize {
		return UnkID
	}
	return id
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// softmax 数值稳定的softmax
func softmax(logits []float64) []float64 {
	maxV := math.Inf(-1)
	for _, v := range logits {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(v - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func randomMatrix(rng *rand.Rand, rows, cols int, bound float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = (rng.Float64()*2 - 1) * bound
		}
	}
	return m
}

func newLSTMParams(rng *rand.Rand, inputDim, hiddenDim int, bound float64) lstmParams {
	return lstmParams{
		Wx: randomMatrix(rng, inputDim, 4*hiddenDim, bound),
		Wh: randomMatrix(rng, hiddenDim, 4*hiddenDim, bound),
		B:  make([]float64, 4*hiddenDim),
	}
}
