package intent

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func testHyperparameters() Hyperparameters {
	return Hyperparameters{
		VocabSize:    20,
		EmbeddingDim: 8,
		HiddenDim:    6,
		OutputDim:    3,
		NumLayers:    1,
		MaxSeqLength: 10,
	}
}

func TestClassifierPredict(t *testing.T) {
	c := NewClassifier(testHyperparameters(), 42)

	t.Run("输出是合法概率分布", func(t *testing.T) {
		probs := c.Predict([]int{2, 3, 4, 0, 0, 0, 0, 0, 0, 0})
		if len(probs) != 3 {
			t.Fatalf("期望输出维度3，但得到 %d", len(probs))
		}
		sum := 0.0
		for i, p := range probs {
			if p < 0 || p > 1 {
				t.Errorf("概率 probs[%d]=%f 超出[0,1]", i, p)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("概率和期望为1，但得到 %f", sum)
		}
	})

	t.Run("相同输入输出完全一致", func(t *testing.T) {
		input := []int{5, 6, 7, 8, 0, 0, 0, 0, 0, 0}
		p1 := c.Predict(input)
		p2 := c.Predict(input)
		for i := range p1 {
			if p1[i] != p2[i] {
				t.Errorf("两次推理在下标 %d 处不一致: %f vs %f", i, p1[i], p2[i])
			}
		}
	})

	t.Run("越界id不会崩溃", func(t *testing.T) {
		probs := c.Predict([]int{-1, 999, 100000, 0, 0, 0, 0, 0, 0, 0})
		sum := 0.0
		for _, p := range probs {
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("越界id输入的概率和期望为1，但得到 %f", sum)
		}
	})

	t.Run("随机id序列都产生合法输出", func(t *testing.T) {
		gofakeit.Seed(42)
		for n := 0; n < 50; n++ {
			input := make([]int, 10)
			for i := range input {
				input[i] = gofakeit.Number(-5, 30)
			}
			probs := c.Predict(input)
			sum := 0.0
			for _, p := range probs {
				if math.IsNaN(p) || math.IsInf(p, 0) {
					t.Fatalf("输入 %v 产生非法概率 %v", input, probs)
				}
				sum += p
			}
			if math.Abs(sum-1.0) > 1e-9 {
				t.Fatalf("输入 %v 的概率和为 %f", input, sum)
			}
		}
	})
}

func TestNewClassifier(t *testing.T) {
	t.Run("PAD嵌入行为零", func(t *testing.T) {
		c := NewClassifier(testHyperparameters(), 7)
		for d, v := range c.WeightsRef().Embedding[PadID] {
			if v != 0 {
				t.Errorf("PAD嵌入第 %d 维期望为0，但得到 %f", d, v)
			}
		}
	})

	t.Run("相同种子初始化一致", func(t *testing.T) {
		a := NewClassifier(testHyperparameters(), 99)
		b := NewClassifier(testHyperparameters(), 99)
		if a.WeightsRef().Embedding[2][0] != b.WeightsRef().Embedding[2][0] {
			t.Error("相同种子初始化的权重应完全一致")
		}
	})

	t.Run("单层配置下dropout强制为零", func(t *testing.T) {
		hp := testHyperparameters()
		hp.Dropout = 0.5
		c := NewClassifier(hp, 1)
		if c.Hyperparameters().Dropout != 0 {
			t.Errorf("单层配置dropout期望为0，但得到 %f", c.Hyperparameters().Dropout)
		}
	})
}

func TestArgmax(t *testing.T) {
	idx, p := Argmax([]float64{0.1, 0.7, 0.2})
	if idx != 1 || p != 0.7 {
		t.Errorf("期望(1, 0.7)，但得到(%d, %f)", idx, p)
	}
}
