package vision

import (
	"errors"
	"math"
	"math/rand/v2"
)

const (
	MinClasses = 2
	MaxClasses = 10
	HiddenSize = 128
)

var (
	ErrNoExamples  = errors.New("upload at least one image for two different classes")
	ErrDimMismatch = errors.New("feature vector has the wrong length")
	ErrBadClass    = errors.New("class index out of range")
)

// TrainConfig controls mini-batch gradient descent.
type TrainConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
}

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{Epochs: 60, BatchSize: 8, LearningRate: 0.05}
}

// Classifier is a dense ReLU hidden layer followed by a softmax output layer.
type Classifier struct {
	In, Hidden, Classes int

	w1 [][]float64 // Hidden × In
	b1 []float64
	w2 [][]float64 // Classes × Hidden
	b2 []float64
}

func NewClassifier(rng *rand.Rand, in, hidden, classes int) *Classifier {
	c := &Classifier{In: in, Hidden: hidden, Classes: classes}
	c.w1 = randMatrix(rng, hidden, in, math.Sqrt(2/float64(in)))
	c.b1 = make([]float64, hidden)
	c.w2 = randMatrix(rng, classes, hidden, math.Sqrt(2/float64(hidden)))
	c.b2 = make([]float64, classes)
	return c
}

func randMatrix(rng *rand.Rand, rows, cols int, scale float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.NormFloat64() * scale
		}
	}
	return m
}

func (c *Classifier) forward(x []float64) (h, p []float64) {
	h = make([]float64, c.Hidden)
	for i, row := range c.w1 {
		s := c.b1[i]
		for j, w := range row {
			s += w * x[j]
		}
		h[i] = math.Max(0, s)
	}
	z := make([]float64, c.Classes)
	for i, row := range c.w2 {
		s := c.b2[i]
		for j, w := range row {
			s += w * h[j]
		}
		z[i] = s
	}
	return h, softmax(z)
}

func softmax(z []float64) []float64 {
	maxZ := math.Inf(-1)
	for _, v := range z {
		maxZ = math.Max(maxZ, v)
	}
	out := make([]float64, len(z))
	sum := 0.0
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Predict returns the class probabilities for x.
func (c *Classifier) Predict(x []float64) ([]float64, error) {
	if len(x) != c.In {
		return nil, ErrDimMismatch
	}
	_, p := c.forward(x)
	return p, nil
}

// Argmax returns the index of the largest value.
func Argmax(p []float64) int {
	best := 0
	for i, v := range p {
		if v > p[best] {
			best = i
		}
	}
	return best
}

// Train fits the network to labelled vectors with categorical cross-entropy and returns
// the mean loss of the last epoch.
func (c *Classifier) Train(rng *rand.Rand, xs [][]float64, ys []int, cfg TrainConfig) (float64, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return 0, ErrNoExamples
	}
	for i, x := range xs {
		if len(x) != c.In {
			return 0, ErrDimMismatch
		}
		if ys[i] < 0 || ys[i] >= c.Classes {
			return 0, ErrBadClass
		}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = len(xs)
	}

	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}

	var loss float64
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		loss = 0
		for start := 0; start < len(order); start += cfg.BatchSize {
			batch := order[start:min(start+cfg.BatchSize, len(order))]
			loss += c.step(xs, ys, batch, cfg.LearningRate)
		}
		loss /= float64(len(xs))
	}
	return loss, nil
}

// step applies one gradient update for batch and returns its summed loss.
func (c *Classifier) step(xs [][]float64, ys []int, batch []int, lr float64) float64 {
	gw1 := zeros(c.Hidden, c.In)
	gb1 := make([]float64, c.Hidden)
	gw2 := zeros(c.Classes, c.Hidden)
	gb2 := make([]float64, c.Classes)

	var loss float64
	for _, idx := range batch {
		x, y := xs[idx], ys[idx]
		h, p := c.forward(x)
		loss -= math.Log(math.Max(p[y], 1e-12))

		dz := append([]float64(nil), p...)
		dz[y] -= 1

		dh := make([]float64, c.Hidden)
		for i := range dz {
			gb2[i] += dz[i]
			for j := range h {
				gw2[i][j] += dz[i] * h[j]
				dh[j] += c.w2[i][j] * dz[i]
			}
		}
		for j := range dh {
			if h[j] <= 0 {
				continue
			}
			gb1[j] += dh[j]
			for k := range x {
				gw1[j][k] += dh[j] * x[k]
			}
		}
	}

	scale := lr / float64(len(batch))
	for i := range c.w2 {
		c.b2[i] -= scale * gb2[i]
		for j := range c.w2[i] {
			c.w2[i][j] -= scale * gw2[i][j]
		}
	}
	for i := range c.w1 {
		c.b1[i] -= scale * gb1[i]
		for j := range c.w1[i] {
			c.w1[i][j] -= scale * gw1[i][j]
		}
	}
	return loss
}

func zeros(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
