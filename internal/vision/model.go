package vision

import (
	"context"
	"fmt"
	"math/rand/v2"
)

// Example is one labelled training image.
type Example struct {
	Class int
	Data  []byte
}

// Model pairs a trained classifier with the extractor that produced its inputs.
type Model struct {
	Extractor  Extractor
	Classifier *Classifier
	Classes    int
}

// TrainModel extracts features for every example and fits a new classifier. At least
// two classes must have examples.
func TrainModel(ctx context.Context, rng *rand.Rand, ex Extractor, classes int, examples []Example, cfg TrainConfig) (*Model, error) {
	if classes < MinClasses || classes > MaxClasses {
		return nil, ErrBadClass
	}
	seen := make(map[int]bool)
	xs := make([][]float64, 0, len(examples))
	ys := make([]int, 0, len(examples))
	for i, e := range examples {
		if e.Class < 0 || e.Class >= classes {
			return nil, ErrBadClass
		}
		img, err := Decode(e.Data)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		vec, err := ex.Extract(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		xs = append(xs, vec)
		ys = append(ys, e.Class)
		seen[e.Class] = true
	}
	if len(seen) < 2 {
		return nil, ErrNoExamples
	}

	clf := NewClassifier(rng, ex.Dim(), HiddenSize, classes)
	if _, err := clf.Train(rng, xs, ys, cfg); err != nil {
		return nil, err
	}
	return &Model{Extractor: ex, Classifier: clf, Classes: classes}, nil
}

// Prediction is the classifier output for one image.
type Prediction struct {
	Class         int // zero-based
	Probabilities []float64
}

func (p Prediction) Label() string { return fmt.Sprintf("Class %d", p.Class+1) }

func (m *Model) Predict(ctx context.Context, data []byte) (Prediction, error) {
	img, err := Decode(data)
	if err != nil {
		return Prediction{}, err
	}
	vec, err := m.Extractor.Extract(ctx, img)
	if err != nil {
		return Prediction{}, err
	}
	probs, err := m.Classifier.Predict(vec)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Class: Argmax(probs), Probabilities: probs}, nil
}
