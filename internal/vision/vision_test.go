package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, 1)) }

func solidPNG(t *testing.T, c color.Color, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGridExtractor(t *testing.T) {
	g := NewGridExtractor()
	img, err := Decode(solidPNG(t, color.RGBA{R: 255, A: 255}, 40, 30))
	require.NoError(t, err)

	vec, err := g.Extract(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, vec, g.Dim())
	require.Equal(t, 768, g.Dim())
	require.InDelta(t, 1.0, vec[0], 1e-9)
	require.InDelta(t, 0.0, vec[1], 1e-9)
	require.InDelta(t, 0.0, vec[2], 1e-9)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	require.ErrorIs(t, err, ErrBadImage)
}

func TestClassifier_SeparatesTwoClusters(t *testing.T) {
	rng := newRand(7)
	var xs [][]float64
	var ys []int
	for i := 0; i < 40; i++ {
		jitter := rng.Float64() * 0.1
		if i%2 == 0 {
			xs = append(xs, []float64{0.9 - jitter, 0.1 + jitter, 0.2})
			ys = append(ys, 0)
		} else {
			xs = append(xs, []float64{0.1 + jitter, 0.9 - jitter, 0.2})
			ys = append(ys, 1)
		}
	}

	clf := NewClassifier(rng, 3, 16, 2)
	loss, err := clf.Train(rng, xs, ys, TrainConfig{Epochs: 400, BatchSize: 8, LearningRate: 0.2})
	require.NoError(t, err)
	require.Less(t, loss, 0.3)

	p, err := clf.Predict([]float64{0.95, 0.05, 0.2})
	require.NoError(t, err)
	require.Equal(t, 0, Argmax(p))
	require.InDelta(t, 1.0, p[0]+p[1], 1e-9)

	p, err = clf.Predict([]float64{0.05, 0.95, 0.2})
	require.NoError(t, err)
	require.Equal(t, 1, Argmax(p))
}

func TestClassifier_InputChecks(t *testing.T) {
	clf := NewClassifier(newRand(1), 2, 4, 2)
	_, err := clf.Predict([]float64{1})
	require.ErrorIs(t, err, ErrDimMismatch)

	_, err = clf.Train(newRand(1), nil, nil, DefaultTrainConfig())
	require.ErrorIs(t, err, ErrNoExamples)
	_, err = clf.Train(newRand(1), [][]float64{{1, 2}}, []int{5}, DefaultTrainConfig())
	require.ErrorIs(t, err, ErrBadClass)
}

func TestTrainModel_RedVersusBlue(t *testing.T) {
	ctx := context.Background()
	red := color.RGBA{R: 220, G: 20, B: 20, A: 255}
	blue := color.RGBA{R: 20, G: 20, B: 220, A: 255}

	var examples []Example
	for i := 0; i < 4; i++ {
		examples = append(examples,
			Example{Class: 0, Data: solidPNG(t, red, 20+i, 20)},
			Example{Class: 1, Data: solidPNG(t, blue, 20, 20+i)},
		)
	}
	m, err := TrainModel(ctx, newRand(3), NewGridExtractor(), 2, examples, DefaultTrainConfig())
	require.NoError(t, err)

	pred, err := m.Predict(ctx, solidPNG(t, blue, 32, 32))
	require.NoError(t, err)
	require.Equal(t, 1, pred.Class)
	require.Equal(t, "Class 2", pred.Label())
	require.Len(t, pred.Probabilities, 2)
}

func TestTrainModel_NeedsTwoClasses(t *testing.T) {
	red := solidPNG(t, color.RGBA{R: 255, A: 255}, 8, 8)
	_, err := TrainModel(context.Background(), newRand(1), NewGridExtractor(), 3,
		[]Example{{Class: 0, Data: red}, {Class: 0, Data: red}}, DefaultTrainConfig())
	require.ErrorIs(t, err, ErrNoExamples)

	_, err = TrainModel(context.Background(), newRand(1), NewGridExtractor(), 11, nil, DefaultTrainConfig())
	require.ErrorIs(t, err, ErrBadClass)
}

func TestHTTPExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "image/png", r.Header.Get("Content-Type"))
		_, err := png.Decode(r.Body)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(map[string][]float64{"features": {0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	img, err := Decode(solidPNG(t, color.White, 4, 4))
	require.NoError(t, err)

	vec, err := NewHTTPExtractor(srv.URL, 3, time.Second).Extract(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2, 0.3}, vec)

	_, err = NewHTTPExtractor(srv.URL, 5, time.Second).Extract(context.Background(), img)
	require.Error(t, err)
}
