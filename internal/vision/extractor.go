// Package vision backs the teachable-machine page: images become fixed-length feature
// vectors, and a small two-layer network learns to tell the user's classes apart.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrBadImage = errors.New("file is not a readable image")

// Decode reads a JPEG, PNG or WebP image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return img, nil
}

// Extractor maps an image to a feature vector. Every vector from one extractor has the
// same length.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) ([]float64, error)
	Dim() int
}

// GridExtractor downsamples the image to Size×Size and returns its RGB values scaled
// to [0, 1].
type GridExtractor struct {
	Size int
}

func NewGridExtractor() GridExtractor { return GridExtractor{Size: 16} }

func (g GridExtractor) Dim() int { return 3 * g.Size * g.Size }

func (g GridExtractor) Extract(_ context.Context, img image.Image) ([]float64, error) {
	dst := image.NewRGBA(image.Rect(0, 0, g.Size, g.Size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := make([]float64, 0, g.Dim())
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			c := dst.RGBAAt(x, y)
			out = append(out, float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		}
	}
	return out, nil
}

// HTTPExtractor sends the image as PNG to a remote feature service that answers
// {"features": [...]}.
type HTTPExtractor struct {
	URL    string
	Size   int
	Client *http.Client
}

func NewHTTPExtractor(url string, dim int, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{URL: url, Size: dim, Client: &http.Client{Timeout: timeout}}
}

func (h *HTTPExtractor) Dim() int { return h.Size }

func (h *HTTPExtractor) Extract(ctx context.Context, img image.Image) ([]float64, error) {
	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feature request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("feature service returned %s", resp.Status)
	}

	var out struct {
		Features []float64 `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if len(out.Features) != h.Size {
		return nil, fmt.Errorf("feature service returned %d values, want %d", len(out.Features), h.Size)
	}
	return out.Features, nil
}
