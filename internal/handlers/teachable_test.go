package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"testing"
)

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestTeachable_TrainAndPredict(t *testing.T) {
	s := newTestServer(t)
	s.login()

	red := solidPNG(t, color.RGBA{R: 230, A: 255})
	blue := solidPNG(t, color.RGBA{B: 230, A: 255})

	rr := s.postMultipart("/pages/teachable/predict", nil, upload{field: "image", name: "x.png", data: red})
	expectStatus(t, rr, http.StatusBadRequest)
	expectBody(t, rr, "Upload images and train the model first.")

	rr = s.postMultipart("/pages/teachable/train", map[string]string{"classes": "2"},
		upload{field: "class_1", name: "r1.png", data: red},
		upload{field: "class_1", name: "r2.png", data: red},
		upload{field: "class_2", name: "b1.png", data: blue},
		upload{field: "class_2", name: "b2.png", data: blue},
	)
	expectStatus(t, rr, http.StatusOK)
	expectBody(t, rr, "Training completed on 4 images!", `action="/pages/teachable/predict"`)

	rr = s.postMultipart("/pages/teachable/predict", nil, upload{field: "image", name: "x.png", data: red})
	expectStatus(t, rr, http.StatusOK)
	expectBody(t, rr, "Prediction: Class", "<td>Class 1</td>", "<td>Class 2</td>")

	rr = s.postMultipart("/pages/teachable/predict", nil, upload{field: "image", name: "x.png", data: []byte("not an image")})
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestTeachable_TrainValidation(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rr := s.postMultipart("/pages/teachable/train", map[string]string{"classes": "1"})
	expectStatus(t, rr, http.StatusBadRequest)
	expectBody(t, rr, "Choose between")

	rr = s.postMultipart("/pages/teachable/train", map[string]string{"classes": "two"},
		upload{field: "class_1", name: "r1.png", data: solidPNG(t, color.White)},
		upload{field: "class_2", name: "b1.png", data: solidPNG(t, color.Black)},
	)
	expectStatus(t, rr, http.StatusBadRequest)
	expectBody(t, rr, "Choose between")

	rr = s.postMultipart("/pages/teachable/train", map[string]string{"classes": "2"},
		upload{field: "class_1", name: "r1.png", data: solidPNG(t, color.White)},
	)
	expectStatus(t, rr, http.StatusBadRequest)
	expectBody(t, rr, "Upload images for at least two classes.")

	rr = s.get("/pages/teachable?classes=4")
	expectStatus(t, rr, http.StatusOK)
	expectBody(t, rr, `name="class_4"`)
}
