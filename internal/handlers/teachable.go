package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/crucial707/studybuddy/internal/forms"
	"github.com/crucial707/studybuddy/internal/vision"
	"github.com/go-chi/chi/v5"
)

// TeachablePage trains a small image classifier from uploaded examples and
// classifies new images with it. Each user has their own model in memory.
type TeachablePage struct {
	Extractor vision.Extractor
	Config    vision.TrainConfig
	rng       *lockedRand
	models    *userState[*vision.Model]
}

func NewTeachablePage(ex vision.Extractor, rng *rand.Rand) *TeachablePage {
	if ex == nil {
		ex = vision.NewGridExtractor()
	}
	return &TeachablePage{
		Extractor: ex,
		Config:    vision.DefaultTrainConfig(),
		rng:       newLockedRand(rng),
		models:    newUserState[*vision.Model](nil),
	}
}

type classRow struct {
	Index int // zero-based
	Label string
	Field string
}

type teachableData struct {
	Classes    int
	Rows       []classRow
	Trained    bool
	Examples   int
	Prediction *vision.Prediction
	Labels     []string
}

func (p *TeachablePage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/train", p.train)
	r.Post("/predict", p.predict)
}

func (p *TeachablePage) render(w http.ResponseWriter, r *http.Request, status int, data teachableData, flashMsg, errMsg string) {
	if data.Classes < vision.MinClasses || data.Classes > vision.MaxClasses {
		data.Classes = vision.MinClasses
	}
	data.Trained = p.models.Get(currentUser(r)) != nil
	data.Rows = make([]classRow, data.Classes)
	for i := range data.Rows {
		data.Rows[i] = classRow{Index: i, Label: fmt.Sprintf("Class %d", i+1), Field: fmt.Sprintf("class_%d", i+1)}
	}
	renderTemplate(w, r, status, "teachable.html", view{
		Title:  PageTeachable.Title(),
		Active: PageTeachable,
		Flash:  flashMsg,
		Error:  errMsg,
		Data:   data,
	})
}

func (p *TeachablePage) index(w http.ResponseWriter, r *http.Request) {
	classes := vision.MinClasses
	if m := p.models.Get(currentUser(r)); m != nil {
		classes = m.Classes
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("classes")); err == nil {
		classes = n
	}
	p.render(w, r, http.StatusOK, teachableData{Classes: classes}, "", "")
}

func (p *TeachablePage) train(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		formError(w, r, err)
		return
	}
	fr := forms.NewReader(r)
	classes := fr.Int("classes", vision.MinClasses)
	data := teachableData{Classes: classes}
	if fr.Errors() != nil || classes < vision.MinClasses || classes > vision.MaxClasses {
		p.render(w, r, http.StatusBadRequest, data, "", fmt.Sprintf("Choose between %d and %d classes.", vision.MinClasses, vision.MaxClasses))
		return
	}

	var examples []vision.Example
	for c := 0; c < classes; c++ {
		for _, fh := range r.MultipartForm.File[fmt.Sprintf("class_%d", c+1)] {
			f, err := fh.Open()
			if err != nil {
				formError(w, r, err)
				return
			}
			img, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				formError(w, r, err)
				return
			}
			examples = append(examples, vision.Example{Class: c, Data: img})
		}
	}

	model, err := vision.TrainModel(r.Context(), p.rng.child(), p.Extractor, classes, examples, p.Config)
	switch {
	case errors.Is(err, vision.ErrNoExamples):
		p.render(w, r, http.StatusBadRequest, data, "", "Upload images for at least two classes.")
		return
	case errors.Is(err, vision.ErrBadImage):
		p.render(w, r, http.StatusBadRequest, data, "", capitalize(err.Error())+".")
		return
	case err != nil:
		slog.Warn("teachable machine training failed", "error", err)
		p.render(w, r, http.StatusOK, data, "", "Training failed. Check the images and try again.")
		return
	}
	p.models.Set(currentUser(r), model)
	data.Examples = len(examples)
	p.render(w, r, http.StatusOK, data, fmt.Sprintf("Training completed on %s!", plural(len(examples), "image")), "")
}

func (p *TeachablePage) predict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		formError(w, r, err)
		return
	}
	model := p.models.Get(currentUser(r))
	if model == nil {
		p.render(w, r, http.StatusBadRequest, teachableData{}, "", "Upload images and train the model first.")
		return
	}
	data := teachableData{Classes: model.Classes}
	_, img, err := readUpload(r, "image")
	if errors.Is(err, errNoFile) {
		p.render(w, r, http.StatusBadRequest, data, "", "Choose an image to classify.")
		return
	}
	if err != nil {
		formError(w, r, err)
		return
	}
	pred, err := model.Predict(r.Context(), img)
	if errors.Is(err, vision.ErrBadImage) {
		p.render(w, r, http.StatusBadRequest, data, "", capitalize(err.Error())+".")
		return
	}
	if err != nil {
		slog.Warn("teachable machine prediction failed", "error", err)
		p.render(w, r, http.StatusOK, data, "", "Prediction failed. Try another image.")
		return
	}
	data.Prediction = &pred
	data.Labels = make([]string, len(pred.Probabilities))
	for i := range data.Labels {
		data.Labels[i] = fmt.Sprintf("Class %d", i+1)
	}
	p.render(w, r, http.StatusOK, data, "", "")
}
