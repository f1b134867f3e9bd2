package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/crucial707/studybuddy/internal/export"
	"github.com/crucial707/studybuddy/internal/metrics"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/crucial707/studybuddy/internal/speech"
	"github.com/go-chi/chi/v5"
)

// SpeechPage transcribes uploaded recordings and keeps the saved transcripts and
// audio files.
type SpeechPage struct {
	STT    speech.Transcriber
	texts  *artifacts
	audios *artifacts
}

func NewSpeechPage(stt speech.Transcriber, texts, audios *repo.ArtifactManager, sinks ...export.Sink) *SpeechPage {
	if stt == nil {
		stt = speech.Disabled{}
	}
	return &SpeechPage{
		STT:    stt,
		texts:  &artifacts{Page: PageSpeech, Kind: "transcript", Store: texts, Sinks: sinks},
		audios: &artifacts{Page: PageSpeech, Kind: "audio", Store: audios, Sinks: sinks},
	}
}

type speechData struct {
	Result     *speech.Result
	AudioName  string
	Transcript string
	SaveAs     string
	Texts      []models.Artifact
	Audios     []models.Artifact
}

func (p *SpeechPage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/transcribe", p.transcribe)
	r.Post("/save", p.save)
	p.texts.mount(r, "")
	p.audios.mount(r, "/audio")
}

func (p *SpeechPage) render(w http.ResponseWriter, r *http.Request, status int, data speechData, errMsg string) {
	var msgs []string
	if errMsg != "" {
		msgs = append(msgs, errMsg)
	}
	var m string
	if data.Texts, m = p.texts.list(); m != "" {
		msgs = append(msgs, m)
	}
	if data.Audios, m = p.audios.list(); m != "" {
		msgs = append(msgs, m)
	}
	if data.SaveAs == "" {
		data.SaveAs = "transcript"
	}
	renderTemplate(w, r, status, "speech.html", view{
		Title:  PageSpeech.Title(),
		Active: PageSpeech,
		Flash:  flash(r),
		Error:  strings.Join(msgs, " "),
		Data:   data,
	})
}

func (p *SpeechPage) index(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, speechData{}, "")
}

// transcribe stores the uploaded recording and runs it through the speech service.
// Service failures are shown on the page; they never fail the request.
func (p *SpeechPage) transcribe(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		formError(w, r, err)
		return
	}
	name, audio, err := readUpload(r, "audio")
	if errors.Is(err, errNoFile) {
		p.render(w, r, http.StatusBadRequest, speechData{}, "Please choose a WAV or MP3 recording.")
		return
	}
	if err != nil {
		formError(w, r, err)
		return
	}

	stored, err := p.audios.Store.SaveUpload(name, audio)
	if errors.Is(err, repo.ErrInvalidName) {
		p.render(w, r, http.StatusBadRequest, speechData{}, "Only WAV and MP3 recordings are supported.")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	metrics.IncArtifactSaved(p.audios.Kind)

	res := p.STT.Transcribe(r.Context(), stored, audio)
	if res.Err != nil {
		slog.Warn("transcription failed", "file", stored, "status", res.Status.String(), "error", res.Err)
	}
	data := speechData{Result: &res, AudioName: stored, SaveAs: strings.TrimSuffix(stored, filepath.Ext(stored))}
	if res.OK() {
		data.Transcript = res.Text
	}
	var msg string
	if errors.Is(res.Err, speech.ErrDisabled) {
		msg = "Speech recognition is not configured on this server."
	} else if res.Status == speech.StatusFailed {
		msg = "The speech service could not be reached. Try again later."
	}
	p.render(w, r, http.StatusOK, data, msg)
}

func (p *SpeechPage) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	content := r.PostFormValue("content")
	data := speechData{Transcript: content, SaveAs: r.PostFormValue("name")}
	if strings.TrimSpace(content) == "" {
		p.render(w, r, http.StatusBadRequest, data, "There is no text to save.")
		return
	}
	if !p.texts.save(w, r, r.PostFormValue("name"), []byte(content)) {
		p.render(w, r, http.StatusBadRequest, data, "The name must contain at least one letter, digit, _ or -.")
	}
}
