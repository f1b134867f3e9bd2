// Package speech turns uploaded audio into text through an external speech-to-text service.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status classifies a transcription attempt.
type Status int

const (
	// StatusOK means Text holds the transcript.
	StatusOK Status = iota
	// StatusUnintelligible means the service heard nothing it could transcribe.
	StatusUnintelligible
	// StatusFailed means the service could not be reached or rejected the request.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnintelligible:
		return "unintelligible"
	default:
		return "failed"
	}
}

// CouldNotUnderstand is the text shown for unintelligible audio.
const CouldNotUnderstand = "[Could not understand]"

// Result is the outcome of one transcription.
type Result struct {
	Status Status
	Text   string
	Err    error
}

func (r Result) OK() bool { return r.Status == StatusOK }

// Display is the text to show the user for r.
func (r Result) Display() string {
	switch r.Status {
	case StatusOK:
		return r.Text
	case StatusUnintelligible:
		return CouldNotUnderstand
	default:
		return "[Transcription unavailable]"
	}
}

// Transcriber converts audio bytes to a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) Result
}

// ErrDisabled is reported when no speech service is configured.
var ErrDisabled = errors.New("speech-to-text service is not configured")

// Disabled always fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, string, []byte) Result {
	return Result{Status: StatusFailed, Err: ErrDisabled}
}

// HTTPTranscriber posts the audio as multipart field "audio" to URL and reads
// {"transcript": "..."} back.
type HTTPTranscriber struct {
	URL    string
	Client *http.Client
}

func NewHTTPTranscriber(url string, timeout time.Duration) *HTTPTranscriber {
	return &HTTPTranscriber{URL: url, Client: &http.Client{Timeout: timeout}}
}

// New returns an HTTPTranscriber for url, or Disabled when url is empty.
func New(url string, timeout time.Duration) Transcriber {
	if url == "" {
		return Disabled{}
	}
	return NewHTTPTranscriber(url, timeout)
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) Result {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	if _, err := fw.Write(audio); err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	if err := mw.Close(); err != nil {
		return Result{Status: StatusFailed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, &body)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := t.Client.Do(req)
	if err != nil {
		return Result{Status: StatusFailed, Err: fmt.Errorf("speech request: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return Result{Status: StatusUnintelligible}
	case resp.StatusCode >= http.StatusBadRequest:
		io.Copy(io.Discard, resp.Body)
		return Result{Status: StatusFailed, Err: fmt.Errorf("speech service returned %s", resp.Status)}
	}

	var out transcriptResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Result{Status: StatusFailed, Err: fmt.Errorf("decode transcript: %w", err)}
	}
	text := strings.TrimSpace(out.Transcript)
	if text == "" {
		return Result{Status: StatusUnintelligible}
	}
	return Result{Status: StatusOK, Text: text}
}
