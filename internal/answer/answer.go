// Package answer provides the answer services behind the doubt solver.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/studybuddy/internal/study"
	"github.com/google/uuid"
)

// ErrEmptyAnswer is returned when the service answers with blank text.
var ErrEmptyAnswer = errors.New("answer service returned an empty answer")

// HTTPAnswerer posts {"question", "context"} as JSON to URL and reads {"answer": "..."} back.
type HTTPAnswerer struct {
	URL    string
	Client *http.Client
}

var _ study.Answerer = (*HTTPAnswerer)(nil)

func NewHTTPAnswerer(url string, timeout time.Duration) *HTTPAnswerer {
	return &HTTPAnswerer{URL: url, Client: &http.Client{Timeout: timeout}}
}

// New returns an HTTPAnswerer for url, or the simulated answerer when url is empty.
func New(url string, timeout time.Duration) study.Answerer {
	if url == "" {
		return study.SimulatedAnswerer{}
	}
	return NewHTTPAnswerer(url, timeout)
}

type request struct {
	Question string   `json:"question"`
	Context  []string `json:"context"`
}

type response struct {
	Answer string `json:"answer"`
}

func (a *HTTPAnswerer) Answer(ctx context.Context, question string, chunks []string) (string, error) {
	body, err := json.Marshal(request{Question: question, Context: chunks})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("answer request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("answer service returned %s", resp.Status)
	}

	var out response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	text := strings.TrimSpace(out.Answer)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}
