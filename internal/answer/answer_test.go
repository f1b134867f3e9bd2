package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crucial707/studybuddy/internal/study"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyURLIsSimulated(t *testing.T) {
	a := New("", time.Second)
	got, err := a.Answer(context.Background(), "What is osmosis?", nil)
	require.NoError(t, err)
	require.Equal(t, "[Simulated AI Answer] Based on context, answer for: 'What is osmosis?'", got)
	require.IsType(t, study.SimulatedAnswerer{}, a)
}

func TestHTTPAnswerer_Answer(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(response{Answer: "  Water moves across a membrane. "})
	}))
	defer srv.Close()

	a := NewHTTPAnswerer(srv.URL, time.Second)
	text, err := a.Answer(context.Background(), "What is osmosis?", []string{"chunk one", "chunk two"})
	require.NoError(t, err)
	require.Equal(t, "Water moves across a membrane.", text)
	require.Equal(t, "What is osmosis?", got.Question)
	require.Equal(t, []string{"chunk one", "chunk two"}, got.Context)
}

func TestHTTPAnswerer_Errors(t *testing.T) {
	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer fail.Close()
	_, err := NewHTTPAnswerer(fail.URL, time.Second).Answer(context.Background(), "q", nil)
	require.ErrorContains(t, err, "502")

	blank := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"   "}`))
	}))
	defer blank.Close()
	_, err = NewHTTPAnswerer(blank.URL, time.Second).Answer(context.Background(), "q", nil)
	require.ErrorIs(t, err, ErrEmptyAnswer)
}
