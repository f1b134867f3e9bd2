package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPTranscriber_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		f, hdr, err := r.FormFile("audio")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		require.Equal(t, "lecture.wav", hdr.Filename)
		require.Equal(t, "RIFF", string(data))
		w.Write([]byte(`{"transcript": "  hello class  "}`))
	}))
	defer srv.Close()

	res := NewHTTPTranscriber(srv.URL, time.Second).Transcribe(context.Background(), "lecture.wav", []byte("RIFF"))
	require.True(t, res.OK())
	require.Equal(t, "hello class", res.Text)
	require.Equal(t, "hello class", res.Display())
}

func TestHTTPTranscriber_Unintelligible(t *testing.T) {
	for _, h := range []http.HandlerFunc{
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"transcript": ""}`)) },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnprocessableEntity) },
	} {
		srv := httptest.NewServer(h)
		res := NewHTTPTranscriber(srv.URL, time.Second).Transcribe(context.Background(), "a.wav", []byte("x"))
		srv.Close()
		require.Equal(t, StatusUnintelligible, res.Status)
		require.Equal(t, CouldNotUnderstand, res.Display())
	}
}

func TestHTTPTranscriber_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	res := NewHTTPTranscriber(srv.URL, time.Second).Transcribe(context.Background(), "a.wav", []byte("x"))
	require.Equal(t, StatusFailed, res.Status)
	require.Error(t, res.Err)

	srv.Close()
	res = NewHTTPTranscriber(srv.URL, time.Second).Transcribe(context.Background(), "a.wav", []byte("x"))
	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, "failed", res.Status.String())
}

func TestNew_DisabledWithoutURL(t *testing.T) {
	tr := New("", time.Second)
	res := tr.Transcribe(context.Background(), "a.wav", nil)
	require.Equal(t, StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, ErrDisabled)

	_, ok := New("http://stt.local", time.Second).(*HTTPTranscriber)
	require.True(t, ok)
}
