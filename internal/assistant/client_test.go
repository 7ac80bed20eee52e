package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamAccumulatesDeltas(t *testing.T) {
	var gotBody struct {
		Messages []TurnMessage `json:"messages"`
		Stream   bool          `json:"stream"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"delta\":\"Hel\"}\n\n")
		fmt.Fprint(w, "data: {\"delta\":\"lo\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"delta\":\"ignored after done\"}\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	var deltas []string
	full, err := client.Stream(context.Background(), []TurnMessage{{Role: "user", Content: "hi"}}, func(d string) {
		deltas = append(deltas, d)
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello", full)
	assert.Equal(t, []string{"Hel", "lo"}, deltas)
	assert.True(t, gotBody.Stream)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "hi", gotBody.Messages[0].Content)
}

func TestStreamDecodesChoicesFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"chunk\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	full, err := client.Stream(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "chunk", full)
}

func TestStreamSkipsMalformedChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, ": keepalive comment\n\n")
		fmt.Fprint(w, "data: {\"delta\":\"ok\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	full, err := client.Stream(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", full)
}

func TestStreamRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Stream(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestStreamQuotaExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Stream(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestStreamNotConfigured(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Stream(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStreamSendsAuthHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	_, err := client.Stream(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", auth)
}
