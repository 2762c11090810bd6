package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

const testKeyEnv = "DOCQA_TEST_OPENAI_KEY"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv(testKeyEnv, "test-key")

	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: testKeyEnv, Model: "test-model", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func Test_NewClient_MissingKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := NewClient(Config{APIKeyEnv: testKeyEnv})
	assert.ErrorContains(t, err, testKeyEnv)
}

func Test_Generate(t *testing.T) {
	var gotPrompt, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 1)
		gotPrompt = body.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "On the mat."}}]
		}`))
	})

	out, err := c.Generate(context.Background(), "Where did the cat sit?")
	require.NoError(t, err)
	assert.Equal(t, "On the mat.", out)
	assert.Equal(t, "Where did the cat sit?", gotPrompt)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "openai/test-model", c.Name())
}

func Test_Generate_ServerErrorIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	})

	_, err := c.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
}

func Test_Generate_BadRequestIsNotUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad prompt", "type": "invalid_request_error"}}`))
	})

	_, err := c.Generate(context.Background(), "q")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGeneratorUnavailable)
}
