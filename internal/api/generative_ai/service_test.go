package generativeAI

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-discovery/internal/types"
)

func TestNewTextGenerator_MissingKey(t *testing.T) {
	for _, provider := range []string{"", "gemini", "openai", "OpenAI"} {
		gen, err := NewTextGenerator(context.Background(), provider, "", "")
		assert.Nil(t, gen)
		assert.True(t, errors.Is(err, types.ErrConfigurationMissing), provider)
	}
}

func TestNewTextGenerator_UnknownProvider(t *testing.T) {
	_, err := NewTextGenerator(context.Background(), "claude-on-a-toaster", "key", "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, types.ErrConfigurationMissing))
}

func TestOpenAIClient_GenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultOpenAIModel, body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("test-key", "", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, client.Provider())

	text, err := client.GenerateText(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
}

func TestOpenAIClient_ProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("test-key", "", srv.URL)
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrProviderError))
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("test-key", "", srv.URL)
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), "anything")
	assert.True(t, errors.Is(err, types.ErrProviderError))
}
