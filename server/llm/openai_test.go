package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  What is your edge here?  "}},
			},
		})
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_API_BASE", srv.URL)

	text, err := PingText(context.Background(), "gpt-4.1-mini", "sys", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "What is your edge here?", text)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4.1-mini", gotBody["model"])

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
}

func TestPingTextModelFromEnv(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "env-model", body["model"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("OPENAI_API_BASE", srv.URL)
	t.Setenv("OPENAI_MODEL", "env-model")

	text, err := PingText(context.Background(), "", "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestPingTextMissingConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := PingText(context.Background(), "m", "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("OPENAI_MODEL", "")
	_, err = PingText(context.Background(), "", "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model missing")
}

func TestPingTextUpstreamErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		t.Setenv("OPENAI_API_KEY", "k")
		t.Setenv("OPENAI_API_BASE", srv.URL)

		_, err := PingText(context.Background(), "m", "s", "u")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer srv.Close()

		t.Setenv("OPENAI_API_KEY", "k")
		t.Setenv("OPENAI_API_BASE", srv.URL)

		_, err := PingText(context.Background(), "m", "s", "u")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	long := truncate(strings.Repeat("x", 100), 10)
	assert.Len(t, long, 10)
	assert.True(t, strings.HasSuffix(long, "..."))
}
