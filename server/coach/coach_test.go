package coach

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantmarket/server/agent"
	"quantmarket/server/engine"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleSnapshot() agent.Snapshot {
	return agent.Snapshot{
		Action:   "buy",
		Round:    1,
		Details:  map[string]any{"price": 104.5, "counterparty": 3},
		Position: 1,
		Cash:     -104.5,
		MarketContext: agent.MarketContext{
			Quotes:    []engine.Quote{{PlayerID: 3, Bid: 84.5, Ask: 104.5}},
			OrderFlow: engine.OrderFlow{Buys: 1},
			Round:     1,
			Community: []engine.Card{
				{Suit: engine.Spades, Rank: 2, Value: 20},
				{Suit: engine.Diamonds, Rank: 6, Value: -60},
			},
			PlayerCard: engine.Card{Suit: engine.Clubs, Rank: 8, Value: 80},
		},
	}
}

func TestQuestionSuccess(t *testing.T) {
	var userPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, m := range body.Messages {
			if m.Role == "user" {
				userPrompt = m.Content
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Why lift the 104.5 ask?"}},
			},
		})
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("OPENAI_API_BASE", srv.URL)

	c := New("gpt-4.1-mini", quietLogger())
	got := c.Question(context.Background(), sampleSnapshot())
	assert.Equal(t, "Why lift the 104.5 ask?", got)

	// The prompt frames only the visible state.
	require.NotEmpty(t, userPrompt)
	assert.Contains(t, userPrompt, "Round: 1")
	assert.Contains(t, userPrompt, "Action: buy")
	assert.Contains(t, userPrompt, "Community Cards Revealed: 2")
	assert.Contains(t, userPrompt, "NEVER reveal")
}

func TestQuestionFallsBackWithoutCollaborator(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	c := New("gpt-4.1-mini", quietLogger())
	got := c.Question(context.Background(), sampleSnapshot())
	assert.Equal(t, FallbackQuestion, got)
}

func TestQuestionFallsBackOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("OPENAI_API_BASE", srv.URL)

	c := New("gpt-4.1-mini", quietLogger())
	assert.Equal(t, FallbackQuestion, c.Question(context.Background(), sampleSnapshot()))
}

func TestQuestionFallsBackOnEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "   "}}},
		})
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("OPENAI_API_BASE", srv.URL)

	c := New("gpt-4.1-mini", quietLogger())
	assert.Equal(t, FallbackQuestion, c.Question(context.Background(), sampleSnapshot()))
}

func TestBuildPromptShowsOnlyVisibleState(t *testing.T) {
	prompt := buildPrompt(sampleSnapshot())

	assert.Contains(t, prompt, "Game Rules:")
	assert.Contains(t, prompt, "Position: 1")
	assert.Contains(t, prompt, "Cash: -104.50")
	assert.Contains(t, prompt, `"bid":84.5`)
	assert.Contains(t, prompt, `"price":104.5`)

	// Defense in depth: the framing must not reference hidden statistics
	// even as field names.
	for _, forbidden := range []string{"trueValue", "finalValue", "allPlayers"} {
		assert.False(t, strings.Contains(prompt, forbidden), "prompt mentions %q", forbidden)
	}
}
