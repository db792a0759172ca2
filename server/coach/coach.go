// Package coach turns engine snapshots into interview-style follow-up
// questions via an external LLM. Any failure degrades to a fixed prompt;
// the coach never blocks or corrupts gameplay.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"quantmarket/server/agent"
	"quantmarket/server/llm"
)

// FallbackQuestion is used whenever the collaborator is unreachable or
// returns nothing usable.
const FallbackQuestion = "I'm having trouble processing that. Could you walk me through your reasoning?"

const coachSystem = `You are a quant interviewer testing a candidate's understanding of trading concepts, probability, and market making. Be helpful and provide tips when appropriate. Never reveal information that the player shouldn't know.`

const gameRules = `
Game Rules:
- 39 cards (all hearts removed)
- Black cards (spades, clubs): +10x points where x is 1-13
- Red cards (diamonds): -10x points where x is 1-13
- 4 community cards revealed one by one
- 5 players (you + 4 computers)
- Each player has one private card
- Market makers create 20-wide markets
- You can only take markets, not make them
- 5 trading rounds: before first card, between each card reveal, and after last card
`

type Coach struct {
	Model   string
	Timeout time.Duration
	Log     *logrus.Logger
}

func New(model string, log *logrus.Logger) *Coach {
	return &Coach{Model: model, Timeout: 40 * time.Second, Log: log}
}

// Question asks the collaborator for a follow-up prompt about the given
// snapshot. It always returns something usable.
func (c *Coach) Question(ctx context.Context, snap agent.Snapshot) string {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	text, err := llm.PingText(ctx, c.Model, coachSystem, buildPrompt(snap))
	if err != nil || text == "" {
		if c.Log != nil {
			c.Log.WithError(err).WithField("action", snap.Action).Warn("coach fallback")
		}
		return FallbackQuestion
	}
	return text
}

// buildPrompt frames the visible game state for the interviewer. The
// snapshot contract already excludes everything the player shouldn't know;
// the directives below cover what the model must not infer aloud.
func buildPrompt(snap agent.Snapshot) string {
	quotesJSON, _ := json.Marshal(snap.MarketContext.Quotes)
	flowJSON, _ := json.Marshal(snap.MarketContext.OrderFlow)
	cardJSON, _ := json.Marshal(snap.MarketContext.PlayerCard)
	detailsJSON, _ := json.Marshal(snap.Details)

	return fmt.Sprintf(`You are an interviewer for a quant trading game. %s

Current Game State:
- Round: %d
- Position: %d
- Cash: %.2f
- Action: %s
- Details: %s

Visible Information:
- Community Cards Revealed: %d
- Current Market Quotes: %s
- Order Flow: %s
- Player's Card: %s

Your role is to:
1. Ask insightful questions about their trading decisions
2. Test their understanding of expected value, arbitrage, market making, information inference from quotes, and risk management
3. If they ask about EV, test their specific calculations
4. Provide helpful tips for better answers
5. Focus on their reasoning process
6. NEVER reveal information about: the true value of the game, CPU cards, future community cards, hidden statistics, or arbitrage opportunities they haven't discovered

Ask them one follow-up question that tests their reasoning. If they made a trade, ask about their thought process. If a card was revealed, ask how it affects their strategy.`,
		gameRules,
		snap.Round, snap.Position, snap.Cash, snap.Action, detailsJSON,
		len(snap.MarketContext.Community), quotesJSON, flowJSON, cardJSON,
	)
}
