// Package agent defines the snapshot contract for the coaching
// collaborator: the only engine state allowed to leave the process for
// question generation.
package agent

import "quantmarket/server/engine"

// MarketContext is the visible market slice sent with every coaching
// request. By construction it cannot carry true value, other players'
// cards, unrevealed community cards, or arbitrage findings.
type MarketContext struct {
	Quotes     []engine.Quote   `json:"quotes"`
	OrderFlow  engine.OrderFlow `json:"orderFlow"`
	Round      int              `json:"round"`
	Community  []engine.Card    `json:"community"` // revealed prefix only
	PlayerCard engine.Card      `json:"playerCard"`
}

// Snapshot is the full coaching request payload.
type Snapshot struct {
	Action        string         `json:"action"`
	Round         int            `json:"round"`
	Details       map[string]any `json:"details,omitempty"`
	Position      int            `json:"position"`
	Cash          float64        `json:"cash"`
	MarketContext MarketContext  `json:"marketContext"`
}

// BuildSnapshot converts a visible session state into the coaching payload.
// The action names what just happened ("buy", "sell", "reveal", "game_end",
// "response"); details carries action-specific context such as the fill
// price.
func BuildSnapshot(st engine.State, action string, details map[string]any) Snapshot {
	return Snapshot{
		Action:   action,
		Round:    st.Round,
		Details:  details,
		Position: st.Position,
		Cash:     st.Cash,
		MarketContext: MarketContext{
			Quotes:     st.Quotes,
			OrderFlow:  st.OrderFlow,
			Round:      st.Round,
			Community:  st.Community,
			PlayerCard: st.PlayerCard,
		},
	}
}
