// Package analytics derives trading signals from a quote set and the
// engine's true-value estimate. Everything here is pure; nothing mutates
// session state.
package analytics

import "quantmarket/server/engine"

// Arb is a riskless round trip: buy at buyFrom's ask, sell at sellTo's bid.
type Arb struct {
	BuyFrom int     `json:"buyFrom"`
	SellTo  int     `json:"sellTo"`
	Profit  float64 `json:"profit"`
}

// Arbitrage scans every ordered pair of distinct quotes. Both directions of
// a pair are checked independently, so mutually crossed quotes report two
// opportunities.
func Arbitrage(quotes []engine.Quote) []Arb {
	var out []Arb
	for _, sellTo := range quotes {
		for _, buyFrom := range quotes {
			if buyFrom.PlayerID == sellTo.PlayerID {
				continue
			}
			if sellTo.Bid > buyFrom.Ask {
				out = append(out, Arb{
					BuyFrom: buyFrom.PlayerID,
					SellTo:  sellTo.PlayerID,
					Profit:  sellTo.Bid - buyFrom.Ask,
				})
			}
		}
	}
	return out
}

// QuoteEV scores one quote against the true value: BidEV is the quoting
// maker's edge when its bid is hit, AskEV when its ask is lifted. A
// negative side means taking that side is profitable for the participant.
type QuoteEV struct {
	PlayerID int     `json:"playerId"`
	BidEV    float64 `json:"bidEV"`
	AskEV    float64 `json:"askEV"`
}

func QuoteEVs(quotes []engine.Quote, trueValue float64) []QuoteEV {
	out := make([]QuoteEV, len(quotes))
	for i, q := range quotes {
		out[i] = QuoteEV{
			PlayerID: q.PlayerID,
			BidEV:    trueValue - q.Bid,
			AskEV:    q.Ask - trueValue,
		}
	}
	return out
}

// FinalPL settles a position against the realized final value.
func FinalPL(cash float64, position int, finalValue float64) float64 {
	return cash + float64(position)*finalValue
}
