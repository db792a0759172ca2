package main

import (
	"fmt"
	"os"
	"strconv"

	"quantmarket/server/analytics"
	"quantmarket/server/config"
	"quantmarket/server/engine"
)

// runSim plays one full game in the terminal with a naive EV-chasing
// participant. It is a debugging harness: unlike a real player it gets to
// see the true-value estimate.
func runSim(cfg *config.Config, seed int64) {
	s := engine.NewSession("sim", cfg.Market, seed)

	const minEdge = 2.0 // don't bother trading inside the noise

	for {
		st := s.State()
		fmt.Printf("\n== Round %d ==\n", st.Round)
		fmt.Printf("Your card: %s | Position: %d | Cash: %.2f | Flow: %d buys / %d sells\n",
			st.PlayerCard, st.Position, st.Cash, st.OrderFlow.Buys, st.OrderFlow.Sells)
		for _, c := range st.Community {
			fmt.Printf("  community: %s\n", c)
		}

		tv, err := s.TrueValue()
		if err != nil {
			fmt.Printf("  estimator degenerate: %v\n", err)
			break
		}
		fmt.Printf("  true value estimate: %.2f\n", tv)

		evs := analytics.QuoteEVs(st.Quotes, tv)
		for i, q := range st.Quotes {
			fmt.Printf("  CPU %d: bid %.2f / ask %.2f  (bidEV %+.2f, askEV %+.2f)\n",
				q.PlayerID, q.Bid, q.Ask, evs[i].BidEV, evs[i].AskEV)
		}
		for _, a := range analytics.Arbitrage(st.Quotes) {
			fmt.Printf("  ARB: buy from CPU %d, sell to CPU %d, profit %.2f\n", a.BuyFrom, a.SellTo, a.Profit)
		}

		// Take the single best quote each round, if it clears the edge bar.
		bestSide, bestID, bestEdge := engine.Side(""), 0, minEdge
		for _, q := range st.Quotes {
			if buyEdge := tv - q.Ask; buyEdge > bestEdge {
				bestSide, bestID, bestEdge = engine.Buy, q.PlayerID, buyEdge
			}
			if sellEdge := q.Bid - tv; sellEdge > bestEdge {
				bestSide, bestID, bestEdge = engine.Sell, q.PlayerID, sellEdge
			}
		}
		if bestSide != "" {
			if t, err := s.Trade(bestSide, bestID); err == nil {
				fmt.Printf("  >> %s CPU %d at %.2f (position %d, cash %.2f)\n",
					t.Side, t.Counterparty, t.Price, t.Position, t.Cash)
			}
		}

		if st.Round >= engine.FinalRound {
			break
		}
		card, err := s.NextRound()
		if err != nil {
			fmt.Printf("round advance failed: %v\n", err)
			return
		}
		fmt.Printf("  revealed: %s\n", card)
	}

	finalValue, finalPL, err := s.EndGame()
	if err != nil {
		fmt.Printf("settlement failed: %v\n", err)
		return
	}
	st := s.State()
	fmt.Printf("\n== Settlement ==\n")
	for _, p := range st.AllPlayers {
		fmt.Printf("  player %d held %s\n", p.ID, p.Card)
	}
	fmt.Printf("  final value: %.2f\n", finalValue)
	fmt.Printf("  final P&L:   %.2f  (cash %.2f, position %d)\n", finalPL, st.Cash, st.Position)
}

func deckSeedFromEnv() int64 {
	if s := os.Getenv("DECK_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return 0
}
