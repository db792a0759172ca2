package engine

import "math"

// AverageCardValue is the expected absolute value of a random card:
// mean rank 7 x 10, scaled by the 2:1 black/red suit split.
const AverageCardValue = 23.33

// InitMarketMakers builds one agent per non-human player. Informed-ness and
// noise are drawn once here and stay fixed for the whole game.
func InitMarketMakers(players []Player, cfg Config, rng Rand) []*MarketMaker {
	makers := make([]*MarketMaker, 0, len(players))
	for _, p := range players {
		if p.ID == HumanID {
			continue
		}
		makers = append(makers, &MarketMaker{
			ID:               p.ID,
			HasPrivateInfo:   rng.Float64() < cfg.PrivateInfoProbability,
			PrivateInfoNoise: rng.Float64()*(cfg.MaxNoise-cfg.MinNoise) + cfg.MinNoise,
			OrderFlowImpact:  cfg.OrderFlowImpact,
			ConvergenceRate:  cfg.ConvergenceRate,
		})
	}
	return makers
}

// initialValue anchors an uninformed maker hard to its own card; an informed
// maker instead gets a very noisy read of the true value.
func initialValue(m *MarketMaker, card Card, trueValue float64, rng Rand) float64 {
	baseValue := float64(card.Value) * 4

	if m.HasPrivateInfo {
		noise := m.PrivateInfoNoise * 3
		baseValue = trueValue * (1 + (rng.Float64()*2-1)*noise)
	} else {
		// Keep some connection to reality so the quote isn't pure card echo.
		baseValue = baseValue*0.8 + AverageCardValue*0.2
	}
	return baseValue
}

// spreadFor narrows the spread as rounds progress, clamped so it can never
// exceed the base spread. With the standard multiplier of 2 the clamp
// resolves to exactly the base spread in every round; the formula is kept
// as the game defines it.
func spreadFor(round int, cfg Config) float64 {
	mult := math.Min(1+(cfg.InitialSpreadMult-1)*(1-float64(round)*0.3), 2)
	return math.Min(cfg.Spread*mult, cfg.Spread)
}

// UpdateMarketMakers produces one quote per agent for the given round.
// prevQuotes is the previous round's full quote set; peers converge toward
// it, never toward quotes produced within this same call. Each maker's
// LastQuote and PrivateInfoValue are updated as a side effect.
//
// A maker whose dealt card cannot be found keeps its previous quote.
func UpdateMarketMakers(
	makers []*MarketMaker,
	players []Player,
	trueValue float64,
	round int,
	flow OrderFlow,
	prevQuotes []Quote,
	cfg Config,
	rng Rand,
) []Quote {
	quotes := make([]Quote, 0, len(makers))
	for _, m := range makers {
		card, ok := playerCard(players, m.ID)
		if !ok {
			if m.LastQuote != nil {
				quotes = append(quotes, *m.LastQuote)
			}
			continue
		}

		var baseValue float64
		if round <= 0 {
			baseValue = initialValue(m, card, trueValue, rng)
		} else {
			baseValue = trueValue

			if m.HasPrivateInfo {
				// Noise decays with the rounds, with a jitter so makers
				// don't converge in lockstep.
				noise := m.PrivateInfoNoise * (1 - float64(round)*m.ConvergenceRate) * (0.8 + rng.Float64()*0.4)
				baseValue = trueValue * (1 + (rng.Float64()*2-1)*noise)
			}

			// Own card still tugs at the belief, weight 0.24..0.42.
			cardWeight := 0.3 * (0.8 + rng.Float64()*0.4)
			baseValue = baseValue*(1-cardWeight) + float64(card.Value)*cardWeight

			// Net buy pressure pushes the belief up, amplified later on.
			baseValue += float64(flow.Buys-flow.Sells) * m.OrderFlowImpact * (1 + float64(round)*0.2)

			// Drift toward the consensus of the other makers' last quotes.
			otherSum, otherCount := 0.0, 0
			for _, q := range prevQuotes {
				if q.PlayerID == m.ID {
					continue
				}
				otherSum += (q.Bid + q.Ask) / 2
				otherCount++
			}
			if otherCount > 0 {
				avgOtherQuote := otherSum / float64(otherCount)
				convergenceWeight := m.ConvergenceRate * (1 + float64(round)*0.3) * (0.8 + rng.Float64()*0.4)
				baseValue = baseValue*(1-convergenceWeight) + avgOtherQuote*convergenceWeight
			}
		}

		spread := spreadFor(round, cfg)
		q := Quote{
			PlayerID: m.ID,
			Bid:      baseValue - spread/2,
			Ask:      baseValue + spread/2,
		}

		m.LastQuote = &q
		m.PrivateInfoValue = baseValue
		quotes = append(quotes, q)
	}
	return quotes
}

func playerCard(players []Player, id int) (Card, bool) {
	for _, p := range players {
		if p.ID == id {
			return p.Card, true
		}
	}
	return Card{}, false
}
