package engine

import "errors"

// ErrNoUnknownCards means the unknown-card pool was empty, which cannot
// happen with the fixed 4+5 game sizing. Callers skip the update rather
// than divide by zero.
var ErrNoUnknownCards = errors.New("no unknown cards left to average over")

// Revealed returns the community prefix visible at the given round:
// round -1 shows nothing, round r >= 0 shows r+1 cards.
func Revealed(community []Card, round int) []Card {
	n := round + 1
	if n < 0 {
		n = 0
	}
	if n > len(community) {
		n = len(community)
	}
	return community[:n]
}

// TrueValue is the unbiased estimate of the eventual total: every card
// whose identity is still open contributes the mean value of the
// unseen pool. "Used" cards are the revealed community cards plus every
// dealt player card, since their identities are already fixed.
func TrueValue(deck, community []Card, players []Player, round int) (float64, error) {
	revealed := Revealed(community, round)

	knownSum := 0.0
	for _, c := range revealed {
		knownSum += float64(c.Value)
	}

	used := make(map[Card]bool, len(revealed)+len(players))
	for _, c := range revealed {
		used[c] = true
	}
	for _, p := range players {
		used[p.Card] = true
	}

	remSum, remCount := 0.0, 0
	for _, c := range deck {
		if !used[c] {
			remSum += float64(c.Value)
			remCount++
		}
	}
	if remCount == 0 {
		return 0, ErrNoUnknownCards
	}
	avgUnknown := remSum / float64(remCount)

	// 9 cards make up the final total (4 community + 5 players). From a
	// single player's seat, their own card plus the revealed community
	// cards are known; the rest contribute the pool mean.
	leftCount := float64(CommunitySize + NumPlayers - (len(revealed) + 1))

	return knownSum + leftCount*avgUnknown, nil
}

// FinalSum is the exact settlement value once every card is face up:
// all community cards plus every player's card.
func FinalSum(community []Card, players []Player) float64 {
	sum := 0.0
	for _, c := range community {
		sum += float64(c.Value)
	}
	for _, p := range players {
		sum += float64(p.Card.Value)
	}
	return sum
}
