package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// CardValue computes the point value of a card: black suits score
// +10*rank, diamonds score -10*rank.
func CardValue(suit Suit, rank int) int {
	sign := 1
	if suit == Diamonds {
		sign = -1
	}
	return sign * 10 * rank
}

// NewDeck builds all 39 suit/rank combinations and returns them in a
// uniformly random order. seed 0 means "seed from the clock".
func NewDeck(seed int64) []Card {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for rnk := 1; rnk <= NumRanks; rnk++ {
			deck = append(deck, Card{Suit: s, Rank: rnk, Value: CardValue(s, rnk)})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Deal partitions a shuffled deck: the first 4 cards are the community
// sequence (revealed one per round, order fixed), and 5 of the remaining
// cards, reshuffled among themselves, go one to each player. No card ever
// holds both roles.
func Deal(deck []Card, r *rand.Rand) (community []Card, players []Player) {
	community = append([]Card(nil), deck[:CommunitySize]...)

	rest := append([]Card(nil), deck[CommunitySize:]...)
	for i := len(rest) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}
	players = make([]Player, NumPlayers)
	for i := 0; i < NumPlayers; i++ {
		players[i] = Player{ID: i, Card: rest[i]}
	}
	return community, players
}

func (c Card) String() string {
	return fmt.Sprintf("%d of %s (%+d)", c.Rank, c.Suit, c.Value)
}
