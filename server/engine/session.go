package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

var (
	ErrGameEnded     = errors.New("game has ended")
	ErrGameNotOver   = errors.New("game is not in its final round")
	ErrNoMoreRounds  = errors.New("no rounds left")
	ErrAlreadyTraded = errors.New("already traded with this counterparty this round")
)

// Session owns all mutable game state. Every mutation goes through its
// methods under one lock, so quote reads always observe a complete set:
// updates build a fresh slice and swap it in, never edit quotes in place.
type Session struct {
	mu sync.Mutex

	ID  string
	cfg Config
	rng Rand

	deck      []Card
	community []Card
	players   []Player
	makers    []*MarketMaker

	round      int
	quotes     []Quote
	flow       OrderFlow
	position   int
	cash       float64
	interacted map[int]bool
	trades     []Trade

	ended      bool
	finalValue float64
	finalPL    float64
}

// NewSession deals a fresh game and posts the pre-trading quotes.
// seed 0 seeds from the clock.
func NewSession(id string, cfg Config, seed int64) *Session {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	deck := NewDeck(seed)
	community, players := Deal(deck, r)

	s := &Session{
		ID:         id,
		cfg:        cfg,
		rng:        r,
		deck:       deck,
		community:  community,
		players:    players,
		round:      PreTradeRound,
		interacted: make(map[int]bool),
	}
	s.refreshQuotes()
	return s
}

// refreshQuotes runs the market update protocol: recompute true value,
// lazily initialize the makers once, then replace the quote set. A
// degenerate estimator result skips the update and keeps the stale quotes.
func (s *Session) refreshQuotes() {
	tv, err := TrueValue(s.deck, s.community, s.players, s.round)
	if err != nil {
		return
	}
	if len(s.makers) == 0 {
		s.makers = InitMarketMakers(s.players, s.cfg, s.rng)
	}
	s.quotes = UpdateMarketMakers(s.makers, s.players, tv, s.round, s.flow, s.quotes, s.cfg, s.rng)
}

// Trade executes one buy or sell against a counterparty's current quote.
// Each counterparty can be traded with at most once per round.
func (s *Session) Trade(side Side, counterparty int) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return Trade{}, ErrGameEnded
	}
	if s.interacted[counterparty] {
		return Trade{}, ErrAlreadyTraded
	}
	var quote *Quote
	for i := range s.quotes {
		if s.quotes[i].PlayerID == counterparty {
			quote = &s.quotes[i]
			break
		}
	}
	if quote == nil {
		return Trade{}, fmt.Errorf("no quote from counterparty %d", counterparty)
	}

	var price float64
	switch side {
	case Buy:
		price = quote.Ask
		s.position++
		s.cash -= price
		s.flow.Buys++
	case Sell:
		price = quote.Bid
		s.position--
		s.cash += price
		s.flow.Sells++
	default:
		return Trade{}, fmt.Errorf("unknown side %q", side)
	}
	s.interacted[counterparty] = true

	t := Trade{
		Round:        s.round,
		Side:         side,
		Counterparty: counterparty,
		Price:        price,
		Position:     s.position,
		Cash:         s.cash,
	}
	s.trades = append(s.trades, t)
	return t, nil
}

// NextRound reveals the next community card, clears the per-round trade
// guard, and reposts quotes. Returns the newly revealed card.
func (s *Session) NextRound() (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return Card{}, ErrGameEnded
	}
	if s.round >= FinalRound {
		return Card{}, ErrNoMoreRounds
	}
	s.round++
	s.interacted = make(map[int]bool)
	s.refreshQuotes()
	return s.community[s.round], nil
}

// EndGame settles the game: valid only in the final round. All cards are
// considered face up; further trading is frozen.
func (s *Session) EndGame() (finalValue, finalPL float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return 0, 0, ErrGameEnded
	}
	if s.round != FinalRound {
		return 0, 0, ErrGameNotOver
	}
	s.ended = true
	s.finalValue = FinalSum(s.community, s.players)
	s.finalPL = s.cash + float64(s.position)*s.finalValue
	return s.finalValue, s.finalPL, nil
}

// State is the participant-visible view of a session. It never carries
// true value; hidden cards only appear once the game has ended.
type State struct {
	ID         string    `json:"id"`
	Round      int       `json:"round"`
	Ended      bool      `json:"ended"`
	Quotes     []Quote   `json:"quotes"`
	OrderFlow  OrderFlow `json:"orderFlow"`
	Position   int       `json:"position"`
	Cash       float64   `json:"cash"`
	PlayerCard Card      `json:"playerCard"`
	Community  []Card    `json:"community"` // revealed prefix only
	Interacted []int     `json:"interacted"`
	Trades     []Trade   `json:"trades"`

	// Populated only after EndGame.
	AllPlayers []Player `json:"allPlayers,omitempty"`
	FinalValue *float64 `json:"finalValue,omitempty"`
	FinalPL    *float64 `json:"finalPL,omitempty"`
}

// State snapshots the visible session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:         s.ID,
		Round:      s.round,
		Ended:      s.ended,
		Quotes:     append([]Quote(nil), s.quotes...),
		OrderFlow:  s.flow,
		Position:   s.position,
		Cash:       s.cash,
		PlayerCard: s.players[HumanID].Card,
		Community:  append([]Card(nil), Revealed(s.community, s.round)...),
		Trades:     append([]Trade(nil), s.trades...),
	}
	for id := range s.interacted {
		st.Interacted = append(st.Interacted, id)
	}
	sort.Ints(st.Interacted)
	if s.ended {
		st.AllPlayers = append([]Player(nil), s.players...)
		st.Community = append([]Card(nil), s.community...)
		fv, pl := s.finalValue, s.finalPL
		st.FinalValue = &fv
		st.FinalPL = &pl
	}
	return st
}

// TrueValue exposes the current estimate for analytics consumers. It is
// engine-private knowledge: nothing here may flow into coaching payloads.
func (s *Session) TrueValue() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TrueValue(s.deck, s.community, s.players, s.round)
}

// Round returns the current round index (-1 pre-trading through 3 final).
func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Ended reports whether the game has been settled.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}
