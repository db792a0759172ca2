package engine

type Suit string

const (
	Spades   Suit = "spades"
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
)

// Suits in deck order. Hearts are removed from the game entirely.
var Suits = []Suit{Spades, Clubs, Diamonds}

const (
	NumRanks      = 13
	DeckSize      = 39 // 13 ranks x 3 suits
	CommunitySize = 4
	NumPlayers    = 5 // human + 4 market makers
	HumanID       = 0
	FinalRound    = 3
	PreTradeRound = -1
)

type Card struct {
	Suit  Suit `json:"suit"`
	Rank  int  `json:"rank"` // 1..13
	Value int  `json:"value"`
}

type Player struct {
	ID   int  `json:"id"`
	Card Card `json:"card"`
}

type Quote struct {
	PlayerID int     `json:"playerId"`
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
}

// OrderFlow accumulates executed trades for the whole game. It is never
// reset between rounds.
type OrderFlow struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// MarketMaker is the per-agent belief state. Mutated on every quote update.
type MarketMaker struct {
	ID               int
	HasPrivateInfo   bool
	PrivateInfoNoise float64 // how noisy their read of true value is
	PrivateInfoValue float64 // last computed belief
	LastQuote        *Quote
	OrderFlowImpact  float64 // how much accumulated flow moves their belief
	ConvergenceRate  float64 // how fast they drift toward peers and true value
}

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Trade is one executed fill against a market maker's quote.
type Trade struct {
	Round        int     `json:"round"`
	Side         Side    `json:"side"`
	Counterparty int     `json:"counterparty"`
	Price        float64 `json:"price"`
	Position     int     `json:"position"` // after the fill
	Cash         float64 `json:"cash"`     // after the fill
}

// Rand is the randomness the belief-update formulas draw from. *rand.Rand
// satisfies it; tests substitute fixed sequences.
type Rand interface {
	Float64() float64
}

// Config holds the tunable market constants.
type Config struct {
	Spread                 float64 `yaml:"spread"`
	PrivateInfoProbability float64 `yaml:"private_info_probability"`
	MinNoise               float64 `yaml:"min_noise"`
	MaxNoise               float64 `yaml:"max_noise"`
	OrderFlowImpact        float64 `yaml:"order_flow_impact"`
	ConvergenceRate        float64 `yaml:"convergence_rate"`
	InitialSpreadMult      float64 `yaml:"initial_spread_multiplier"`
}

// DefaultConfig mirrors the classic interview-game parameters: 20-wide
// markets, 40% informed makers, heavy initial noise.
func DefaultConfig() Config {
	return Config{
		Spread:                 20,
		PrivateInfoProbability: 0.4,
		MinNoise:               0.5,
		MaxNoise:               0.8,
		OrderFlowImpact:        0.15,
		ConvergenceRate:        0.4,
		InitialSpreadMult:      2,
	}
}
