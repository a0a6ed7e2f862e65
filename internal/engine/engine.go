package engine

import (
	"errors"
	"math/rand/v2"
	"slices"
)

var ErrNotStarted = errors.New("game not started")
var ErrAlreadyStarted = errors.New("game already started")
var ErrWrongTurn = errors.New("not your turn")
var ErrDeckEmpty = errors.New("no cards left in deck")
var ErrDiscardEmpty = errors.New("discard pile is empty")
var ErrIllegalCard = errors.New("card index out of range")
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	DeckSize        = 52
	DefaultHandSize = 7
)

type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInProgress Phase = "in_progress"
)

type Rules struct {
	HandSize int
}

// Game is the per-lobby card session. Seats is the turn order captured when
// the game starts; Turn is the seat allowed to draw and discard next.
type Game struct {
	Phase   Phase
	Seats   []string
	Deck    []int
	Hands   map[string][]int
	Discard []int
	Turn    string
	Rules   Rules

	rng *rand.Rand
}

type CommandType string

const (
	CmdStartGame       CommandType = "StartGame"
	CmdDrawFromDeck    CommandType = "DrawFromDeck"
	CmdDrawFromDiscard CommandType = "DrawFromDiscard"
	CmdDiscardCard     CommandType = "DiscardCard"
)

/*
	CmdStartGame       -> EvtGameStarted -> EvtHandDealt (one per seat)
	CmdDrawFromDeck    -> EvtCardDrawn
	CmdDrawFromDiscard -> EvtCardDrawn -> EvtHandDealt (drawer only)
	CmdDiscardCard     -> EvtCardDiscarded -> EvtTurnAdvanced -> EvtHandDealt (discarder only)
*/

type Command struct {
	Type      CommandType
	PlayerID  string
	Seats     []string // StartGame only
	CardIndex int      // DiscardCard only
}

type EventType string

const (
	EvtGameStarted   EventType = "GameStarted"
	EvtHandDealt     EventType = "HandDealt"
	EvtCardDrawn     EventType = "CardDrawn"
	EvtCardDiscarded EventType = "CardDiscarded"
	EvtTurnAdvanced  EventType = "TurnAdvanced"
)

type Pile string

const (
	PileDeck    Pile = "deck"
	PileDiscard Pile = "discard"
)

// Event reports what a command did. Card and Cards carry private hand
// contents and must only be forwarded to PlayerID.
type Event struct {
	Type     EventType
	PlayerID string
	Pile     Pile
	Card     int
	Cards    []int
}

func NewGame(rules Rules, rng *rand.Rand) *Game {
	if rules.HandSize <= 0 {
		rules.HandSize = DefaultHandSize
	}
	if rng == nil {
		rng = NewRand()
	}
	g := &Game{Rules: rules, rng: rng}
	g.Reset()
	return g
}

// Apply validates cmd against the current state and, only when it is legal,
// mutates the game and returns the resulting events.
func (g *Game) Apply(cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdStartGame:
		if g.Phase == PhaseInProgress {
			return nil, ErrAlreadyStarted
		}
		return g.start(cmd.Seats), nil

	case CmdDrawFromDeck:
		if err := g.checkTurn(cmd.PlayerID); err != nil {
			return nil, err
		}
		if len(g.Deck) == 0 {
			return nil, ErrDeckEmpty
		}

		card := g.drawRandom()
		g.Hands[cmd.PlayerID] = append(g.Hands[cmd.PlayerID], card)

		return []Event{
			{Type: EvtCardDrawn, PlayerID: cmd.PlayerID, Pile: PileDeck, Card: card},
		}, nil

	case CmdDrawFromDiscard:
		if err := g.checkTurn(cmd.PlayerID); err != nil {
			return nil, err
		}
		if len(g.Discard) == 0 {
			return nil, ErrDiscardEmpty
		}

		top := len(g.Discard) - 1
		card := g.Discard[top]
		g.Discard = g.Discard[:top]
		g.Hands[cmd.PlayerID] = append(g.Hands[cmd.PlayerID], card)

		return []Event{
			{Type: EvtCardDrawn, PlayerID: cmd.PlayerID, Pile: PileDiscard, Card: card},
			{Type: EvtHandDealt, PlayerID: cmd.PlayerID, Cards: g.HandOf(cmd.PlayerID)},
		}, nil

	case CmdDiscardCard:
		if err := g.checkTurn(cmd.PlayerID); err != nil {
			return nil, err
		}
		hand := g.Hands[cmd.PlayerID]
		if cmd.CardIndex < 0 || cmd.CardIndex >= len(hand) {
			return nil, ErrIllegalCard
		}

		card, rest := takeAt(hand, cmd.CardIndex)
		g.Hands[cmd.PlayerID] = rest
		g.Discard = append(g.Discard, card)
		g.Turn = nextSeat(g.Seats, g.Turn)

		return []Event{
			{Type: EvtCardDiscarded, PlayerID: cmd.PlayerID, Pile: PileDiscard, Card: card},
			{Type: EvtTurnAdvanced, PlayerID: g.Turn},
			{Type: EvtHandDealt, PlayerID: cmd.PlayerID, Cards: g.HandOf(cmd.PlayerID)},
		}, nil

	default:
		return nil, ErrUnsupportedCommand
	}
}

// Reset returns the game to the waiting phase with every game field cleared.
func (g *Game) Reset() {
	g.Phase = PhaseWaiting
	g.Seats = nil
	g.Deck = []int{}
	g.Hands = map[string][]int{}
	g.Discard = []int{}
	g.Turn = ""
}

func (g *Game) start(seats []string) []Event {
	g.Phase = PhaseInProgress
	g.Seats = slices.Clone(seats)
	g.Deck = NewDeck()
	g.Hands = make(map[string][]int, len(seats))
	g.Discard = []int{}
	g.Turn = ""
	if len(seats) > 0 {
		g.Turn = seats[0]
	}

	events := make([]Event, 0, len(seats)+1)
	events = append(events, Event{Type: EvtGameStarted, PlayerID: g.Turn})

	// One full hand at a time, in seat order.
	for _, id := range seats {
		hand := make([]int, 0, g.Rules.HandSize)
		for i := 0; i < g.Rules.HandSize && len(g.Deck) > 0; i++ {
			hand = append(hand, g.drawRandom())
		}
		g.Hands[id] = hand
		events = append(events, Event{Type: EvtHandDealt, PlayerID: id, Cards: slices.Clone(hand)})
	}
	return events
}

func (g *Game) checkTurn(playerID string) error {
	if g.Phase != PhaseInProgress {
		return ErrNotStarted
	}
	if g.Turn == "" || g.Turn != playerID {
		return ErrWrongTurn
	}
	return nil
}

func (g *Game) drawRandom() int {
	card, rest := takeAt(g.Deck, g.rng.IntN(len(g.Deck)))
	g.Deck = rest
	return card
}
