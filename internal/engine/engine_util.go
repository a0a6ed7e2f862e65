package engine

import (
	"math/rand/v2"
	"slices"
)

// NewDeck returns the 52 card values 1..52 in order.
func NewDeck() []int {
	deck := make([]int, DeckSize)
	for i := range deck {
		deck[i] = i + 1
	}
	return deck
}

// NewRand returns a PCG source seeded from the runtime's random state.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// HandOf returns a copy of the player's hand, or an empty slice.
func (g *Game) HandOf(playerID string) []int {
	hand := g.Hands[playerID]
	if hand == nil {
		return []int{}
	}
	return slices.Clone(hand)
}

// CardsInPlay counts every card held by the deck, all hands and the discard pile.
func (g *Game) CardsInPlay() int {
	n := len(g.Deck) + len(g.Discard)
	for _, hand := range g.Hands {
		n += len(hand)
	}
	return n
}

// takeAt removes cards[i] keeping the order of the remaining cards.
func takeAt(cards []int, i int) (int, []int) {
	card := cards[i]
	return card, slices.Delete(cards, i, i+1)
}
