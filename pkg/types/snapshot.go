package types

import "time"

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LobbySnapshot is the public view of a lobby. PlayerCards has an entry for
// every player, but only the viewer's own entry is populated. The deck is
// reported by size only. CurrentPlayerID is empty when nobody holds the turn.
type LobbySnapshot struct {
	ID              string           `json:"id"`
	Pin             string           `json:"pin"`
	Players         []Player         `json:"players"`
	MaxPlayers      int              `json:"maxPlayers"`
	Started         bool             `json:"started"`
	PlayerCards     map[string][]int `json:"playerCards"`
	AvailableCount  int              `json:"availableCount"`
	DiscardPile     []int            `json:"discardPile"`
	CurrentPlayerID string           `json:"currentPlayerId"`
	CreatedAt       time.Time        `json:"createdAt"`
}
