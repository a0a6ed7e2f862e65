package lobby

import (
	"slices"

	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

// Redact projects l into the wire snapshot seen by viewerID. Every player has
// a PlayerCards entry but only the viewer's own hand is filled in. An empty
// viewerID reveals no hands.
func Redact(l *Lobby, viewerID string) types.LobbySnapshot {
	players := make([]types.Player, len(l.Players))
	cards := make(map[string][]int, len(l.Players))
	for i, p := range l.Players {
		players[i] = types.Player{ID: p.ID, Name: p.Name}
		cards[p.ID] = []int{}
		if viewerID != "" && p.ID == viewerID {
			cards[p.ID] = l.Game.HandOf(p.ID)
		}
	}

	return types.LobbySnapshot{
		ID:              l.ID,
		Pin:             l.Pin,
		Players:         players,
		MaxPlayers:      l.MaxPlayers,
		Started:         l.Started(),
		PlayerCards:     cards,
		AvailableCount:  len(l.Game.Deck),
		DiscardPile:     slices.Clone(l.Game.Discard),
		CurrentPlayerID: l.Game.Turn,
		CreatedAt:       l.CreatedAt,
	}
}

// RedactAll projects every lobby with no hands revealed, for the lobby list.
func RedactAll(lobbies []*Lobby) []types.LobbySnapshot {
	out := make([]types.LobbySnapshot, len(lobbies))
	for i, l := range lobbies {
		out[i] = Redact(l, "")
	}
	return out
}
