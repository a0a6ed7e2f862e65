package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

func TestLobbyRows(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	snaps := []types.LobbySnapshot{
		{
			Pin:        "000042",
			Players:    []types.Player{{ID: "a", Name: "Alice"}},
			MaxPlayers: 6,
			CreatedAt:  now.Add(-90 * time.Second),
		},
		{
			Pin:             "123456",
			Players:         []types.Player{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
			MaxPlayers:      6,
			Started:         true,
			AvailableCount:  37,
			DiscardPile:     []int{4},
			CurrentPlayerID: "b",
			CreatedAt:       now.Add(-time.Hour),
		},
	}

	rows := lobbyRows(snaps, now)
	require.Len(t, rows, 3)
	assert.Equal(t, tableHeader, rows[0])
	assert.Equal(t, []string{"000042", "1/6 Alice", "waiting", "-", "-", "-", "1m30s"}, rows[1])
	assert.Equal(t, []string{"123456", "2/6 Alice, Bob", "playing", "Bob", "37", "1", "1h0m0s"}, rows[2])
}

func TestRenderLobbies(t *testing.T) {
	out, err := renderLobbies(nil, time.Now())
	require.NoError(t, err)
	assert.Contains(t, out, "no open lobbies")

	out, err = renderLobbies([]types.LobbySnapshot{{Pin: "999999", MaxPlayers: 6, CreatedAt: time.Now()}}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, out, "999999")
}
