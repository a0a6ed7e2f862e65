package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact_OnlyViewerHandVisible(t *testing.T) {
	r := newTestRegistry()
	l := startedLobby(t, r)

	snap := Redact(l, "bob-id")

	assert.Equal(t, l.Game.Hands["bob-id"], snap.PlayerCards["bob-id"])
	require.Contains(t, snap.PlayerCards, "alice-id")
	assert.Empty(t, snap.PlayerCards["alice-id"])
	assert.NotNil(t, snap.PlayerCards["alice-id"])
	assert.Equal(t, 38, snap.AvailableCount)
	assert.Equal(t, "alice-id", snap.CurrentPlayerID)
	assert.True(t, snap.Started)
	assert.Equal(t, l.Pin, snap.Pin)

	// Internal state stays fully populated.
	assert.Len(t, l.Game.Hands["alice-id"], 7)
}

func TestRedact_SnapshotIsDetached(t *testing.T) {
	r := newTestRegistry()
	l := startedLobby(t, r)

	snap := Redact(l, "alice-id")
	snap.PlayerCards["alice-id"][0] = -1
	snap.Players[0].Name = "mallory"

	assert.NotEqual(t, -1, l.Game.Hands["alice-id"][0])
	assert.Equal(t, "Alice", l.Players[0].Name)
}

func TestRedactAll_NoHands(t *testing.T) {
	r := newTestRegistry()
	startedLobby(t, r)
	_, err := r.Create("c", "C")
	require.NoError(t, err)

	snaps := RedactAll(r.List())
	require.Len(t, snaps, 2)
	for _, snap := range snaps {
		for id, cards := range snap.PlayerCards {
			assert.Empty(t, cards, "hand for %s leaked", id)
		}
	}
	assert.NotNil(t, snaps[1].DiscardPile)
}
