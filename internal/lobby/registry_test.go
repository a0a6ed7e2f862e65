package lobby

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/cardlobby-backend/internal/engine"
)

func newTestRegistry(opts ...option) *Registry {
	var n int
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	defaults := []option{
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { n++; return base.Add(time.Duration(n) * time.Second) }),
	}
	return NewRegistry(append(defaults, opts...)...)
}

func startedLobby(t *testing.T, r *Registry) *Lobby {
	t.Helper()
	l, err := r.Create("alice-id", "Alice")
	require.NoError(t, err)
	_, err = r.Join(l.Pin, "bob-id", "Bob")
	require.NoError(t, err)
	_, events, err := r.Start(l.ID, "alice-id")
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return l
}

func TestCreate_SoleMemberWaiting(t *testing.T) {
	r := newTestRegistry()

	l, err := r.Create("alice-id", "  Alice ")
	require.NoError(t, err)

	assert.Len(t, l.Pin, 6)
	assert.Equal(t, []Player{{ID: "alice-id", Name: "Alice"}}, l.Players)
	assert.Equal(t, DefaultMaxPlayers, l.MaxPlayers)
	assert.False(t, l.Started())
	assert.Empty(t, l.Game.Deck)
	assert.Empty(t, l.Game.Hands)
	assert.Empty(t, l.Game.Discard)
	assert.Empty(t, l.Game.Turn)

	got, err := r.Get(l.ID)
	require.NoError(t, err)
	assert.Same(t, l, got)
}

func TestCreate_RejectsBadNames(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"", "   ", "abcdefghijklmnopqrstuvwxyz0123456789"} {
		_, err := r.Create("p", name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
	assert.Zero(t, r.Len())
}

func TestPins_UniqueAcrossLiveLobbies(t *testing.T) {
	// Enough lobbies that the rejection loop is expected to hit a taken pin.
	r := newTestRegistry(WithRand(rand.New(rand.NewPCG(5, 5))))
	seen := map[string]bool{}

	for i := 0; i < 2000; i++ {
		l, err := r.Create(fmt.Sprintf("p%d", i), "Player")
		require.NoError(t, err)
		require.Regexp(t, `^\d{6}$`, l.Pin)
		require.False(t, seen[l.Pin], "pin %s reused", l.Pin)
		seen[l.Pin] = true
	}
}

func TestPins_FreedPinIsNotResolvable(t *testing.T) {
	r := newTestRegistry()
	l, err := r.Create("a", "A")
	require.NoError(t, err)

	res, err := r.Leave(l.ID, "a")
	require.NoError(t, err)
	require.True(t, res.Deleted)

	_, err = r.ByPin(l.Pin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoin_Errors(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(t *testing.T, r *Registry) string // returns pin
		player  string
		pname   string
		wantErr error
	}{
		{
			name:    "unknown pin",
			setup:   func(t *testing.T, r *Registry) string { return "000000" },
			player:  "bob-id",
			pname:   "Bob",
			wantErr: ErrNotFound,
		},
		{
			name: "already started",
			setup: func(t *testing.T, r *Registry) string {
				return startedLobby(t, r).Pin
			},
			player:  "carol-id",
			pname:   "Carol",
			wantErr: ErrAlreadyStarted,
		},
		{
			name: "full",
			setup: func(t *testing.T, r *Registry) string {
				l, err := r.Create("p0", "P0")
				require.NoError(t, err)
				for i := 1; i < DefaultMaxPlayers; i++ {
					_, err := r.Join(l.Pin, fmt.Sprintf("p%d", i), fmt.Sprintf("P%d", i))
					require.NoError(t, err)
				}
				return l.Pin
			},
			player:  "late",
			pname:   "Late",
			wantErr: ErrFull,
		},
		{
			name: "duplicate name",
			setup: func(t *testing.T, r *Registry) string {
				l, err := r.Create("alice-id", "Alice")
				require.NoError(t, err)
				return l.Pin
			},
			player:  "other-id",
			pname:   "Alice",
			wantErr: ErrNameTaken,
		},
		{
			name: "same connection twice",
			setup: func(t *testing.T, r *Registry) string {
				l, err := r.Create("alice-id", "Alice")
				require.NoError(t, err)
				return l.Pin
			},
			player:  "alice-id",
			pname:   "Alicia",
			wantErr: ErrAlreadyInLobby,
		},
		{
			name: "empty name",
			setup: func(t *testing.T, r *Registry) string {
				l, err := r.Create("alice-id", "Alice")
				require.NoError(t, err)
				return l.Pin
			},
			player:  "bob-id",
			pname:   " ",
			wantErr: ErrInvalidName,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRegistry()
			pin := tc.setup(t, r)

			var before []Player
			if l, err := r.ByPin(pin); err == nil {
				before = slices.Clone(l.Players)
			}

			_, err := r.Join(pin, tc.player, tc.pname)
			require.ErrorIs(t, err, tc.wantErr)

			if l, err := r.ByPin(pin); err == nil {
				assert.Equal(t, before, l.Players, "players changed on failed join")
			}
		})
	}
}

func TestJoin_PreservesJoinOrder(t *testing.T) {
	r := newTestRegistry()
	l, err := r.Create("a", "A")
	require.NoError(t, err)

	for _, id := range []string{"b", "c"} {
		_, err := r.Join(l.Pin, id, id)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, l.seatIDs())
}

func TestStart_ExampleWalkthrough(t *testing.T) {
	r := newTestRegistry()
	l := startedLobby(t, r)

	assert.True(t, l.Started())
	assert.Len(t, l.Game.Hands["alice-id"], 7)
	assert.Len(t, l.Game.Hands["bob-id"], 7)
	assert.Len(t, l.Game.Deck, 38)
	assert.Equal(t, "alice-id", l.Game.Turn)

	_, _, err := r.Play(l.ID, engine.Command{Type: engine.CmdDrawFromDeck, PlayerID: "alice-id"})
	require.NoError(t, err)
	assert.Len(t, l.Game.Hands["alice-id"], 8)
	assert.Len(t, l.Game.Deck, 37)

	_, _, err = r.Play(l.ID, engine.Command{Type: engine.CmdDiscardCard, PlayerID: "alice-id", CardIndex: 0})
	require.NoError(t, err)
	assert.Len(t, l.Game.Hands["alice-id"], 7)
	assert.Len(t, l.Game.Discard, 1)
	assert.Equal(t, "bob-id", l.Game.Turn)
	assert.Equal(t, engine.DeckSize, l.Game.CardsInPlay())
}

func TestStart_SecondStartIsNoop(t *testing.T) {
	r := newTestRegistry()
	l := startedLobby(t, r)
	hand := slices.Clone(l.Game.Hands["alice-id"])

	got, events, err := r.Start(l.ID, "bob-id")
	require.NoError(t, err)
	assert.Nil(t, events)
	assert.Same(t, l, got)
	assert.Equal(t, hand, l.Game.Hands["alice-id"])
}

func TestStart_Errors(t *testing.T) {
	r := newTestRegistry()
	l, err := r.Create("a", "A")
	require.NoError(t, err)

	_, _, err = r.Start("missing", "a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = r.Start(l.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotInLobby)
	assert.False(t, l.Started())
}

func TestPlay_Errors(t *testing.T) {
	r := newTestRegistry()
	l := startedLobby(t, r)

	_, _, err := r.Play("missing", engine.Command{Type: engine.CmdDrawFromDeck, PlayerID: "alice-id"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = r.Play(l.ID, engine.Command{Type: engine.CmdDrawFromDeck, PlayerID: "bob-id"})
	assert.ErrorIs(t, err, engine.ErrWrongTurn)

	_, _, err = r.Play(l.ID, engine.Command{Type: engine.CmdStartGame, PlayerID: "alice-id"})
	assert.ErrorIs(t, err, engine.ErrUnsupportedCommand)
}

func TestLeave_DuringGameFullyResets(t *testing.T) {
	r := newTestRegistry()
	l := startedLobby(t, r)
	_, _, err := r.Play(l.ID, engine.Command{Type: engine.CmdDiscardCard, PlayerID: "alice-id", CardIndex: 0})
	require.NoError(t, err)

	res, err := r.Leave(l.ID, "alice-id")
	require.NoError(t, err)

	assert.False(t, res.Deleted)
	assert.True(t, res.Reset)
	assert.False(t, l.Started())
	assert.Empty(t, l.Game.Deck)
	assert.Empty(t, l.Game.Hands)
	assert.Empty(t, l.Game.Discard)
	assert.Empty(t, l.Game.Turn)
	assert.Equal(t, []Player{{ID: "bob-id", Name: "Bob"}}, l.Players)
}

func TestLeave_LastPlayerDeletesLobby(t *testing.T) {
	r := newTestRegistry()
	l, err := r.Create("a", "A")
	require.NoError(t, err)

	res, err := r.Leave(l.ID, "a")
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	_, err = r.Get(l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, r.Len())
}

func TestLeave_Errors(t *testing.T) {
	r := newTestRegistry()
	l, err := r.Create("a", "A")
	require.NoError(t, err)

	_, err = r.Leave("missing", "a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Leave(l.ID, "b")
	assert.ErrorIs(t, err, ErrNotInLobby)
	assert.Len(t, l.Players, 1)
}

func TestDisconnectCleanup_LeavesEveryLobby(t *testing.T) {
	r := newTestRegistry()
	solo, err := r.Create("x", "X")
	require.NoError(t, err)
	shared, err := r.Create("y", "Y")
	require.NoError(t, err)
	_, err = r.Join(shared.Pin, "x", "X")
	require.NoError(t, err)
	other, err := r.Create("z", "Z")
	require.NoError(t, err)

	results := r.DisconnectCleanup("x")
	require.Len(t, results, 2)

	assert.Equal(t, solo.ID, results[0].Lobby.ID)
	assert.True(t, results[0].Deleted)
	assert.Equal(t, shared.ID, results[1].Lobby.ID)
	assert.False(t, results[1].Deleted)
	assert.False(t, shared.HasPlayer("x"))

	ids := []string{}
	for _, l := range r.List() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{shared.ID, other.ID}, ids)
}

func TestDisconnectCleanup_UnknownPlayer(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Create("a", "A")
	require.NoError(t, err)
	assert.Empty(t, r.DisconnectCleanup("ghost"))
	assert.Equal(t, 1, r.Len())
}

func TestOptions(t *testing.T) {
	r := newTestRegistry(WithMaxPlayers(2), WithHandSize(3), WithIDs(func() string { return "fixed" }))
	l, err := r.Create("a", "A")
	require.NoError(t, err)
	assert.Equal(t, "fixed", l.ID)
	assert.Equal(t, 2, l.MaxPlayers)

	_, err = r.Join(l.Pin, "b", "B")
	require.NoError(t, err)
	_, err = r.Join(l.Pin, "c", "C")
	assert.ErrorIs(t, err, ErrFull)

	_, _, err = r.Start(l.ID, "a")
	require.NoError(t, err)
	assert.Len(t, l.Game.Hands["a"], 3)
	assert.Len(t, l.Game.Deck, engine.DeckSize-6)
}
