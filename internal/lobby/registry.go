package lobby

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/cardlobby-backend/internal/engine"
)

const pinSpace = 1_000_000

// Registry owns every live lobby and the pin -> lobby relation. It is not
// safe for concurrent use; the hub serializes all calls.
type Registry struct {
	lobbies map[string]*Lobby
	pins    map[string]string

	maxPlayers int
	rules      engine.Rules
	rng        *rand.Rand
	now        func() time.Time
	newID      func() string
}

type option func(*Registry)

func WithMaxPlayers(n int) option {
	return func(r *Registry) { r.maxPlayers = n }
}

func WithHandSize(n int) option {
	return func(r *Registry) { r.rules.HandSize = n }
}

// WithRand sets the source used for pins and for every game created after.
func WithRand(rng *rand.Rand) option {
	return func(r *Registry) { r.rng = rng }
}

func WithClock(now func() time.Time) option {
	return func(r *Registry) { r.now = now }
}

func WithIDs(newID func() string) option {
	return func(r *Registry) { r.newID = newID }
}

func NewRegistry(opts ...option) *Registry {
	r := &Registry{
		lobbies:    make(map[string]*Lobby),
		pins:       make(map[string]string),
		maxPlayers: DefaultMaxPlayers,
		rules:      engine.Rules{HandSize: engine.DefaultHandSize},
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = engine.NewRand()
	}
	return r
}

// LeaveResult describes what a departure did to a lobby.
type LeaveResult struct {
	Lobby   *Lobby
	Deleted bool
	Reset   bool
}

func (r *Registry) Create(playerID, playerName string) (*Lobby, error) {
	name, err := cleanName(playerName)
	if err != nil {
		return nil, err
	}
	pin, err := r.newPin()
	if err != nil {
		return nil, err
	}

	l := &Lobby{
		ID:         r.newID(),
		Pin:        pin,
		Players:    []Player{{ID: playerID, Name: name}},
		MaxPlayers: r.maxPlayers,
		CreatedAt:  r.now(),
		Game:       engine.NewGame(r.rules, r.rng),
	}
	r.lobbies[l.ID] = l
	r.pins[l.Pin] = l.ID
	return l, nil
}

func (r *Registry) Join(pin, playerID, playerName string) (*Lobby, error) {
	name, err := cleanName(playerName)
	if err != nil {
		return nil, err
	}
	l, err := r.ByPin(pin)
	if err != nil {
		return nil, err
	}

	switch {
	case l.Started():
		return nil, ErrAlreadyStarted
	case len(l.Players) >= l.MaxPlayers:
		return nil, ErrFull
	case l.HasPlayer(playerID):
		return nil, ErrAlreadyInLobby
	case l.hasName(name):
		return nil, ErrNameTaken
	}

	l.Players = append(l.Players, Player{ID: playerID, Name: name})
	return l, nil
}

// Leave removes playerID from the lobby. An emptied lobby is deleted; a lobby
// left mid-game goes back to waiting with every game field cleared.
func (r *Registry) Leave(lobbyID, playerID string) (LeaveResult, error) {
	l, err := r.Get(lobbyID)
	if err != nil {
		return LeaveResult{}, err
	}
	if !l.HasPlayer(playerID) {
		return LeaveResult{}, ErrNotInLobby
	}

	l.removePlayer(playerID)
	if len(l.Players) == 0 {
		r.delete(l)
		return LeaveResult{Lobby: l, Deleted: true}, nil
	}

	res := LeaveResult{Lobby: l}
	if l.Started() {
		l.Game.Reset()
		res.Reset = true
	}
	return res, nil
}

// DisconnectCleanup applies Leave to every lobby containing playerID.
func (r *Registry) DisconnectCleanup(playerID string) []LeaveResult {
	var results []LeaveResult
	for _, l := range r.List() {
		if !l.HasPlayer(playerID) {
			continue
		}
		res, err := r.Leave(l.ID, playerID)
		if err != nil {
			continue
		}
		results = append(results, res)
	}
	return results
}

// Start deals a new game. Starting a lobby that is already in progress is a
// no-op and returns nil events.
func (r *Registry) Start(lobbyID, playerID string) (*Lobby, []engine.Event, error) {
	l, err := r.Get(lobbyID)
	if err != nil {
		return nil, nil, err
	}
	if !l.HasPlayer(playerID) {
		return nil, nil, ErrNotInLobby
	}
	if l.Started() {
		return l, nil, nil
	}

	events, err := l.Game.Apply(engine.Command{Type: engine.CmdStartGame, Seats: l.seatIDs()})
	if err != nil {
		return nil, nil, fmt.Errorf("start lobby %s: %w", l.ID, err)
	}
	return l, events, nil
}

// Play applies an in-game command (draw or discard) to the lobby's game.
func (r *Registry) Play(lobbyID string, cmd engine.Command) (*Lobby, []engine.Event, error) {
	l, err := r.Get(lobbyID)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Type == engine.CmdStartGame {
		return nil, nil, engine.ErrUnsupportedCommand
	}

	events, err := l.Game.Apply(cmd)
	if err != nil {
		return nil, nil, err
	}
	return l, events, nil
}

func (r *Registry) Get(lobbyID string) (*Lobby, error) {
	l, ok := r.lobbies[lobbyID]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (r *Registry) ByPin(pin string) (*Lobby, error) {
	id, ok := r.pins[pin]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Get(id)
}

// List returns every live lobby, oldest first.
func (r *Registry) List() []*Lobby {
	out := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *Lobby) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (r *Registry) Len() int {
	return len(r.lobbies)
}

func (r *Registry) delete(l *Lobby) {
	delete(r.lobbies, l.ID)
	delete(r.pins, l.Pin)
}

// newPin draws 6-digit pins until one is not held by a live lobby.
func (r *Registry) newPin() (string, error) {
	if len(r.pins) >= pinSpace {
		return "", ErrPinSpaceExhausted
	}
	for {
		pin := fmt.Sprintf("%06d", r.rng.IntN(pinSpace))
		if _, taken := r.pins[pin]; !taken {
			return pin, nil
		}
	}
}
