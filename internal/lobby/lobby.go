package lobby

import (
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DoyleJ11/cardlobby-backend/internal/engine"
)

var ErrNotFound = errors.New("lobby not found")
var ErrAlreadyStarted = errors.New("game already started")
var ErrFull = errors.New("lobby is full")
var ErrNameTaken = errors.New("name already taken")
var ErrInvalidName = errors.New("invalid player name")
var ErrNotInLobby = errors.New("player not in lobby")
var ErrAlreadyInLobby = errors.New("player already in lobby")
var ErrPinSpaceExhausted = errors.New("no free lobby pins")

const (
	DefaultMaxPlayers = 6
	MaxNameLength     = 32
)

type Player struct {
	ID   string
	Name string
}

// Lobby is a pin-addressed group of players sharing one game session.
type Lobby struct {
	ID         string
	Pin        string
	Players    []Player
	MaxPlayers int
	CreatedAt  time.Time
	Game       *engine.Game
}

func (l *Lobby) Started() bool {
	return l.Game.Phase == engine.PhaseInProgress
}

func (l *Lobby) HasPlayer(id string) bool {
	return slices.ContainsFunc(l.Players, func(p Player) bool { return p.ID == id })
}

func (l *Lobby) hasName(name string) bool {
	return slices.ContainsFunc(l.Players, func(p Player) bool { return p.Name == name })
}

func (l *Lobby) seatIDs() []string {
	ids := make([]string, len(l.Players))
	for i, p := range l.Players {
		ids[i] = p.ID
	}
	return ids
}

func (l *Lobby) removePlayer(id string) {
	l.Players = slices.DeleteFunc(l.Players, func(p Player) bool { return p.ID == id })
	delete(l.Game.Hands, id)
}

// cleanName trims surrounding whitespace and rejects empty or overlong names.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
