package types

// Reason is the stable machine-readable cause carried by a lobbyError.
type Reason string

const (
	ReasonNotFound       Reason = "NotFound"
	ReasonAlreadyStarted Reason = "AlreadyStarted"
	ReasonFull           Reason = "Full"
	ReasonNameTaken      Reason = "NameTaken"
	ReasonNotYourTurn    Reason = "NotYourTurn"
	ReasonInvalidMove    Reason = "InvalidMove"
	ReasonDeckEmpty      Reason = "DeckEmpty"
	ReasonDiscardEmpty   Reason = "DiscardEmpty"
	ReasonInvalidName    Reason = "InvalidName"
	ReasonNotInLobby     Reason = "NotInLobby"
	ReasonAlreadyInLobby Reason = "AlreadyInLobby"
	ReasonBadRequest     Reason = "BadRequest"
	ReasonUnknownEvent   Reason = "UnknownEvent"
	ReasonInternal       Reason = "Internal"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:       "Lobby not found",
	ReasonAlreadyStarted: "Game already started",
	ReasonFull:           "Lobby is full",
	ReasonNameTaken:      "Name already taken",
	ReasonNotYourTurn:    "Not your turn",
	ReasonInvalidMove:    "Invalid move",
	ReasonDeckEmpty:      "No cards left in deck",
	ReasonDiscardEmpty:   "Discard pile is empty",
	ReasonInvalidName:    "Player name is invalid",
	ReasonNotInLobby:     "You are not in this lobby",
	ReasonAlreadyInLobby: "You are already in this lobby",
	ReasonBadRequest:     "Malformed request",
	ReasonUnknownEvent:   "Unknown event",
	ReasonInternal:       "Internal server error",
}

// Message returns the human-readable text for r.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

func NewLobbyError(r Reason) LobbyError {
	return LobbyError{Reason: r, Message: r.Message()}
}
