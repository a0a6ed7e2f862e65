// Package types defines the JSON wire protocol spoken over the /ws endpoint.
//
// Every frame in either direction is an envelope:
//
//	{"event": "<name>", "data": {...}}
//
// Client -> Server
//
//	createLobby      {playerName}
//	joinLobby        {pin, playerName}
//	leaveLobby       {lobbyId}
//	startLobby       {lobbyId}
//	getLobby         {lobbyId}
//	getLobbies       -
//	drawFromDeck     {lobbyId}
//	drawFromDiscard  {lobbyId}
//	discardCard      {lobbyId, cardIndex}
//
// Server -> Client
//
//	connected        {playerId}
//	lobbyList        [LobbySnapshot]
//	lobbyCreated, lobbyJoined, lobbyData, lobbyUpdated   LobbySnapshot
//	lobbyLeft        {lobbyId}
//	lobbyStarted     {lobbyId}
//	dealCards        {cards}
//	lobbyError       {reason, message}
package types

import "encoding/json"

const (
	EventCreateLobby     = "createLobby"
	EventJoinLobby       = "joinLobby"
	EventLeaveLobby      = "leaveLobby"
	EventStartLobby      = "startLobby"
	EventGetLobby        = "getLobby"
	EventGetLobbies      = "getLobbies"
	EventDrawFromDeck    = "drawFromDeck"
	EventDrawFromDiscard = "drawFromDiscard"
	EventDiscardCard     = "discardCard"
)

const (
	EventConnected    = "connected"
	EventLobbyList    = "lobbyList"
	EventLobbyCreated = "lobbyCreated"
	EventLobbyJoined  = "lobbyJoined"
	EventLobbyData    = "lobbyData"
	EventLobbyUpdated = "lobbyUpdated"
	EventLobbyLeft    = "lobbyLeft"
	EventLobbyStarted = "lobbyStarted"
	EventDealCards    = "dealCards"
	EventLobbyError   = "lobbyError"
)

// Envelope is an undecoded frame. The server reads client frames into it and
// clients read server frames into it.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is a frame queued for a single connection.
type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type CreateLobbyRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinLobbyRequest struct {
	Pin        string `json:"pin"`
	PlayerName string `json:"playerName"`
}

// LobbyRequest carries the lobby id for leave, start, get and both draws.
type LobbyRequest struct {
	LobbyID string `json:"lobbyId"`
}

type DiscardCardRequest struct {
	LobbyID   string `json:"lobbyId"`
	CardIndex *int   `json:"cardIndex"`
}

type Connected struct {
	PlayerID string `json:"playerId"`
}

type LobbyRef struct {
	LobbyID string `json:"lobbyId"`
}

type DealCards struct {
	Cards []int `json:"cards"`
}

type LobbyError struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}
