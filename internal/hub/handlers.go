package hub

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/cardlobby-backend/internal/engine"
	"github.com/DoyleJ11/cardlobby-backend/internal/journal"
	"github.com/DoyleJ11/cardlobby-backend/internal/lobby"
	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

func (h *Hub) handle(msg FromClient) {
	id, data := msg.ClientID, msg.Msg.Data
	h.log.Debug("client event", zap.String("client_id", id), zap.String("event", msg.Msg.Event))

	var err error
	switch msg.Msg.Event {
	case types.EventCreateLobby:
		err = h.createLobby(id, data)
	case types.EventJoinLobby:
		err = h.joinLobby(id, data)
	case types.EventLeaveLobby:
		err = h.leaveLobby(id, data)
	case types.EventStartLobby:
		err = h.startLobby(id, data)
	case types.EventGetLobby:
		err = h.getLobby(id, data)
	case types.EventGetLobbies:
		h.send(id, types.EventLobbyList, lobby.RedactAll(h.registry.List()))
	case types.EventDrawFromDeck:
		err = h.draw(id, data, engine.CmdDrawFromDeck)
	case types.EventDrawFromDiscard:
		err = h.draw(id, data, engine.CmdDrawFromDiscard)
	case types.EventDiscardCard:
		err = h.discard(id, data)
	case "":
		// Frames that are not an envelope arrive with no event name.
		err = errBadRequest
	default:
		err = fmt.Errorf("%w: %q", errUnknownEvent, msg.Msg.Event)
	}

	if err != nil {
		h.fail(id, msg.Msg.Event, err)
	}
}

// fail reports err to the requesting client only.
func (h *Hub) fail(clientID, event string, err error) {
	reason := reasonFor(err)
	fields := []zap.Field{
		zap.String("client_id", clientID),
		zap.String("event", event),
		zap.String("reason", string(reason)),
		zap.Error(err),
	}
	if reason == types.ReasonInternal {
		h.log.Error("request failed", fields...)
	} else {
		h.log.Debug("request rejected", fields...)
	}
	h.send(clientID, types.EventLobbyError, types.NewLobbyError(reason))
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return v, nil
}

func (h *Hub) createLobby(clientID string, data json.RawMessage) error {
	req, err := decode[types.CreateLobbyRequest](data)
	if err != nil {
		return err
	}
	l, err := h.registry.Create(clientID, req.PlayerName)
	if err != nil {
		return err
	}

	h.log.Info("lobby created",
		zap.String("lobby_id", l.ID),
		zap.String("pin", l.Pin),
		zap.String("client_id", clientID),
		zap.Int("lobbies", h.registry.Len()))
	h.record(journal.KindLobbyCreated, l, clientID, l.Players[0].Name, 0)

	h.send(clientID, types.EventLobbyCreated, lobby.Redact(l, clientID))
	h.broadcastList()
	return nil
}

func (h *Hub) joinLobby(clientID string, data json.RawMessage) error {
	req, err := decode[types.JoinLobbyRequest](data)
	if err != nil {
		return err
	}
	l, err := h.registry.Join(req.Pin, clientID, req.PlayerName)
	if err != nil {
		return err
	}

	h.log.Info("player joined",
		zap.String("lobby_id", l.ID),
		zap.String("client_id", clientID),
		zap.Int("players", len(l.Players)))
	h.record(journal.KindPlayerJoined, l, clientID, l.Players[len(l.Players)-1].Name, 0)

	h.send(clientID, types.EventLobbyJoined, lobby.Redact(l, clientID))
	h.broadcastLobby(l)
	h.broadcastList()
	return nil
}

func (h *Hub) leaveLobby(clientID string, data json.RawMessage) error {
	req, err := decode[types.LobbyRequest](data)
	if err != nil {
		return err
	}
	res, err := h.registry.Leave(req.LobbyID, clientID)
	if err != nil {
		return err
	}

	h.send(clientID, types.EventLobbyLeft, types.LobbyRef{LobbyID: res.Lobby.ID})
	h.afterLeave(res, clientID)
	h.broadcastList()
	return nil
}

// afterLeave records a departure and updates the members who remain.
func (h *Hub) afterLeave(res lobby.LeaveResult, clientID string) {
	l := res.Lobby
	h.log.Info("player left",
		zap.String("lobby_id", l.ID),
		zap.String("client_id", clientID),
		zap.Bool("deleted", res.Deleted),
		zap.Bool("reset", res.Reset))
	h.record(journal.KindPlayerLeft, l, clientID, "", 0)

	switch {
	case res.Deleted:
		h.record(journal.KindLobbyDeleted, l, "", "", 0)
	case res.Reset:
		h.record(journal.KindLobbyReset, l, "", "", 0)
		h.broadcastLobby(l)
	default:
		h.broadcastLobby(l)
	}
}

func (h *Hub) startLobby(clientID string, data json.RawMessage) error {
	req, err := decode[types.LobbyRequest](data)
	if err != nil {
		return err
	}
	l, events, err := h.registry.Start(req.LobbyID, clientID)
	if err != nil {
		return err
	}
	if events == nil {
		return nil
	}

	h.log.Info("game started",
		zap.String("lobby_id", l.ID),
		zap.Int("players", len(l.Players)))
	h.record(journal.KindGameStarted, l, clientID, "", 0)

	h.roomSend(l, types.EventLobbyStarted, types.LobbyRef{LobbyID: l.ID})
	h.broadcastLobby(l)
	h.deliverHands(events)
	h.broadcastList()
	return nil
}

func (h *Hub) getLobby(clientID string, data json.RawMessage) error {
	req, err := decode[types.LobbyRequest](data)
	if err != nil {
		return err
	}
	l, err := h.registry.Get(req.LobbyID)
	if err != nil {
		return err
	}
	h.send(clientID, types.EventLobbyData, lobby.Redact(l, clientID))
	return nil
}

func (h *Hub) draw(clientID string, data json.RawMessage, cmdType engine.CommandType) error {
	req, err := decode[types.LobbyRequest](data)
	if err != nil {
		return err
	}
	l, events, err := h.registry.Play(req.LobbyID, engine.Command{Type: cmdType, PlayerID: clientID})
	if err != nil {
		return err
	}

	for _, ev := range events {
		if ev.Type == engine.EvtCardDrawn {
			h.record(journal.KindCardDrawn, l, clientID, string(ev.Pile), 0)
		}
	}
	h.broadcastLobby(l)
	h.deliverHands(events)
	return nil
}

func (h *Hub) discard(clientID string, data json.RawMessage) error {
	req, err := decode[types.DiscardCardRequest](data)
	if err != nil {
		return err
	}
	if req.CardIndex == nil {
		return fmt.Errorf("missing cardIndex: %w", engine.ErrIllegalCard)
	}
	l, events, err := h.registry.Play(req.LobbyID, engine.Command{
		Type:      engine.CmdDiscardCard,
		PlayerID:  clientID,
		CardIndex: *req.CardIndex,
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		if ev.Type == engine.EvtCardDiscarded {
			h.record(journal.KindCardDiscarded, l, clientID, "", ev.Card)
		}
	}
	h.broadcastLobby(l)
	h.deliverHands(events)
	return nil
}

// deliverHands sends each HandDealt event privately to its owner.
func (h *Hub) deliverHands(events []engine.Event) {
	for _, ev := range events {
		if ev.Type == engine.EvtHandDealt {
			h.send(ev.PlayerID, types.EventDealCards, types.DealCards{Cards: ev.Cards})
		}
	}
}

func (h *Hub) record(kind journal.Kind, l *lobby.Lobby, playerID, detail string, card int) {
	h.journal.Record(journal.Entry{
		Kind:     kind,
		LobbyID:  l.ID,
		Pin:      l.Pin,
		PlayerID: playerID,
		Detail:   detail,
		Card:     card,
	})
}
