package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/cardlobby-backend/internal/journal"
	"github.com/DoyleJ11/cardlobby-backend/internal/lobby"
	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

type HubMsg interface{ isHubMsg() }

// Connect registers a connection. Outbox receives every frame addressed to it
// and is closed when the hub drops the connection or shuts down.
type Connect struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

type Disconnect struct {
	ClientID string
}

type FromClient struct {
	ClientID string
	Msg      types.Envelope
}

// ListLobbies replies with the lobby list as every client sees it.
type ListLobbies struct {
	Reply chan []types.LobbySnapshot
}

// LookupPin replies whether a live lobby holds Pin.
type LookupPin struct {
	Pin   string
	Reply chan bool
}

type ShutdownHub struct{}

func (Connect) isHubMsg()     {}
func (Disconnect) isHubMsg()  {}
func (FromClient) isHubMsg()  {}
func (ListLobbies) isHubMsg() {}
func (LookupPin) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

// Hub is the process-wide serial queue. Every inbound message is handled to
// completion, including all outbound frames, before the next one is read, so
// the registry needs no locking.
type Hub struct {
	inbox    chan HubMsg
	registry *lobby.Registry
	clients  map[string]chan types.ServerMessage
	journal  journal.Recorder
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHub(parent context.Context, registry *lobby.Registry, log *zap.Logger, rec journal.Recorder) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if rec == nil {
		rec = journal.Nop{}
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		registry: registry,
		clients:  make(map[string]chan types.ServerMessage),
		journal:  rec,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Send delivers m to the hub unless ctx ends or the hub has stopped first.
func (h *Hub) Send(ctx context.Context, m HubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-ctx.Done():
		return false
	case <-h.done:
		return false
	}
}

// Done is closed once the loop has exited.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				h.clients[msg.ClientID] = msg.Outbox
				h.log.Debug("client connected", zap.String("client_id", msg.ClientID))
				h.send(msg.ClientID, types.EventConnected, types.Connected{PlayerID: msg.ClientID})

			case Disconnect:
				h.disconnect(msg.ClientID)

			case FromClient:
				h.handle(msg)

			case ListLobbies:
				msg.Reply <- lobby.RedactAll(h.registry.List())

			case LookupPin:
				_, err := h.registry.ByPin(msg.Pin)
				msg.Reply <- err == nil

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
	h.cancel()
}

func (h *Hub) disconnect(clientID string) {
	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
	h.log.Debug("client disconnected", zap.String("client_id", clientID))

	results := h.registry.DisconnectCleanup(clientID)
	for _, res := range results {
		h.afterLeave(res, clientID)
	}
	if len(results) > 0 {
		h.broadcastList()
	}
}

// send queues one frame for a client. A client whose outbox is full is
// dropped; its transport notices the closed outbox and disconnects.
func (h *Hub) send(clientID, event string, data any) {
	ch, ok := h.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- types.ServerMessage{Event: event, Data: data}:
	default:
		h.log.Warn("dropping slow client", zap.String("client_id", clientID))
		close(ch)
		delete(h.clients, clientID)
	}
}

// broadcastLobby sends every member its own redacted view of l.
func (h *Hub) broadcastLobby(l *lobby.Lobby) {
	for _, p := range l.Players {
		h.send(p.ID, types.EventLobbyUpdated, lobby.Redact(l, p.ID))
	}
}

func (h *Hub) roomSend(l *lobby.Lobby, event string, data any) {
	for _, p := range l.Players {
		h.send(p.ID, event, data)
	}
}

func (h *Hub) broadcastList() {
	snaps := lobby.RedactAll(h.registry.List())
	for id := range h.clients {
		h.send(id, types.EventLobbyList, snaps)
	}
}
