package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cardlobby-backend/internal/hub"
	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

type Options struct {
	OutboxSize     int
	ReadTimeout    time.Duration // 0 waits forever
	WriteTimeout   time.Duration
	PingInterval   time.Duration // 0 disables pings
	OriginPatterns []string
}

func Handler(h *hub.Hub, log *zap.Logger, opts Options) http.HandlerFunc {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 64
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		clientID := uuid.NewString()
		log := log.With(zap.String("client_id", clientID))

		out := make(chan types.ServerMessage, opts.OutboxSize)
		if !h.Send(r.Context(), hub.Connect{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
		defer h.Send(context.Background(), hub.Disconnect{ClientID: clientID})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine
		go func() {
			defer cancel()
			if err := writeLoop(ctx, conn, out, opts); err != nil && !errors.Is(err, context.Canceled) {
				log.Debug("write loop stopped", zap.Error(err))
			}
		}()

		// Reader loop
		for {
			data, err := read(ctx, conn, opts.ReadTimeout)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Debug("client closed connection")
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			// An undecodable frame is forwarded without an event name and
			// rejected by the hub as a bad request.
			var env types.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				env = types.Envelope{}
			}
			if !h.Send(ctx, hub.FromClient{ClientID: clientID, Msg: env}) {
				return
			}
		}
	}
}

func read(ctx context.Context, conn *websocket.Conn, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	_, data, err := conn.Read(ctx)
	return data, err
}

// writeLoop drains out onto the socket. A closed outbox means the hub dropped
// this connection, so the socket is closed too.
func writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan types.ServerMessage, opts Options) error {
	var ping <-chan time.Time
	if opts.PingInterval > 0 {
		t := time.NewTicker(opts.PingInterval)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case m, ok := <-out:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "connection dropped")
				return nil
			}
			wctx, cancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := wsjson.Write(wctx, conn, m)
			cancel()
			if err != nil {
				return err
			}

		case <-ping:
			pctx, cancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
