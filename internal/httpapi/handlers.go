package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cardlobby-backend/internal/hub"
	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

const qrSize = 256

// ask sends msg to the hub and waits for its reply.
func ask[T any](ctx context.Context, h *hub.Hub, msg hub.HubMsg, reply <-chan T) (T, bool) {
	var zero T
	if !h.Send(ctx, msg) {
		return zero, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-h.Done():
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

func ListLobbies(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []types.LobbySnapshot, 1)
		snaps, ok := ask(r.Context(), h, hub.ListLobbies{Reply: reply}, reply)
		if !ok {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, snaps)
	}
}

// LobbyQR renders a PNG QR code pointing players at the join page for a pin.
func LobbyQR(h *hub.Hub, publicURL string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pin := chi.URLParam(r, "pin")

		reply := make(chan bool, 1)
		found, ok := ask(r.Context(), h, hub.LookupPin{Pin: pin, Reply: reply}, reply)
		if !ok {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		if !found {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		png, err := qrcode.Encode(JoinURL(publicURL, pin), qrcode.Medium, qrSize)
		if err != nil {
			log.Error("qr encode failed", zap.String("pin", pin), zap.Error(err))
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(png)
	}
}

// JoinURL is the link a QR code encodes for pin.
func JoinURL(publicURL, pin string) string {
	return strings.TrimRight(publicURL, "/") + "/?pin=" + url.QueryEscape(pin)
}

func Version(v string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(v + "\n"))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
