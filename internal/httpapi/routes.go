package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cardlobby-backend/internal/hub"
	"github.com/DoyleJ11/cardlobby-backend/internal/ws"
)

type Deps struct {
	Hub       *hub.Hub
	Log       *zap.Logger
	WS        ws.Options
	PublicURL string
	Version   string
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Log), middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/version", Version(d.Version))
	r.Get("/lobbies", ListLobbies(d.Hub))
	r.Get("/lobbies/{pin}/qr", LobbyQR(d.Hub, d.PublicURL, d.Log))
	r.Get("/ws", ws.Handler(d.Hub, d.Log, d.WS))
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
