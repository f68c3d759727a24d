package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openagora/agora/pkg/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is handled by the CORS middleware; the
	// upgrade itself accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleSubscribe bridges a pubsub subscription onto a websocket.
// Every event for the deliberation is forwarded as one JSON message.
// Slow clients fall behind in the bus's buffered channel and miss
// events rather than blocking other subscribers; dead clients are
// reaped by the ping/pong deadline.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request, deliberationID string) {
	if _, err := s.store.GetDeliberation(r.Context(), deliberationID); err != nil {
		s.respondStoreError(w, err, "get deliberation")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		s.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}

	// The handler returns while the pumps keep running, and net/http
	// cancels the request context on return. The subscription must
	// outlive it; the write pump tears it down instead.
	sub := s.bus.Subscribe(context.WithoutCancel(r.Context()), deliberationID)
	if sub == nil {
		conn.Close()
		return
	}

	s.registry.WebsocketClientsActive.Inc()
	s.registry.SubscriptionsActive.Inc()
	s.logger.Info("websocket client connected", logging.DeliberationID(deliberationID))

	done := make(chan struct{})

	// Read pump: discard inbound frames, refresh the deadline on pong,
	// and signal when the peer goes away.
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Write pump.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			sub.Unsubscribe()
			conn.Close()
			s.registry.WebsocketClientsActive.Dec()
			s.registry.SubscriptionsActive.Dec()
			s.logger.Info("websocket client disconnected", logging.DeliberationID(deliberationID))
		}()

		for {
			select {
			case event, ok := <-sub.Channel():
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
}
