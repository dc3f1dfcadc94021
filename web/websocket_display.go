package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

// Boot implements chip8.Display.
func (server *Server) Boot() error {
	return nil
}

// Render implements chip8.Display.
// Frames are sent packed, 256 bytes with one bit per pixel.
func (server *Server) Render(screen chip8.Grid) error {
	server.display.publish(screen.Pack())

	return nil
}

// serveStream upgrades the request and writes every message of h to the socket
// until the client goes away.
func serveStream(h *hub, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("Upgrade failed", slog.String("stream", name), slog.Any("error", err))
			return
		}
		defer conn.Close()

		slog.Info("Client connected", slog.String("stream", name))
		msgs, unsubscribe := h.subscribe()
		defer unsubscribe()

		// the reader notices the client closing the socket
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg := <-msgs:
				if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
					slog.Warn("Error writing message", slog.String("stream", name), slog.Any("error", err))
					return
				}

			case <-closed:
				slog.Info("Client disconnected", slog.String("stream", name))
				return

			case <-r.Context().Done():
				return
			}
		}
	}
}
