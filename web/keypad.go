package web

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"net/http"

	"github.com/guslan/chip8"
)

var ErrBadKeypadMessage = errors.New("keypad messages are 2 bytes long")

// decodeKeypad reads a 16-bit big endian mask, the most significant bit is key 0
func decodeKeypad(msg []byte) (chip8.KeyboardState, error) {
	var state chip8.KeyboardState
	if len(msg) != 2 {
		return state, ErrBadKeypadMessage
	}

	mask := binary.BigEndian.Uint16(msg)
	for k := range state {
		state[k] = mask&(0b1000000000000000>>k) != 0
	}

	return state, nil
}

// serveKeypad receives the keypad state from the browser
func (server *Server) serveKeypad(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Upgrade failed", slog.String("stream", "keypad"), slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Client connected", slog.String("stream", "keypad"))
	defer server.Set(chip8.KeyboardState{})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Info("Client disconnected", slog.String("stream", "keypad"))
			return
		}

		state, err := decodeKeypad(msg)
		if err != nil {
			slog.Warn("Ignoring keypad message", slog.Any("error", err))
			continue
		}
		server.Set(state)
	}
}
