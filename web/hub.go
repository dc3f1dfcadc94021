package web

import "sync"

// hub fans binary messages out to websocket clients.
// Slow clients only ever get the latest message.
type hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
	last []byte
}

func newHub() *hub {
	return &hub{subs: map[chan []byte]struct{}{}}
}

func (h *hub) publish(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			// replace the pending message
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- msg:
			default:
			}
		}
	}
}

// subscribe returns a channel that first receives the last published message, if any
func (h *hub) subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	if h.last != nil {
		ch <- h.last
	}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

func (h *hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}
