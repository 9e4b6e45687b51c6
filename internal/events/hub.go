package events

import "sync"

// Hub fans events out to SSE subscribers. Slow subscribers miss events
// rather than block publishers.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	buf     int
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{}), buf: 16}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, h.buf)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	_, ok := h.clients[ch]
	delete(h.clients, ch)
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
