package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/untillpro/goutils/logger"

	"github.com/matthewbaird/admingen/internal/eventbus"
)

// Hub pushes regeneration events to connected admin apps so they can reload
// admin.yaml. Subscribe it to an eventbus.Bus.
type Hub struct {
	mu   sync.Mutex
	subs map[chan eventbus.Regenerated]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan eventbus.Regenerated]struct{})}
}

// HandleEvent fans evt out to every client. A client that is not keeping up
// misses the event.
func (h *Hub) HandleEvent(_ context.Context, evt eventbus.Regenerated) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			logger.Warning("reload: client queue full, dropping event", evt.ID)
		}
	}
	return nil
}

func (h *Hub) subscribe() chan eventbus.Regenerated {
	ch := make(chan eventbus.Regenerated, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan eventbus.Regenerated) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *Hub) clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades to a websocket and writes each event as JSON until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Error("reload: accept error:", err)
		return
	}
	defer conn.CloseNow()

	// the client never sends; CloseRead notices when it leaves
	ctx := conn.CloseRead(r.Context())
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			if err := wsjson.Write(ctx, conn, evt); err != nil {
				if websocket.CloseStatus(err) == -1 {
					logger.Verbose("reload: write error:", err)
				}
				return
			}
		}
	}
}
