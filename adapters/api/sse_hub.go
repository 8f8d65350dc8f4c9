package api

import (
	"context"
	"io"
	"sync"
	"time"

	"goinsight/internal"
	"goinsight/internal/session"

	"github.com/gin-gonic/gin"
)

const clientBuffer = 10

// SSEHub fans session events out to connected Server-Sent Events clients
type SSEHub struct {
	clients   map[chan session.Event]bool
	clientsMu sync.RWMutex
	ping      time.Duration
	logger    *internal.Logger
}

// NewSSEHub creates a hub; ping is the keep-alive interval
func NewSSEHub(ping time.Duration, logger *internal.Logger) *SSEHub {
	if ping <= 0 {
		ping = 30 * time.Second
	}
	return &SSEHub{
		clients: make(map[chan session.Event]bool),
		ping:    ping,
		logger:  logger.Named("sse"),
	}
}

// Run forwards events to every client until events closes or ctx is done
func (h *SSEHub) Run(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast(ev)
		case <-ctx.Done():
			return
		}
	}
}

// Broadcast sends an event to all clients. Full clients skip the event.
func (h *SSEHub) Broadcast(ev session.Event) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("client channel full, skipping %s event", ev.Type)
		}
	}
}

func (h *SSEHub) register() chan session.Event {
	ch := make(chan session.Event, clientBuffer)
	h.clientsMu.Lock()
	h.clients[ch] = true
	n := len(h.clients)
	h.clientsMu.Unlock()
	h.logger.Debug("client registered (total clients: %d)", n)
	return ch
}

func (h *SSEHub) unregister(ch chan session.Event) {
	h.clientsMu.Lock()
	delete(h.clients, ch)
	n := len(h.clients)
	h.clientsMu.Unlock()
	h.logger.Debug("client unregistered (remaining clients: %d)", n)
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// HandleSSE streams session events. The first event is the current snapshot.
func (h *SSEHub) HandleSSE(current func() session.Snapshot) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("Access-Control-Allow-Origin", "*")

		clientChan := h.register()
		defer h.unregister(clientChan)

		c.SSEvent("snapshot", current())
		c.Writer.Flush()

		ctx := c.Request.Context()
		ticker := time.NewTicker(h.ping)
		defer ticker.Stop()
		c.Stream(func(w io.Writer) bool {
			select {
			case ev := <-clientChan:
				c.SSEvent(string(ev.Type), ev)
				return true
			case t := <-ticker.C:
				c.SSEvent("ping", gin.H{"status": "alive", "timestamp": t.Format(time.RFC3339)})
				return true
			case <-ctx.Done():
				return false
			}
		})
	}
}
