package transport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fivestackbot/fivestack/internal/render"
	"github.com/gorilla/websocket"
)

// Feed fans re-rendered display payloads out to WebSocket subscribers, keyed
// by scope. It implements signup.Publisher, acting as the gateway's
// update-payload collaborator: whatever the engine mutates, subscribers see
// the fresh rendering.
type Feed struct {
	mu       sync.RWMutex
	subs     map[string]map[*feedClient]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type feedClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *feedClient) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// NewFeed creates an empty feed hub.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Feed{
		subs: make(map[string]map[*feedClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Subscribe upgrades the request and streams the scope's payloads until the
// client disconnects.
func (f *Feed) Subscribe(w http.ResponseWriter, r *http.Request, scopeID string) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("feed upgrade failed", "scope", scopeID, "error", err)
		return
	}

	client := &feedClient{conn: conn}
	f.mu.Lock()
	if f.subs[scopeID] == nil {
		f.subs[scopeID] = make(map[*feedClient]struct{})
	}
	f.subs[scopeID][client] = struct{}{}
	f.mu.Unlock()
	f.logger.Debug("feed subscriber added", "scope", scopeID)

	// Drain control frames; any read error means the client is gone.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.remove(scopeID, client)
}

// Publish sends the payload to every subscriber of the scope. Slow or dead
// clients are dropped, never waited on.
func (f *Feed) Publish(scopeID string, payload render.Payload) {
	data, err := json.Marshal(payload)
	if err != nil {
		f.logger.Warn("feed payload marshal failed", "scope", scopeID, "error", err)
		return
	}

	f.mu.RLock()
	clients := make([]*feedClient, 0, len(f.subs[scopeID]))
	for c := range f.subs[scopeID] {
		clients = append(clients, c)
	}
	f.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			f.remove(scopeID, c)
		}
	}
}

func (f *Feed) remove(scopeID string, client *feedClient) {
	f.mu.Lock()
	if set, ok := f.subs[scopeID]; ok {
		if _, present := set[client]; present {
			delete(set, client)
			if len(set) == 0 {
				delete(f.subs, scopeID)
			}
			_ = client.conn.Close()
		}
	}
	f.mu.Unlock()
}

// SubscriberCount reports the scope's live subscribers.
func (f *Feed) SubscriberCount(scopeID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[scopeID])
}
