package main

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mcastellin/membership"
)

// eventHub fans this node's ClusterEvents out to any number of connected
// WebSocket clients.
type eventHub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newEventHub(logger *zap.Logger) *eventHub {
	return &eventHub{logger: logger, clients: map[*websocket.Conn]struct{}{}}
}

func (h *eventHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *eventHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *eventHub) broadcast(ev membership.ClusterEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(clusterEventView(ev)); err != nil {
			h.logger.Debug("websocket write failed, dropping client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// pump drains instance.Events() into the hub until the channel closes.
func (h *eventHub) pump(events <-chan membership.ClusterEvent) {
	for ev := range events {
		h.broadcast(ev)
	}
}
