// Package ws pushes application events to connected underwriters.
package ws

import (
	"strings"
	"sync"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/underwriting"
)

const QueueChannel = underwriting.QueueChannel

// ApplicationChannel carries events for a single application.
func ApplicationChannel(applicationID string) string {
	return underwriting.ApplicationChannel(applicationID)
}

// ValidChannel reports whether clients may subscribe to channel.
func ValidChannel(channel string) bool {
	if channel == QueueChannel {
		return true
	}
	id, ok := strings.CutPrefix(channel, underwriting.ApplicationChannelPrefix)
	return ok && strings.TrimSpace(id) != ""
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: map[string]map[*Client]struct{}{}}
}

func (h *Hub) Subscribe(channel string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[channel]; !ok {
		h.subscribers[channel] = map[*Client]struct{}{}
	}
	h.subscribers[channel][client] = struct{}{}
	client.addChannel(channel)
}

func (h *Hub) UnsubscribeAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, channel := range client.listChannels() {
		if subs, ok := h.subscribers[channel]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscribers, channel)
			}
		}
	}
}

// Publish never blocks; a client whose buffer is full is disconnected.
func (h *Hub) Publish(channel string, payload []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.subscribers[channel]))
	for c := range h.subscribers[channel] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.send(payload)
	}
}

func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}
