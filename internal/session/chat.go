package session

import (
	"slices"
	"sync"

	"github.com/dkeye/voiceroom/internal/domain"
)

// chatLog is the per-client, append-only chat list plus the pending
// requests to speak. Nothing here is reconciled across clients.
type chatLog struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
	requests []domain.MicRequest
}

func (c *chatLog) append(m domain.ChatMessage) []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
	return slices.Clone(c.messages)
}

func (c *chatLog) clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

func (c *chatLog) snapshot() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

func (c *chatLog) addRequest(r domain.MicRequest) []domain.MicRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, r)
	return slices.Clone(c.requests)
}

// dismiss drops every pending request of userID.
func (c *chatLog) dismiss(userID domain.UserID) ([]domain.MicRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.requests)
	c.requests = slices.DeleteFunc(c.requests, func(r domain.MicRequest) bool { return r.User.UserID == userID })
	return slices.Clone(c.requests), len(c.requests) != n
}

func (c *chatLog) pending() []domain.MicRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.requests)
}

func (c *chatLog) reset() {
	c.mu.Lock()
	c.messages = nil
	c.requests = nil
	c.mu.Unlock()
}
