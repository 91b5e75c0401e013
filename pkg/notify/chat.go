package notify

import (
	"context"
	"fmt"
)

// ChatMux routes chat messages to a backend by the message's Transport name.
// It is itself a Chatter, so it plugs straight into WithChatter.
type ChatMux struct {
	backends map[string]Chatter
}

// NewChatMux creates an empty mux. Register backends with Handle.
func NewChatMux() *ChatMux {
	return &ChatMux{backends: make(map[string]Chatter)}
}

// Handle registers a backend under a transport name, e.g. "slack" or
// "telegram". Registering twice replaces the previous backend.
func (m *ChatMux) Handle(transport string, backend Chatter) *ChatMux {
	if backend != nil {
		m.backends[transport] = backend
	}
	return m
}

// SendChat implements Chatter.
func (m *ChatMux) SendChat(ctx context.Context, msg ChatMessage) (string, error) {
	backend, ok := m.backends[msg.Transport]
	if !ok {
		return "", fmt.Errorf("chat transport %q not available", msg.Transport)
	}
	return backend.SendChat(ctx, msg)
}
