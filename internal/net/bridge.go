package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Message is the envelope exchanged with the host application. Replies
// carry the request's ID and Type.
type Message struct {
	ID    string          `json:"id,omitempty"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// HandlerFunc serves one message type. The result is encoded as the reply
// value.
type HandlerFunc func(ctx context.Context, value json.RawMessage) (any, error)

var ErrUnknownType = errors.New("unknown message type")

// Bridge is the table of calls the host may make into the viewer.
type Bridge struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewBridge() *Bridge {
	return &Bridge{handlers: make(map[string]HandlerFunc)}
}

// Handle registers fn for messages of type typ, replacing any previous one.
func (b *Bridge) Handle(typ string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[typ] = fn
}

// Types lists the registered message types.
func (b *Bridge) Types() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	types := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Dispatch runs the handler for msg and builds the reply. Handler errors
// and panics are reported in the reply's Error field.
func (b *Bridge) Dispatch(ctx context.Context, msg Message) (reply Message) {
	reply = Message{ID: msg.ID, Type: msg.Type}

	b.mu.RLock()
	fn, ok := b.handlers[msg.Type]
	b.mu.RUnlock()
	if !ok {
		reply.Error = fmt.Errorf("%w: %q", ErrUnknownType, msg.Type).Error()
		return reply
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[BRIDGE] Handler %q panicked: %v", msg.Type, r)
			reply.Value = nil
			reply.Error = fmt.Sprintf("internal error in %s", msg.Type)
		}
	}()

	result, err := fn(ctx, msg.Value)
	if err != nil {
		log.Printf("[BRIDGE] %s failed: %v", msg.Type, err)
		reply.Error = err.Error()
		return reply
	}
	if result == nil {
		return reply
	}
	if raw, ok := result.(json.RawMessage); ok {
		reply.Value = raw
		return reply
	}
	data, err := json.Marshal(result)
	if err != nil {
		reply.Error = fmt.Sprintf("encode %s result: %v", msg.Type, err)
		return reply
	}
	reply.Value = data
	return reply
}
