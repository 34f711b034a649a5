// Package bus implements the cross-session broadcast channel: a typed
// publish/subscribe surface over which independent client sessions of the
// same user exchange login, logout, token-expired and session-update
// notifications.
//
// Delivery is at-most-once per listener per publish, best effort: a session
// that is gone mid-delivery simply misses the message. That is enough
// because sessions re-derive their truth from the durable credential store
// at load time; bus messages are nudges, not the source of truth. A session
// never receives its own publish.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

// Type is one of the four message kinds carried by the channel.
type Type string

const (
	// TypeLogin instructs receiving sessions to adopt the identity in the
	// payload.
	TypeLogin Type = "LOGIN"

	// TypeLogout instructs receiving sessions to clear their auth state
	// after an explicit sign-out elsewhere. No payload.
	TypeLogout Type = "LOGOUT"

	// TypeTokenExpired is TypeLogout's forced sibling: the server rejected
	// the shared credential. No payload.
	TypeTokenExpired Type = "TOKEN_EXPIRED"

	// TypeSessionUpdate carries an opaque advisory record; it never changes
	// auth state by itself.
	TypeSessionUpdate Type = "SESSION_UPDATE"
)

// Message is the wire record exchanged between sessions.
type Message struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Sender  string          `json:"sender"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler processes one delivered message. Handlers run on the receiving
// session's mailbox goroutine; they must not block for long.
type Handler func(Message)

// Bus is one session's handle on the broadcast channel.
type Bus interface {
	// Publish sends a message of the given type to every other session.
	Publish(ctx context.Context, t Type, payload any) error

	// Listen registers a handler for one message type and returns its
	// unsubscribe function.
	Listen(t Type, h Handler) (unsubscribe func())

	// Close detaches the session from the channel.
	Close() error
}

func newMessage(sender string, t Type, payload any) (Message, error) {
	m := Message{ID: uuid.NewString(), Type: t, Sender: sender}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
		}
		m.Payload = raw
	}
	return m, nil
}

// handlerSet is the subscription registry shared by the bus implementations.
type handlerSet struct {
	mu   sync.Mutex
	next int
	subs map[Type]map[int]Handler
}

func newHandlerSet() *handlerSet {
	return &handlerSet{subs: make(map[Type]map[int]Handler)}
}

func (s *handlerSet) add(t Type, h Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[t] == nil {
		s.subs[t] = make(map[int]Handler)
	}
	id := s.next
	s.next++
	s.subs[t][id] = h

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[t], id)
	}
}

// dispatch calls every handler registered for the message type, in
// registration-independent order, on the caller's goroutine.
func (s *handlerSet) dispatch(m Message) {
	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.subs[m.Type]))
	for _, h := range s.subs[m.Type] {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(m)
	}
}

// TokenExpiryNotifier adapts a Bus to the request layer's expiry callback,
// so the request client can announce a 401 without knowing about message
// types.
type TokenExpiryNotifier struct {
	Bus Bus
	Log logging.Logger
}

func (n *TokenExpiryNotifier) NotifyTokenExpired(ctx context.Context) {
	if err := n.Bus.Publish(ctx, TypeTokenExpired, nil); err != nil && n.Log != nil {
		n.Log.Warn(ctx, "failed to broadcast token expiry", "error", err)
	}
}
