package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

const mailboxDepth = 64

var errClosed = errors.New("bus closed")

// Hub connects in-process session buses. It models independent tabs that
// share a broadcast channel but no other state: each attached session gets
// its own mailbox goroutine, and a publish fans out to every session except
// the sender.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*SessionBus
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*SessionBus)}
}

// Session attaches a new session to the hub. An empty id gets a generated
// one.
func (h *Hub) Session(id string) *SessionBus {
	if id == "" {
		id = uuid.NewString()
	}

	s := &SessionBus{
		id:       id,
		hub:      h,
		handlers: newHandlerSet(),
		mailbox:  make(chan Message, mailboxDepth),
		done:     make(chan struct{}),
	}
	go s.run()

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()
	return s
}

// broadcast delivers m to every attached session except the sender. A full
// mailbox drops the message for that session only; delivery is best effort.
func (h *Hub) broadcast(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		if id == m.Sender {
			continue
		}
		select {
		case s.mailbox <- m:
		default:
		}
	}
}

func (h *Hub) detach(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// SessionBus is one session's handle on an in-process Hub. Messages from a
// single sender are delivered to this session in publish order; across
// senders there is no ordering guarantee.
type SessionBus struct {
	id       string
	hub      *Hub
	handlers *handlerSet
	mailbox  chan Message
	done     chan struct{}

	closeOnce sync.Once
}

// ID returns the session identifier used to filter out own publishes.
func (s *SessionBus) ID() string {
	return s.id
}

func (s *SessionBus) run() {
	for {
		select {
		case m := <-s.mailbox:
			s.handlers.dispatch(m)
		case <-s.done:
			return
		}
	}
}

func (s *SessionBus) Publish(ctx context.Context, t Type, payload any) error {
	select {
	case <-s.done:
		return errClosed
	default:
	}

	m, err := newMessage(s.id, t, payload)
	if err != nil {
		return err
	}
	s.hub.broadcast(m)
	return nil
}

func (s *SessionBus) Listen(t Type, h Handler) func() {
	return s.handlers.add(t, h)
}

func (s *SessionBus) Close() error {
	s.closeOnce.Do(func() {
		s.hub.detach(s.id)
		close(s.done)
	})
	return nil
}
