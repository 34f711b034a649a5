package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

// RedisBus carries session messages over a redis pub/sub channel, for
// sessions living in separate processes. Redis delivers to every subscriber
// including the publisher, so the receive loop drops messages whose Sender
// matches this session.
type RedisBus struct {
	rdb      *redis.Client
	channel  string
	session  string
	log      logging.Logger
	handlers *handlerSet

	ps     *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
}

// NewRedisBus subscribes to the named channel and starts the receive loop.
// An empty sessionID gets a generated one.
func NewRedisBus(ctx context.Context, rdb *redis.Client, channel, sessionID string, log logging.Logger) (*RedisBus, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if log == nil {
		log = logging.Nop()
	}

	ps := rdb.Subscribe(ctx, channel)
	// Force the subscription round trip so a following Publish cannot race
	// an unconfirmed subscriber.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		rdb:      rdb,
		channel:  channel,
		session:  sessionID,
		log:      log,
		handlers: newHandlerSet(),
		ps:       ps,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go b.receive(loopCtx, ps.Channel())
	return b, nil
}

// ID returns the session identifier used to filter out own publishes.
func (b *RedisBus) ID() string {
	return b.session
}

func (b *RedisBus) receive(ctx context.Context, ch <-chan *redis.Message) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			var m Message
			if err := json.Unmarshal([]byte(raw.Payload), &m); err != nil {
				b.log.Warn(ctx, "dropping malformed bus message", "error", err)
				continue
			}
			if m.Sender == b.session {
				continue
			}
			b.handlers.dispatch(m)
		}
	}
}

func (b *RedisBus) Publish(ctx context.Context, t Type, payload any) error {
	m, err := newMessage(b.session, t, payload)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode bus message: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, buf).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

func (b *RedisBus) Listen(t Type, h Handler) func() {
	return b.handlers.add(t, h)
}

func (b *RedisBus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.cancel()
		err = b.ps.Close()
		<-b.done
	})
	return err
}
