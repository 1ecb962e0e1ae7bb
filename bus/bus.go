// Package bus is an in-process stand-in for the host's listen/talk event bus.
//
// Talk never blocks: messages are queued and dispatched by Run, which is
// meant to be supervised like any other worker. A handler that panics is
// recovered and logged; the other handlers of the same message still run.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"socket-deva/contract"
	"socket-deva/domain"
	"sync"
)

var _ contract.IBus = (*Bus)(nil)
var _ contract.Worker = (*Bus)(nil)

type message struct {
	topic   domain.Topic
	payload any
}

type subscription struct {
	id      uint64
	handler contract.Handler
}

type Bus struct {
	mu     sync.RWMutex
	log    *slog.Logger
	subs   map[domain.Topic][]subscription
	nextID uint64
	queue  chan message
}

func NewBus(log *slog.Logger, bufferSize int) *Bus {
	return &Bus{
		log:   log,
		subs:  make(map[domain.Topic][]subscription),
		queue: make(chan message, bufferSize),
	}
}

// Listen registers a handler for one topic.
func (b *Bus) Listen(topic domain.Topic, handler contract.Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic domain.Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Talk queues a message for asynchronous dispatch.
// A full queue drops the message.
func (b *Bus) Talk(topic domain.Topic, payload any) {
	select {
	case b.queue <- message{topic: topic, payload: payload}:
	default:
		b.log.Warn("Bus queue full, dropping message", "topic", topic)
	}
}

// Listeners returns how many handlers are registered on a topic.
func (b *Bus) Listeners(topic domain.Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.log.Debug("Context done, stopping bus dispatch")
			return nil
		case msg := <-b.queue:
			b.Dispatch(ctx, msg.topic, msg.payload)
		}
	}
}

// Dispatch delivers a message synchronously to every handler of its topic.
func (b *Bus) Dispatch(ctx context.Context, topic domain.Topic, payload any) {
	b.mu.RLock()
	handlers := make([]contract.Handler, 0, len(b.subs[topic]))
	for _, s := range b.subs[topic] {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.call(ctx, h, payload); err != nil {
			b.log.Error("Bus handler failed", "topic", topic, "error", err)
		}
	}
}

func (b *Bus) call(ctx context.Context, h contract.Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	h(ctx, payload)
	return nil
}
