package runtime

import (
	"context"
	"log/slog"
	"socket-deva/contract"
	"socket-deva/domain"
	"sync"
)

// Bridge subscribes the router to the internal bus.
// Router errors are reported on the error topic with the original payload;
// nothing is retried.
type Bridge struct {
	mu           sync.Mutex
	log          *slog.Logger
	bus          contract.IBus
	router       *Router
	unsubscribes []func()
}

func NewBridge(log *slog.Logger, bus contract.IBus, router *Router) *Bridge {
	return &Bridge{log: log, bus: bus, router: router}
}

// Register subscribes once to the routing topics and to every whitelisted
// topic. Registering again is a no-op.
func (b *Bridge) Register() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.unsubscribes) > 0 {
		return
	}

	b.listen(domain.TopicGlobal, b.router.RouteGlobal)
	b.listen(domain.TopicClient, b.router.RouteToClient)
	b.listen(domain.TopicEvent, b.router.RouteEvent)
	for _, topic := range domain.Whitelist() {
		b.listen(topic, func(ctx context.Context, payload any) error {
			return b.router.BridgeWhitelisted(ctx, topic, payload)
		})
	}
	b.log.Debug("Bus bridge registered", "subscriptions", len(b.unsubscribes))
}

func (b *Bridge) listen(topic domain.Topic, route func(ctx context.Context, payload any) error) {
	unsubscribe := b.bus.Listen(topic, func(ctx context.Context, payload any) {
		if err := route(ctx, payload); err != nil {
			b.report(topic, payload, err)
		}
	})
	b.unsubscribes = append(b.unsubscribes, unsubscribe)
}

func (b *Bridge) report(topic domain.Topic, payload any, err error) {
	b.log.Warn("Routing failed", "topic", topic, "error", err)
	b.bus.Talk(domain.TopicError, domain.NewErrorReport(topic, payload, err))
}

// Unregister removes every subscription made by Register.
func (b *Bridge) Unregister() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, unsubscribe := range b.unsubscribes {
		unsubscribe()
	}
	b.unsubscribes = nil
}
