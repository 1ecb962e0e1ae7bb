package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"socket-deva/contract"
	"socket-deva/domain"
	"socket-deva/errors"
	"sync/atomic"
	"time"
)

// Router decides where an internal event goes on the transport and
// acknowledges routed packets on "<topic>:<id>" once the emit was issued.
// The decoded Packet only drives routing; clients receive the payload as
// it was talked, unknown fields included.
//
// Every entry point is a silent no-op while the router is inactive or when
// the payload is nil. Any other failure is returned, nothing is acknowledged.
type Router struct {
	log        *slog.Logger
	bus        contract.IBus
	transport  contract.ITransport
	active     atomic.Bool
	deliveries *deliveries
}

func NewRouter(log *slog.Logger, bus contract.IBus, transport contract.ITransport, dedupWindow time.Duration) *Router {
	return &Router{
		log:        log,
		bus:        bus,
		transport:  transport,
		deliveries: newDeliveries(dedupWindow),
	}
}

func (r *Router) Activate() { r.active.Store(true) }
func (r *Router) Deactivate() { r.active.Store(false) }
func (r *Router) Active() bool { return r.active.Load() }

// RouteGlobal broadcasts the packet to every connection.
func (r *Router) RouteGlobal(ctx context.Context, payload any) error {
	p, ok, err := r.accept(domain.TopicGlobal, payload)
	if !ok {
		return err
	}
	if err := r.transport.Broadcast(ctx, domain.TopicGlobal, domain.Passthrough(payload)); err != nil {
		return fmt.Errorf("broadcasting packet %s: %w", p.ID, err)
	}
	r.acknowledge(domain.TopicGlobal, p)
	return nil
}

// RouteToClient emits the packet into the room of its client only.
func (r *Router) RouteToClient(ctx context.Context, payload any) error {
	p, ok, err := r.accept(domain.TopicClient, payload)
	if !ok {
		return err
	}
	room, err := p.Room()
	if err != nil {
		return fmt.Errorf("routing packet %s: %w", p.ID, err)
	}
	if err := r.transport.EmitToRoom(ctx, room, domain.TopicClient, domain.Passthrough(payload)); err != nil {
		return fmt.Errorf("emitting packet %s to %s: %w", p.ID, room, err)
	}
	r.acknowledge(domain.TopicClient, p)
	return nil
}

// RouteEvent emits the packet under its own event name into the room of
// its client.
func (r *Router) RouteEvent(ctx context.Context, payload any) error {
	p, ok, err := r.accept(domain.TopicEvent, payload)
	if !ok {
		return err
	}
	if p.Event == "" {
		return fmt.Errorf("routing packet %s: %w", p.ID, errors.ErrMissingEvent)
	}
	room, err := p.Room()
	if err != nil {
		return fmt.Errorf("routing packet %s: %w", p.ID, err)
	}
	if err := r.transport.EmitToRoom(ctx, room, domain.Topic(p.Event), domain.Passthrough(payload)); err != nil {
		return fmt.Errorf("emitting %s to %s: %w", p.Event, room, err)
	}
	r.acknowledge(domain.TopicEvent, p)
	return nil
}

// BridgeWhitelisted mirrors a lifecycle event onto the transport unchanged.
// These events are not acknowledged.
func (r *Router) BridgeWhitelisted(ctx context.Context, topic domain.Topic, payload any) error {
	if payload == nil || !r.Active() {
		return nil
	}
	if !domain.IsWhitelisted(topic) {
		return fmt.Errorf("bridging %s: %w", topic, errors.ErrNotWhitelisted)
	}
	if err := r.transport.Broadcast(ctx, topic, domain.Passthrough(payload)); err != nil {
		return fmt.Errorf("bridging %s: %w", topic, err)
	}
	return nil
}

// accept applies the preconditions shared by the routing topics.
// ok is false when the call must stop; err is nil for silent no-ops.
func (r *Router) accept(topic domain.Topic, payload any) (domain.Packet, bool, error) {
	if payload == nil || !r.Active() {
		return domain.Packet{}, false, nil
	}
	p, ok := domain.PacketFrom(payload)
	if !ok {
		// A typed nil pointer is as empty as a nil payload
		if _, isPtr := payload.(*domain.Packet); isPtr {
			return domain.Packet{}, false, nil
		}
		return domain.Packet{}, false, fmt.Errorf("%s payload %T: %w", topic, payload, errors.ErrInvalidPacket)
	}
	if err := p.Validate(); err != nil {
		return domain.Packet{}, false, err
	}
	if !r.deliveries.first(string(domain.AckTopic(topic, p.ID))) {
		r.log.Debug("Packet already routed, skipping redelivery", "topic", topic, "id", p.ID)
		return domain.Packet{}, false, nil
	}
	return p, true, nil
}

func (r *Router) acknowledge(topic domain.Topic, p domain.Packet) {
	r.bus.Talk(domain.AckTopic(topic, p.ID), true)
}
