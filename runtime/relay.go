// Package runtime wires the relay: room registry, event router and bus
// bridge, under the supervision of runtime/workers.
// It holds no transport code; connections belong to package ws.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"socket-deva/contract"
	"socket-deva/errors"
	"socket-deva/runtime/workers"
	"socket-deva/ws"
	"sync"
	"time"
)

// BusWorker is a bus whose dispatch loop runs under supervision.
type BusWorker interface {
	contract.IBus
	contract.Worker
}

type Config struct {
	Host                 string
	Port                 int
	ConnectionBufferSize int
	DedupWindow          time.Duration
	RestartInterval      time.Duration
	MetricInterval       time.Duration
}

type state int

const (
	inactive state = iota
	active
	stopped
)

// Relay is the context struct built once at startup. It owns every
// component and the Inactive -> Active -> Inactive lifecycle.
type Relay struct {
	mu         sync.Mutex
	log        *slog.Logger
	config     Config
	bus        BusWorker
	registry   *Registry
	router     *Router
	bridge     *Bridge
	server     *ws.Server
	supervisor *workers.Supervisor
	health     *workers.HealthMonitoringWorker
	state      state
	done       chan struct{}
}

func NewRelay(log *slog.Logger, config Config, bus BusWorker, sessions contract.ISessionProvider) *Relay {
	registry := NewRegistry()
	server := ws.NewServer(log, registry, bus, sessions, config.ConnectionBufferSize)
	router := NewRouter(log, bus, server, config.DedupWindow)

	relay := &Relay{
		log:        log,
		config:     config,
		bus:        bus,
		registry:   registry,
		router:     router,
		bridge:     NewBridge(log, bus, router),
		server:     server,
		supervisor: workers.NewSupervisor(log, config.RestartInterval),
	}
	if config.MetricInterval > 0 {
		relay.health = workers.NewHealthMonitoringWorker(log, registry, config.MetricInterval)
	}
	return relay
}

// Start binds the transport, registers the bus subscriptions and only then
// activates routing. A bind failure is returned and leaves the relay
// inactive. Starting twice is a caller error.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != inactive {
		return errors.ErrAlreadyStarted
	}

	address := fmt.Sprintf("%s:%d", r.config.Host, r.config.Port)
	if err := r.server.Listen(address); err != nil {
		return err
	}
	r.bridge.Register()

	r.router.Activate()
	r.supervisor.Add(r.bus, r.server)
	if r.health != nil {
		r.supervisor.Add(r.health)
	}
	// Launch returns once the supervised context exists, so Stop can
	// always cancel it.
	workersDone := r.supervisor.Launch(ctx)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		<-workersDone
		r.router.Deactivate()
	}()

	r.state = active
	r.log.Info("Socket relay ready", "address", r.server.Addr().String())
	return nil
}

// Stop deactivates routing, removes the bus subscriptions, closes the
// transport and waits for the supervised workers.
func (r *Relay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != active {
		return errors.ErrNotStarted
	}

	r.log.Info("Requesting relay shutdown")
	r.router.Deactivate()
	r.bridge.Unregister()
	r.supervisor.Stop()
	<-r.done
	r.state = stopped
	r.log.Info("Relay stopped cleanly")
	return nil
}

// Done is closed once the supervised workers returned, nil before Start.
// This happens after Stop, when the parent context ends, or when a worker
// fails for good (the transport lost its listener).
func (r *Relay) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Relay) Active() bool { return r.router.Active() }

func (r *Relay) Addr() net.Addr { return r.server.Addr() }

func (r *Relay) Registry() *Registry { return r.registry }
