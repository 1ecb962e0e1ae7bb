//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"net/http"
	"reflect"
	"socket-deva/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Launch(ctx context.Context) <-chan struct{}
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Handler receives one bus message. Payloads are whatever the publisher talked.
type Handler func(ctx context.Context, payload any)

// IBus is the host's internal publish/subscribe bus.
// Listen returns the function removing the subscription.
type IBus interface {
	Listen(topic domain.Topic, handler Handler) (unsubscribe func())
	Talk(topic domain.Topic, payload any)
}

// ConnectionSink is the writing side of one transport connection.
type ConnectionSink interface {
	ID() string
	Consume(ctx context.Context, frame domain.Frame) error
}

type IRegistry interface {
	Join(session domain.Session, sink ConnectionSink)
	Leave(connectionID string)
	SinksForRoom(room domain.RoomKey) []ConnectionSink
	Sinks() []ConnectionSink
	Sink(connectionID string) (ConnectionSink, bool)
	Count() int
}

// ITransport is the emit side of the connection lifecycle manager.
// Every call is fire-and-forget: a nil error means the send was issued.
type ITransport interface {
	EmitTo(ctx context.Context, connectionID string, topic domain.Topic, payload any) error
	EmitToRoom(ctx context.Context, room domain.RoomKey, topic domain.Topic, payload any) error
	Broadcast(ctx context.Context, topic domain.Topic, payload any) error
}

// ISessionProvider supplies the server-side identity of a new connection
// at handshake time.
type ISessionProvider interface {
	Identify(r *http.Request) (domain.Client, error)
}
