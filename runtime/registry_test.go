package runtime

import (
	"context"
	"socket-deva/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	id string
}

func (s Sink) ID() string { return s.id }

func (s Sink) Consume(ctx context.Context, f domain.Frame) error {
	return nil
}

func newSession(t *testing.T, clientUID string) (domain.Session, Sink) {
	t.Helper()
	connectionID := uuid.NewString()
	session, ok := domain.NewSession(connectionID, domain.NewClient(clientUID, ""))
	require.True(t, ok)
	return session, Sink{id: connectionID}
}

func TestRegistry_Join_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session, sink := newSession(t, "abc")

	// Given no connection exists
	req.Zero(registry.Count())
	req.Empty(registry.Rooms())

	// When a connection joins its room
	registry.Join(session, sink)

	// Then
	req.Equal(1, registry.Count())
	req.ElementsMatch([]domain.RoomKey{"client:abc"}, registry.Rooms())
	req.Len(registry.SinksForRoom("client:abc"), 1)
	req.Contains(registry.SinksForRoom("client:abc"), sink)

	got, ok := registry.Sink(session.ConnectionID)
	req.True(ok)
	req.Equal(sink, got)
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session, sink := newSession(t, "abc")

	registry.Join(session, sink)
	once := registry.SinksForRoom(session.Room)

	// When the same connection joins twice
	registry.Join(session, sink)

	// Then membership is unchanged
	req.Equal(once, registry.SinksForRoom(session.Room))
	req.Equal(1, registry.Count())
	req.Len(registry.Rooms(), 1)
}

func TestRegistry_Join_Moves_To_New_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session, sink := newSession(t, "abc")
	registry.Join(session, sink)

	moved, ok := domain.NewSession(session.ConnectionID, domain.NewClient("xyz", ""))
	req.True(ok)
	registry.Join(moved, sink)

	req.Nil(registry.SinksForRoom("client:abc"))
	req.Len(registry.SinksForRoom("client:xyz"), 1)
	req.Equal(1, registry.Count())
}

func TestRegistry_Join_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session1, sink1 := newSession(t, "abc")
	session2, sink2 := newSession(t, "abc")

	registry.Join(session1, sink1)
	registry.Join(session2, sink2)

	req.Equal(2, registry.Count())
	req.Len(registry.SinksForRoom("client:abc"), 2)
	req.ElementsMatch([]any{sink1, sink2}, toAny(registry.Sinks()))
}

func TestRegistry_Leave_Removes_Connection_Everywhere(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session1, sink1 := newSession(t, "abc")
	session2, sink2 := newSession(t, "abc")
	registry.Join(session1, sink1)
	registry.Join(session2, sink2)

	// When a connection leaves
	registry.Leave(session1.ConnectionID)

	// Then it is not present in any room nor in the broadcast set
	req.Equal(1, registry.Count())
	req.Len(registry.SinksForRoom("client:abc"), 1)
	req.Contains(registry.SinksForRoom("client:abc"), sink2)
	req.NotContains(toAny(registry.Sinks()), sink1)
	_, ok := registry.Sink(session1.ConnectionID)
	req.False(ok)

	// And the room disappears with its last member
	registry.Leave(session2.ConnectionID)
	req.Zero(registry.Count())
	req.Empty(registry.Rooms())
	req.Nil(registry.SinksForRoom("client:abc"))
}

func TestRegistry_Leave_Unknown_Is_Ignored(t *testing.T) {
	registry := NewRegistry()
	require.NotPanics(t, func() { registry.Leave("unknown") })
	require.Zero(t, registry.Count())
}

func toAny[T any](items []T) []any {
	res := make([]any, 0, len(items))
	for _, item := range items {
		res = append(res, item)
	}
	return res
}
