package test

import (
	"context"
	"fmt"
	"log/slog"
	"socket-deva/bus"
	"socket-deva/domain"
	"socket-deva/runtime"
	"socket-deva/ws"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type received struct {
	topic   domain.Topic
	payload any
}

func startRelay(t *testing.T) (*runtime.Relay, *bus.Bus) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	b := bus.NewBus(log, 256)
	relay := runtime.NewRelay(log, runtime.Config{
		Host:                 "127.0.0.1",
		Port:                 0,
		ConnectionBufferSize: 64,
		DedupWindow:          time.Minute,
		RestartInterval:      100 * time.Millisecond,
	}, b, ws.NewStaticSession("abc", "browser"))

	require.NoError(t, relay.Start(context.Background()))
	t.Cleanup(func() { _ = relay.Stop() })
	return relay, b
}

func dial(t *testing.T, relay *runtime.Relay) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", relay.Addr()), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) domain.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame domain.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func listen(b *bus.Bus, topics ...domain.Topic) chan received {
	ch := make(chan received, 16)
	for _, topic := range topics {
		b.Listen(topic, func(_ context.Context, payload any) {
			ch <- received{topic: topic, payload: payload}
		})
	}
	return ch
}

func next(t *testing.T, ch chan received) received {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		require.Fail(t, "nothing published on the bus")
		return received{}
	}
}

// A client connects with session abc, then a socket:client packet for abc
// is talked on the bus: only room client:abc receives it and the bus gets
// the acknowledgement on socket:client:r1.
func Test_Scenario_ClientRouting(t *testing.T) {
	req := require.New(t)
	relay, b := startRelay(t)
	acks := listen(b, "socket:client:r1")

	conn := dial(t, relay)
	frame := readFrame(t, conn)
	req.Equal(domain.TopicClientData, frame.Event)
	req.Eventually(func() bool { return relay.Registry().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	b.Talk(domain.TopicClient, domain.Packet{ID: "r1", Event: "socket:client", Client: "abc"})

	frame = readFrame(t, conn)
	req.Equal(domain.TopicClient, frame.Event)
	req.JSONEq(`{"id":"r1","event":"socket:client","client":"abc"}`, string(frame.Data))

	ack := next(t, acks)
	req.Equal(domain.Topic("socket:client:r1"), ack.topic)
	req.Equal(true, ack.payload)
}

// Fields the router does not read still reach the client.
func Test_Scenario_ClientRoutingKeepsWholePacket(t *testing.T) {
	req := require.New(t)
	relay, b := startRelay(t)
	acks := listen(b, "socket:client:r9")

	conn := dial(t, relay)
	readFrame(t, conn)
	req.Eventually(func() bool { return relay.Registry().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	raw := `{"id":"r9","q":{"client":{"id":{"uid":"abc"},"name":"Ann"},"text":"hello"},"a":{"text":"answer"}}`
	b.Talk(domain.TopicClient, []byte(raw))

	frame := readFrame(t, conn)
	req.Equal(domain.TopicClient, frame.Event)
	req.JSONEq(raw, string(frame.Data))
	req.Equal(domain.Topic("socket:client:r9"), next(t, acks).topic)
}

func Test_Scenario_GlobalAndWhitelist(t *testing.T) {
	req := require.New(t)
	relay, b := startRelay(t)
	acks := listen(b, "socket:global:g1")

	conn := dial(t, relay)
	readFrame(t, conn)
	req.Eventually(func() bool { return relay.Registry().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	b.Talk(domain.TopicGlobal, domain.Packet{ID: "g1", Data: "hello"})
	frame := readFrame(t, conn)
	req.Equal(domain.TopicGlobal, frame.Event)
	req.Equal(domain.Topic("socket:global:g1"), next(t, acks).topic)

	b.Talk(domain.TopicBelief, map[string]any{"belief": "sky is blue"})
	frame = readFrame(t, conn)
	req.Equal(domain.TopicBelief, frame.Event)
	req.JSONEq(`{"belief":"sky is blue"}`, string(frame.Data))
}

func Test_Scenario_RoutingFailureIsReported(t *testing.T) {
	req := require.New(t)
	_, b := startRelay(t)
	errs := listen(b, domain.TopicError)
	acks := listen(b, "socket:client:bad", "socket:client:good")

	b.Talk(domain.TopicClient, domain.Packet{ID: "bad"})
	b.Talk(domain.TopicClient, domain.Packet{ID: "good", Client: "abc"})

	report := next(t, errs)
	r, ok := report.payload.(domain.ErrorReport)
	req.True(ok)
	req.Equal(domain.TopicClient, r.Topic)

	// The failing packet does not prevent the next one from being acknowledged
	req.Equal(domain.Topic("socket:client:good"), next(t, acks).topic)
	select {
	case extra := <-acks:
		req.Failf("unexpected acknowledgement", "%s", extra.topic)
	case <-time.After(100 * time.Millisecond):
	}
}

func Test_Scenario_NothingRoutedAfterStop(t *testing.T) {
	req := require.New(t)
	relay, b := startRelay(t)
	req.NoError(relay.Stop())

	acks := listen(b, "socket:client:late")
	b.Talk(domain.TopicClient, domain.Packet{ID: "late", Client: "abc"})
	b.Dispatch(context.Background(), domain.TopicClient, domain.Packet{ID: "late", Client: "abc"})

	select {
	case <-acks:
		req.Fail("stopped relay acknowledged a packet")
	case <-time.After(100 * time.Millisecond):
	}
}
