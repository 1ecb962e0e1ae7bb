// Package ws is the connection lifecycle manager: it owns the WebSocket
// listener and every client connection, joins each connection to the room
// of its server-assigned session and implements the emit primitives used by
// the router.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"socket-deva/contract"
	"socket-deva/domain"
	"socket-deva/errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var _ contract.ITransport = (*Server)(nil)
var _ contract.Worker = (*Server)(nil)

const shutdownTimeout = 5 * time.Second

type Server struct {
	mu         sync.Mutex
	log        *slog.Logger
	registry   contract.IRegistry
	bus        contract.IBus
	sessions   contract.ISessionProvider
	upgrader   websocket.Upgrader
	bufferSize int
	listener   net.Listener
	httpServer *http.Server
	conns      map[string]*Connection
}

func NewServer(log *slog.Logger, registry contract.IRegistry, bus contract.IBus,
	sessions contract.ISessionProvider, bufferSize int) *Server {
	return &Server{
		log:      log,
		registry: registry,
		bus:      bus,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize: bufferSize,
		conns:      make(map[string]*Connection),
	}
}

// Listen binds the listener. A bind failure is returned as is; listening
// twice is a caller error.
func (s *Server) Listen(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.ErrAlreadyStarted
	}
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          newServerErrorLog(s.log),
	}
	return nil
}

// Addr is the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run serves HTTP until the context is done, then shuts the server down.
// A serve failure is terminal for the relay.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	ln, srv := s.listener, s.httpServer
	s.mu.Unlock()
	if ln == nil {
		return errors.ErrNotStarted
	}
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting socket server", "address", ln.Addr().String(), "at", time.Now().UTC())
		errChan <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if err == http.ErrServerClosed {
			return nil
		}
		// The listener is bound once; serving again on it cannot succeed.
		return fmt.Errorf("socket server error: %w: %w", errors.ErrWorkerTerminal, err)
	}
}

// Shutdown stops accepting connections and closes the live ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	conns := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
		if err == http.ErrServerClosed {
			err = nil
		}
	}
	for _, c := range conns {
		c.close()
	}
	s.log.Info("Socket server shut down", "closed_connections", len(conns))
	return err
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"connections": s.registry.Count(),
	})
}

// handleWS is the connect hook: identify, upgrade, join the session room
// and send the session data to this connection only.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	client, err := s.sessions.Identify(r)
	if err != nil {
		s.log.Warn("Rejecting connection without session identity", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "no session identity", http.StatusForbidden)
		return
	}
	session, ok := domain.NewSession(uuid.NewString(), client)
	if !ok {
		s.log.Error("Session identity has no uid", "remote", r.RemoteAddr)
		http.Error(w, "no session identity", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade error", "error", err)
		return
	}

	c := newConnection(s, conn, session, s.bufferSize)
	s.connect(c)
	ctx := r.Context()
	if err := s.EmitTo(ctx, c.ID(), domain.TopicClientData, client); err != nil {
		s.log.Warn("Failed to send session data", "connection", c.ID(), "error", err)
	}

	go c.writePump()
	c.readPump(context.WithoutCancel(ctx))
}

func (s *Server) connect(c *Connection) {
	s.mu.Lock()
	s.conns[c.ID()] = c
	s.mu.Unlock()
	s.registry.Join(c.session, c)
	s.log.Debug("Client connected", "connection", c.ID(), "room", c.session.Room, "total", s.registry.Count())
}

// disconnect is the only cleanup path: it runs once per connection, when
// its read pump ends.
func (s *Server) disconnect(c *Connection) {
	s.registry.Leave(c.ID())
	s.mu.Lock()
	delete(s.conns, c.ID())
	s.mu.Unlock()
	c.close()
	s.log.Debug("Client disconnected", "connection", c.ID(), "total", s.registry.Count())
}

// receive republishes a client frame on the internal bus.
func (s *Server) receive(_ context.Context, c *Connection, frame domain.Frame) {
	if frame.Event == domain.TopicClientJoin {
		s.log.Warn("Ignoring client-declared room join", "connection", c.ID())
		return
	}
	s.bus.Talk(domain.TopicReceive, c.inboundPacket(frame))
}

// EmitTo sends to a single connection. Unknown connections are ignored.
func (s *Server) EmitTo(ctx context.Context, connectionID string, topic domain.Topic, payload any) error {
	sink, ok := s.registry.Sink(connectionID)
	if !ok {
		s.log.Debug("Emit to unknown connection", "connection", connectionID, "topic", topic)
		return nil
	}
	return s.emit(ctx, []contract.ConnectionSink{sink}, topic, payload)
}

func (s *Server) EmitToRoom(ctx context.Context, room domain.RoomKey, topic domain.Topic, payload any) error {
	return s.emit(ctx, s.registry.SinksForRoom(room), topic, payload)
}

func (s *Server) Broadcast(ctx context.Context, topic domain.Topic, payload any) error {
	return s.emit(ctx, s.registry.Sinks(), topic, payload)
}

// emit encodes the payload once. A connection that cannot take the frame
// misses it; that never fails the emit.
func (s *Server) emit(ctx context.Context, sinks []contract.ConnectionSink, topic domain.Topic, payload any) error {
	frame, err := domain.NewFrame(topic, payload)
	if err != nil {
		return err
	}
	for _, sink := range sinks {
		if err := sink.Consume(ctx, frame); err != nil {
			s.log.Warn("Frame dropped", "connection", sink.ID(), "topic", topic, "error", err)
		}
	}
	return nil
}
