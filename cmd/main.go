package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"socket-deva/bus"
	"socket-deva/runtime"
	"socket-deva/ws"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the relay and blocks until a signal arrives or the supervised
// workers stop on their own. Returning errors instead of exiting keeps the
// deferred cleanup running.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Session identity shared by every browser connection
	if config.ClientID == "" {
		config.ClientID = uuid.NewString()
		log.Info("No CLIENT_ID configured, generated one", "client_id", config.ClientID)
	}
	sessions := ws.NewStaticSession(config.ClientID, config.ClientName)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start the relay, a bind failure is fatal
	relay := runtime.NewRelay(log, config.Relay(), bus.NewBus(log, config.BusBufferSize), sessions)
	if err := relay.Start(ctx); err != nil {
		return fmt.Errorf("relay failed to start: %w", err)
	}

	// 5. Wait for Stop or unexpected end
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case <-relay.Done():
		return fmt.Errorf("relay workers stopped unexpectedly")
	}

	if err := relay.Stop(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}
