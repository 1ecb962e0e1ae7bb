package ws

import (
	"context"
	"log/slog"
	"socket-deva/errors"
	"socket-deva/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestServer_ServeFailureIsTerminal(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	server := NewServer(logs.GetLoggerFromLevel(slog.LevelDebug), mocks.NewMockIRegistry(ctrl),
		mocks.NewMockIBus(ctrl), NewStaticSession("abc", ""), 4)
	req.NoError(server.Listen("127.0.0.1:0"))

	// Given a listener that is no longer usable
	req.NoError(server.listener.Close())

	// When the server runs, it fails for good instead of asking for a restart
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := server.Run(ctx)
	req.ErrorIs(err, errors.ErrWorkerTerminal)
}
