package workers

import (
	"context"
	"log/slog"
	"socket-deva/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHealthMonitoringWorker_Samples(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockRegistry.EXPECT().Count().Return(3).MinTimes(1)

	samples := make(chan Stats, 10)
	worker := NewHealthMonitoringWorker(logs.GetLoggerFromLevel(slog.LevelDebug), mockRegistry, 10*time.Millisecond).
		OnSample(func(s Stats) {
			select {
			case samples <- s:
			default:
			}
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	select {
	case s := <-samples:
		req.Equal(3, s.Connections)
		req.NotZero(s.RSS)
	case <-time.After(2 * time.Second):
		req.Fail("no health sample")
	}

	cancel()
	req.NoError(<-done)
}
