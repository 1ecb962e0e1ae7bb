package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeliveries_FirstInsideWindow(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	d := newDeliveries(time.Minute)
	d.now = func() time.Time { return now }

	req.True(d.first("socket:client:r1"))
	req.False(d.first("socket:client:r1"))
	req.True(d.first("socket:event:r1"))

	// After the window the key is forgotten
	now = now.Add(2 * time.Minute)
	req.True(d.first("socket:client:r1"))
	req.Equal(1, d.len())
}

func TestDeliveries_ZeroWindowDisables(t *testing.T) {
	req := require.New(t)
	d := newDeliveries(0)
	req.True(d.first("k"))
	req.True(d.first("k"))
	req.Zero(d.len())
}
