package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientRoom(t *testing.T) {
	req := require.New(t)

	room, ok := ClientRoom("abc")
	req.True(ok)
	req.Equal(RoomKey("client:abc"), room)

	room, ok = ClientRoom("  abc ")
	req.True(ok)
	req.Equal("client:abc", room.String())

	_, ok = ClientRoom("")
	req.False(ok)

	_, ok = ClientRoom("   ")
	req.False(ok)
}
