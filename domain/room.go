package domain

import "strings"

const roomPrefix = "client:"

// RoomKey names a group of connections that receive the same targeted emit.
type RoomKey string

// ClientRoom derives the room of a client uid. An empty uid has no room.
func ClientRoom(uid string) (RoomKey, bool) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", false
	}
	return RoomKey(roomPrefix + uid), true
}

func (r RoomKey) String() string { return string(r) }
