package ws

import (
	"fmt"
	"net/http"
	"socket-deva/contract"
	"socket-deva/domain"
)

var _ contract.ISessionProvider = StaticSession{}

// StaticSession gives every connection the identity of the hosting agent's
// client, so all browser tabs of that client share one room.
type StaticSession struct {
	Client domain.Client
}

func NewStaticSession(uid, name string) StaticSession {
	return StaticSession{Client: domain.NewClient(uid, name)}
}

func (s StaticSession) Identify(_ *http.Request) (domain.Client, error) {
	if s.Client.ID.UID == "" {
		return domain.Client{}, fmt.Errorf("static session has no client uid")
	}
	return s.Client, nil
}
