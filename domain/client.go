package domain

import (
	"encoding/json"
	"strings"
)

// Client is the identity of a session, assigned server side.
type Client struct {
	ID   ClientUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

func NewClient(uid, name string) Client {
	return Client{ID: ClientUID{UID: strings.TrimSpace(uid)}, Name: name}
}

// ClientUID decodes both {"uid": "..."} and a bare string, the two shapes
// hosts have used for client ids.
type ClientUID struct {
	UID string `json:"uid"`
}

func (c *ClientUID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.UID = s
		return nil
	}
	type plain ClientUID
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = ClientUID(p)
	return nil
}

// Session is one live transport connection and the single room it belongs to.
type Session struct {
	ConnectionID string
	Client       Client
	Room         RoomKey
}

func NewSession(connectionID string, client Client) (Session, bool) {
	room, ok := ClientRoom(client.ID.UID)
	if !ok {
		return Session{}, false
	}
	return Session{ConnectionID: connectionID, Client: client, Room: room}, true
}

// ClientRef is the flat client field of a packet. Besides a bare uid it
// accepts {"id": "..."}, {"id": {"uid": "..."}} and {"uid": "..."}.
type ClientRef string

func (c *ClientRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ClientRef(s)
		return nil
	}
	var obj struct {
		ID  *ClientUID `json:"id"`
		UID string     `json:"uid"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.ID != nil && obj.ID.UID != "" {
		*c = ClientRef(obj.ID.UID)
		return nil
	}
	*c = ClientRef(obj.UID)
	return nil
}
