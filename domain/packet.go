// Package domain holds the envelopes exchanged on the internal bus and the
// transport: packets, sessions, rooms, topics and frames.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"socket-deva/errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Packet is the canonical message envelope.
// ID is set once at creation and correlates a request with its acknowledgement.
type Packet struct {
	ID     string    `json:"id" validate:"required"`
	Event  string    `json:"event,omitempty" validate:"omitempty,max=256"`
	Data   any       `json:"data,omitempty"`
	Client ClientRef `json:"client,omitempty"`
	Q      *Query    `json:"q,omitempty"`
}

// Query is the nested request shape where the client sits under q.client.id.
type Query struct {
	Client *Client `json:"client,omitempty"`
}

func NewPacket(event string, data any) Packet {
	return Packet{ID: uuid.NewString(), Event: event, Data: data}
}

// ClientID is the only way to read the target client of a packet.
// The flat client field wins over the nested q.client.id.uid shape.
func (p Packet) ClientID() (string, bool) {
	if id := strings.TrimSpace(string(p.Client)); id != "" {
		return id, true
	}
	if p.Q == nil || p.Q.Client == nil {
		return "", false
	}
	id := strings.TrimSpace(p.Q.Client.ID.UID)
	return id, id != ""
}

// Room resolves the room of the packet's client.
func (p Packet) Room() (RoomKey, error) {
	id, ok := p.ClientID()
	if !ok {
		return "", errors.ErrUnresolvableClient
	}
	room, _ := ClientRoom(id)
	return room, nil
}

func (p Packet) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPacket, err)
	}
	return nil
}

// PacketFrom reads a bus payload as a Packet.
// A nil payload, a nil pointer or an undecodable payload is not a packet.
func PacketFrom(payload any) (Packet, bool) {
	switch p := payload.(type) {
	case nil:
		return Packet{}, false
	case Packet:
		return p, true
	case *Packet:
		if p == nil {
			return Packet{}, false
		}
		return *p, true
	case json.RawMessage:
		return decodePacket(p)
	case []byte:
		return decodePacket(p)
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return Packet{}, false
		}
		return decodePacket(raw)
	}
}

// Passthrough is the payload as the bus delivered it, ready to be framed.
// Packet only reads the routing fields, so the payload itself is what gets
// forwarded. Raw bytes are marked as JSON to keep them from being encoded as
// base64.
func Passthrough(payload any) any {
	if raw, ok := payload.([]byte); ok {
		return json.RawMessage(raw)
	}
	return payload
}

func decodePacket(raw []byte) (Packet, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Packet{}, false
	}
	var p Packet
	if err := json.Unmarshal(raw, &p); err != nil {
		return Packet{}, false
	}
	return p, true
}
