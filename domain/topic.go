package domain

import (
	"fmt"

	"github.com/samber/lo"
)

// Topic is the name of an internal bus event or of a transport event.
type Topic string

const (
	TopicGlobal     Topic = "socket:global"
	TopicClient     Topic = "socket:client"
	TopicEvent      Topic = "socket:event"
	TopicClientData Topic = "socket:clientdata"
	TopicReceive    Topic = "socket:receive"
	TopicError      Topic = "error"

	// TopicClientJoin is the client-declared join of older transports.
	// It is refused: rooms only come from server-assigned identity.
	TopicClientJoin Topic = "client:data"
)

const (
	TopicPrompt  Topic = "devacore:prompt"
	TopicContext Topic = "devacore:context"
	TopicZone    Topic = "devacore:zone"
	TopicFeature Topic = "devacore:feature"
	TopicAction  Topic = "devacore:action"
	TopicState   Topic = "devacore:state"
	TopicIntent  Topic = "devacore:intent"
	TopicBelief  Topic = "devacore:belief"
	TopicCoreErr Topic = "devacore:error"
)

var whitelist = []Topic{
	TopicPrompt,
	TopicContext,
	TopicZone,
	TopicFeature,
	TopicAction,
	TopicState,
	TopicIntent,
	TopicBelief,
	TopicCoreErr,
}

// Whitelist returns the lifecycle topics mirrored verbatim onto the transport.
func Whitelist() []Topic {
	return append([]Topic(nil), whitelist...)
}

func IsWhitelisted(topic Topic) bool {
	return lo.Contains(whitelist, topic)
}

// RoutingTopics are the bus topics answered with an acknowledgement.
func RoutingTopics() []Topic {
	return []Topic{TopicGlobal, TopicClient, TopicEvent}
}

// AckTopic is the correlation topic "<topic>:<id>" of an acknowledgement.
func AckTopic(topic Topic, id string) Topic {
	return Topic(fmt.Sprintf("%s:%s", topic, id))
}

func (t Topic) String() string { return string(t) }
