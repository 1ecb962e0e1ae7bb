package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAckTopic(t *testing.T) {
	req := require.New(t)
	req.Equal(Topic("socket:client:r1"), AckTopic(TopicClient, "r1"))
	req.Equal(Topic("socket:global:42"), AckTopic(TopicGlobal, "42"))
	req.Equal(Topic("socket:event:x-y"), AckTopic(TopicEvent, "x-y"))
}

func TestWhitelist(t *testing.T) {
	req := require.New(t)
	topics := Whitelist()
	req.Len(topics, 9)
	for _, topic := range topics {
		req.True(IsWhitelisted(topic), topic)
	}
	req.False(IsWhitelisted(TopicGlobal))
	req.False(IsWhitelisted("devacore:unknown"))

	// Callers get a copy
	topics[0] = "tampered"
	req.True(IsWhitelisted(TopicPrompt))
	req.Equal(TopicPrompt, Whitelist()[0])
}
