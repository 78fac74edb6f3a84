package webhooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInboundText(t *testing.T) {
	t.Parallel()

	inbound, ok := toInbound(Messaging{
		Sender:  User{ID: "123"},
		Message: &Message{MID: "m1", Text: "precio del rascador"},
	})
	require.True(t, ok)
	assert.Equal(t, "123", inbound.UserID)
	assert.Equal(t, "precio del rascador", inbound.Text)
	assert.False(t, inbound.HasImage)
}

func TestToInboundImageAttachment(t *testing.T) {
	t.Parallel()

	inbound, ok := toInbound(Messaging{
		Sender: User{ID: "123"},
		Message: &Message{
			Attachments: []Attachment{
				{Type: "image", Payload: Payload{URL: "https://example.com/pic.jpg"}},
			},
		},
	})
	require.True(t, ok)
	assert.True(t, inbound.HasImage)
	assert.Empty(t, inbound.Text)
}

func TestToInboundPostback(t *testing.T) {
	t.Parallel()

	inbound, ok := toInbound(Messaging{
		Sender:   User{ID: "123"},
		Postback: &Postback{Payload: "GET_STARTED"},
	})
	require.True(t, ok)
	assert.Equal(t, "GET_STARTED", inbound.PostbackPayload)
}

func TestToInboundDropsUnusableEvents(t *testing.T) {
	t.Parallel()

	// Echoes of the bot's own messages.
	_, ok := toInbound(Messaging{
		Sender:  User{ID: "123"},
		Message: &Message{Text: "hola", IsEcho: true},
	})
	assert.False(t, ok)

	// No message at all.
	_, ok = toInbound(Messaging{Sender: User{ID: "123"}})
	assert.False(t, ok)

	// Missing sender.
	_, ok = toInbound(Messaging{Message: &Message{Text: "hola"}})
	assert.False(t, ok)

	// Non-image attachment with no text.
	_, ok = toInbound(Messaging{
		Sender: User{ID: "123"},
		Message: &Message{
			Attachments: []Attachment{{Type: "audio"}},
		},
	})
	assert.False(t, ok)
}
